package fixture

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns a fixture file name such as "user_profileById.test"
// into "User Profile By Id".
func DisplayName(file string) string {
	base := strings.TrimSuffix(file, Extension)

	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(base)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()

	if len(words) == 0 {
		return file
	}
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
