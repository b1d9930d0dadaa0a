package fixture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Delimiter separates the sections of a fixture file.
	Delimiter = "<===>"
	// Extension marks a selector that names a single fixture file.
	Extension = ".test"
	// DefaultVariables is used when a fixture has no variables section.
	DefaultVariables = "{}"
)

// ErrMalformed is returned when a fixture does not split into 2 or 3 sections.
var ErrMalformed = errors.New("fixture must contain 2 or 3 sections separated by " + Delimiter)

// Fixture is one parsed test file.
type Fixture struct {
	Query       string
	Variables   string
	Expectation string
	Sections    int
}

// Ref identifies a fixture inside the tests directory.
type Ref struct {
	Suite string
	File  string
}

// Path returns the location of the fixture below root.
func (r Ref) Path(root string) string {
	return filepath.Join(root, r.Suite, r.File)
}

func (r Ref) String() string {
	return r.Suite + "/" + r.File
}

// Name returns the human readable test name.
func (r Ref) Name() string {
	return DisplayName(r.File)
}

// Parse splits raw fixture text into its sections.
func Parse(raw string) (*Fixture, error) {
	parts := strings.Split(raw, Delimiter)

	switch len(parts) {
	case 2:
		return &Fixture{
			Query:       parts[0],
			Variables:   DefaultVariables,
			Expectation: parts[1],
			Sections:    2,
		}, nil
	case 3:
		return &Fixture{
			Query:       parts[0],
			Variables:   parts[1],
			Expectation: parts[2],
			Sections:    3,
		}, nil
	default:
		return nil, fmt.Errorf("%w (found %d)", ErrMalformed, len(parts))
	}
}

// Load reads and parses the fixture at path. Nothing is cached.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(string(data))
}

// WithExpectation returns raw with its final section replaced by the
// newline-wrapped actual response. Every other section is kept byte for byte.
func WithExpectation(raw, actual string) (string, error) {
	parts := strings.Split(raw, Delimiter)
	if len(parts) != 2 && len(parts) != 3 {
		return "", fmt.Errorf("%w (found %d)", ErrMalformed, len(parts))
	}
	parts[len(parts)-1] = "\n" + actual + "\n"
	return strings.Join(parts, Delimiter), nil
}
