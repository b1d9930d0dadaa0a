package fixture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TwoSectionsDefaultsVariables(t *testing.T) {
	fx, err := Parse("{ ping }\n<===>\n{\"data\":{\"ping\":\"pong\"}}\n")

	require.NoError(t, err)
	assert.Equal(t, 2, fx.Sections)
	assert.Equal(t, "{ ping }\n", fx.Query)
	assert.Equal(t, DefaultVariables, fx.Variables)
	assert.Equal(t, "\n{\"data\":{\"ping\":\"pong\"}}\n", fx.Expectation)
}

func TestParse_ThreeSections(t *testing.T) {
	fx, err := Parse("query($id: ID!) { user(id: $id) { name } }\n<===>\n{\"id\": 1}\n<===>\nURL\n")

	require.NoError(t, err)
	assert.Equal(t, 3, fx.Sections)
	assert.Equal(t, "\n{\"id\": 1}\n", fx.Variables)
	assert.Equal(t, "\nURL\n", fx.Expectation)
}

func TestParse_WrongSectionCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"one section", "{ ping }"},
		{"four sections", "a<===>b<===>c<===>d"},
		{"five sections", "a<===>b<===>c<===>d<===>e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := Parse(tt.raw)
			assert.Nil(t, fx)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ping.test")
	require.NoError(t, os.WriteFile(path, []byte("{ ping }<===>{}"), 0644))

	fx, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "{ ping }", fx.Query)

	_, err = Load(filepath.Join(dir, "missing.test"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestWithExpectation_OnlyTouchesLastSection(t *testing.T) {
	raw := "query { a }\n<===>\n{\"x\": 1}\n<===>\n# old\n{\"data\": null}\n"

	out, err := WithExpectation(raw, "{\n    \"data\": 1\n}")

	require.NoError(t, err)
	parts := strings.Split(out, Delimiter)
	require.Len(t, parts, 3)
	assert.Equal(t, "query { a }\n", parts[0])
	assert.Equal(t, "\n{\"x\": 1}\n", parts[1])
	assert.Equal(t, "\n{\n    \"data\": 1\n}\n", parts[2])
}

func TestWithExpectation_TwoSections(t *testing.T) {
	out, err := WithExpectation("{ ping }<===>{}", "pung")

	require.NoError(t, err)
	assert.Equal(t, "{ ping }<===>\npung\n", out)
}

func TestWithExpectation_Malformed(t *testing.T) {
	_, err := WithExpectation("no delimiter here", "x")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRef(t *testing.T) {
	ref := Ref{Suite: "users", File: "get_user.test"}

	assert.Equal(t, "users/get_user.test", ref.String())
	assert.Equal(t, filepath.Join("root", "users", "get_user.test"), ref.Path("root"))
	assert.Equal(t, "Get User", ref.Name())
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"ping.test":            "Ping",
		"user_profile.test":    "User Profile",
		"userProfileById.test": "User Profile By Id",
		"list-all-orders.test": "List All Orders",
		"v2Search.test":        "V2 Search",
		"README":               "Readme",
		".test":                ".test",
	}

	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), in)
	}
}
