// Package suite expands suite selectors into the fixtures to run.
//
// A selector is one of:
//   - "users": every fixture in <root>/users
//   - "users/get*": fixtures in <root>/users whose name matches the glob
//   - "users/get_user.test": exactly that fixture
//
// No selectors means every subdirectory of the tests root.
package suite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"

	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
)

// ErrSuiteNotFound is wrapped by every NotFoundError.
var ErrSuiteNotFound = errors.New("suite does not exist")

// NotFoundError names the suite directory that could not be listed.
type NotFoundError struct {
	Suite string
	Dir   string
	Err   error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("suite %s does not exist (%s)", e.Suite, e.Dir)
}

func (e *NotFoundError) Unwrap() []error {
	return []error{ErrSuiteNotFound, e.Err}
}

// Batch is the set of fixtures selected from one suite.
type Batch struct {
	Suite    string
	Fixtures []fixture.Ref
}

// Discover expands selectors below root. Every selector is expanded before
// anything runs, so a misspelled suite fails the whole run up front.
func Discover(root string, selectors []string) ([]Batch, error) {
	if len(selectors) == 0 {
		all, err := List(root)
		if err != nil {
			return nil, err
		}
		selectors = all
	}

	batches := make([]Batch, 0, len(selectors))
	for _, sel := range selectors {
		b, err := Expand(root, sel)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// List returns the names of all suite directories below root, sorted.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing tests directory %s: %w", root, err)
	}

	dirs := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		return e.IsDir() && !strings.HasPrefix(e.Name(), ".")
	})
	names := lo.Map(dirs, func(e os.DirEntry, _ int) string {
		return e.Name()
	})
	sort.Strings(names)
	return names, nil
}

// Expand resolves a single selector.
func Expand(root, selector string) (Batch, error) {
	selector = strings.Trim(filepath.ToSlash(selector), "/")

	name, filter := selector, ""
	if strings.Contains(selector, "*") {
		name, filter, _ = strings.Cut(selector, "/")
	}

	if filter == "" && strings.HasSuffix(name, fixture.Extension) {
		suiteName, file, ok := strings.Cut(name, "/")
		if !ok || strings.Contains(file, "/") {
			return Batch{}, fmt.Errorf("selector %q must have the form suite/file%s", selector, fixture.Extension)
		}
		if err := requireDir(root, suiteName); err != nil {
			return Batch{}, err
		}
		return Batch{
			Suite:    suiteName,
			Fixtures: []fixture.Ref{{Suite: suiteName, File: file}},
		}, nil
	}

	dir := filepath.Join(root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Batch{}, &NotFoundError{Suite: name, Dir: dir, Err: err}
	}

	var refs []fixture.Ref
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if filter != "" {
			matched, err := doublestar.Match(filter, e.Name())
			if err != nil {
				return Batch{}, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !matched {
				continue
			}
		}
		refs = append(refs, fixture.Ref{Suite: name, File: e.Name()})
	}

	return Batch{Suite: name, Fixtures: refs}, nil
}

func requireDir(root, name string) error {
	dir := filepath.Join(root, name)
	info, err := os.Stat(dir)
	if err != nil {
		return &NotFoundError{Suite: name, Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return &NotFoundError{Suite: name, Dir: dir, Err: fmt.Errorf("not a directory")}
	}
	return nil
}

// Count returns the number of fixtures across batches.
func Count(batches []Batch) int {
	return lo.SumBy(batches, func(b Batch) int {
		return len(b.Fixtures)
	})
}
