package mock

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/abdul-hamid-achik/gqltester/packages/canonical"
	"github.com/abdul-hamid-achik/gqltester/packages/core/fixture"
)

// Route is one fixture served by the mock server
type Route struct {
	Ref       fixture.Ref
	Name      string
	Query     string
	Variables string
	Response  *MockResponse
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode  int
	ContentType string
	Headers     map[string]string
	Body        string
}

// Router matches incoming GraphQL requests to routes by query and variables
type Router struct {
	routes []*Route
	index  map[string]*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
		index:  make(map[string]*Route),
	}
}

// AddRoute adds a route to the router. A later route with the same query
// and variables replaces the earlier one.
func (r *Router) AddRoute(route *Route) {
	r.routes = append(r.routes, route)
	r.index[routeKey(route.Query, route.Variables)] = route
}

// Match finds the route for a query and its variables
func (r *Router) Match(query, variables string) *Route {
	return r.index[routeKey(query, variables)]
}

func (r *Router) Len() int {
	return len(r.index)
}

func routeKey(query, variables string) string {
	return normalizeQuery(query) + "\x00" + normalizeVariables(variables)
}

// normalizeQuery reprints a query so that formatting and comments do not
// affect matching. Unparseable queries are matched on their collapsed
// whitespace.
func normalizeQuery(query string) string {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return strings.Join(strings.Fields(query), " ")
	}

	var sb strings.Builder
	formatter.NewFormatter(&sb).FormatQueryDocument(doc)
	return sb.String()
}

func normalizeVariables(variables string) string {
	if strings.TrimSpace(variables) == "" {
		variables = fixture.DefaultVariables
	}
	out, _ := canonical.JSON(variables)
	return out
}
