// Package schema holds the demo applications served by hellograph and turns
// their SDL into executable graphql-go schemas.
package schema

import (
	"sort"

	"github.com/graphql-go/graphql"
)

// StaticDirective declares the directive that binds a field to a constant.
const StaticDirective = `directive @static(value: String!) on FIELD_DEFINITION`

// ResolverMap holds Go resolvers keyed by "Type.field".
type ResolverMap map[string]graphql.FieldResolveFn

// App is a named schema: its SDL plus the resolvers not expressible in it.
type App struct {
	Name      string
	SDL       string
	Resolvers ResolverMap
}

var registry = map[string]*App{}

func register(a *App) *App {
	registry[a.Name] = a
	return a
}

// Lookup returns the registered app called name.
func Lookup(name string) (*App, bool) {
	a, ok := registry[name]
	return a, ok
}

// Names lists the registered apps in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Source returns the SDL as loaded by Build, with the directive declarations prepended.
func (a *App) Source() string {
	return StaticDirective + "\n\n" + a.SDL
}
