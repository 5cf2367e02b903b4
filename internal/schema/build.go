package schema

import (
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	language "github.com/hanpama/hellograph/internal/language"
	logging "github.com/hanpama/hellograph/internal/logging"
)

var builtinScalars = map[string]*graphql.Scalar{
	"Int":     graphql.Int,
	"Float":   graphql.Float,
	"String":  graphql.String,
	"Boolean": graphql.Boolean,
	"ID":      graphql.ID,
}

// Build validates the app's SDL and constructs an executable schema.
//
// Only object types with builtin scalar, list and non-null fields are
// supported. Field arguments must be scalars. A field resolves through
// Resolvers["Type.field"] if present, else its @static value, else null.
func Build(a *App) (graphql.Schema, error) {
	src, err := language.LoadSchema(a.Name+".graphql", a.Source())
	if err != nil {
		return graphql.Schema{}, errors.Wrapf(err, "load schema %s", a.Name)
	}
	b := &builder{app: a, src: src, objects: map[string]*graphql.Object{}}
	return b.build()
}

// MustBuild is like Build but panics on error.
func MustBuild(a *App) graphql.Schema {
	s, err := Build(a)
	if err != nil {
		panic(err)
	}
	return s
}

type builder struct {
	app     *App
	src     *language.Schema
	objects map[string]*graphql.Object
}

func (b *builder) build() (graphql.Schema, error) {
	for name, def := range b.src.Types {
		if def.BuiltIn {
			continue
		}
		switch def.Kind {
		case language.Object:
		case language.Scalar:
			return graphql.Schema{}, errors.Errorf("%s: custom scalar %s is not supported", b.app.Name, name)
		default:
			return graphql.Schema{}, errors.Errorf("%s: %s %s is not supported", b.app.Name, strings.ToLower(string(def.Kind)), name)
		}
		if err := b.check(def); err != nil {
			return graphql.Schema{}, err
		}
	}
	for name, def := range b.src.Types {
		if def.BuiltIn || def.Kind != language.Object {
			continue
		}
		b.objects[name] = b.object(def)
	}
	for key := range b.app.Resolvers {
		typ, field, _ := strings.Cut(key, ".")
		def := b.src.Types[typ]
		if def == nil || def.Fields.ForName(field) == nil {
			return graphql.Schema{}, errors.Errorf("%s: resolver %s has no matching field", b.app.Name, key)
		}
	}

	cfg := graphql.SchemaConfig{Query: b.root(b.src.Query)}
	if cfg.Query == nil {
		return graphql.Schema{}, errors.Errorf("%s: schema has no query type", b.app.Name)
	}
	cfg.Mutation = b.root(b.src.Mutation)
	cfg.Subscription = b.root(b.src.Subscription)
	for _, o := range b.objects {
		cfg.Types = append(cfg.Types, o)
	}
	s, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, errors.Wrapf(err, "build schema %s", b.app.Name)
	}
	return s, nil
}

func (b *builder) root(def *language.Definition) *graphql.Object {
	if def == nil {
		return nil
	}
	return b.objects[def.Name]
}

// check rejects field and argument types the builder cannot express.
func (b *builder) check(def *language.Definition) error {
	for _, f := range def.Fields {
		if strings.HasPrefix(f.Name, "__") {
			continue
		}
		if named := b.src.Types[f.Type.Name()]; named.Kind != language.Object && builtinScalars[named.Name] == nil {
			return errors.Errorf("%s: field %s.%s has unsupported type %s", b.app.Name, def.Name, f.Name, f.Type)
		}
		for _, arg := range f.Arguments {
			if builtinScalars[arg.Type.Name()] == nil {
				return errors.Errorf("%s: argument %s.%s(%s) has unsupported type %s", b.app.Name, def.Name, f.Name, arg.Name, arg.Type)
			}
		}
	}
	return nil
}

func (b *builder) object(def *language.Definition) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        def.Name,
		Description: def.Description,
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{}
			for _, f := range def.Fields {
				if strings.HasPrefix(f.Name, "__") {
					continue
				}
				fields[f.Name] = b.field(def.Name, f)
			}
			return fields
		}),
	})
}

func (b *builder) field(typeName string, f *language.FieldDefinition) *graphql.Field {
	out := &graphql.Field{
		Name:        f.Name,
		Description: f.Description,
		Type:        b.output(f.Type),
		Resolve:     b.resolver(typeName, f),
	}
	if d := f.Directives.ForName("deprecated"); d != nil {
		out.DeprecationReason = "No longer supported"
		if r := d.Arguments.ForName("reason"); r != nil {
			out.DeprecationReason = r.Value.Raw
		}
	}
	if len(f.Arguments) > 0 {
		out.Args = graphql.FieldConfigArgument{}
		for _, a := range f.Arguments {
			arg := &graphql.ArgumentConfig{Type: b.input(a.Type), Description: a.Description}
			if a.DefaultValue != nil {
				if v, err := a.DefaultValue.Value(nil); err == nil {
					arg.DefaultValue = normalizeLiteral(v)
				}
			}
			out.Args[a.Name] = arg
		}
	}
	return out
}

func (b *builder) output(t *language.Type) graphql.Output {
	var out graphql.Output
	if t.Elem != nil {
		out = graphql.NewList(b.output(t.Elem))
	} else if s := builtinScalars[t.NamedType]; s != nil {
		out = s
	} else {
		out = b.objects[t.NamedType]
	}
	if t.NonNull {
		return graphql.NewNonNull(out)
	}
	return out
}

func (b *builder) input(t *language.Type) graphql.Input {
	var in graphql.Input
	if t.Elem != nil {
		in = graphql.NewList(b.input(t.Elem))
	} else {
		in = builtinScalars[t.NamedType]
	}
	if t.NonNull {
		return graphql.NewNonNull(in)
	}
	return in
}

func (b *builder) resolver(typeName string, f *language.FieldDefinition) graphql.FieldResolveFn {
	key := typeName + "." + f.Name
	fn := b.app.Resolvers[key]
	if fn == nil {
		var value any
		if d := f.Directives.ForName("static"); d != nil {
			if arg := d.Arguments.ForName("value"); arg != nil {
				value = arg.Value.Raw
			}
		}
		fn = func(graphql.ResolveParams) (any, error) { return value, nil }
	}
	return func(p graphql.ResolveParams) (any, error) {
		logging.FromContext(p.Context).Debug("resolve field", zap.String("field", key))
		return fn(p)
	}
}

// normalizeLiteral maps gqlparser literal values onto the Go types graphql-go
// produces for the same input.
func normalizeLiteral(v any) any {
	switch t := v.(type) {
	case int64:
		return int(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeLiteral(e)
		}
		return out
	default:
		return v
	}
}
