package language

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedObject is a response object whose keys serialize in insertion order.
type OrderedObject = orderedmap.OrderedMap[string, any]

// OrderData rebuilds an executor's data tree so that object keys follow the
// order of the selected operation's selection sets. Keys present in data but
// not selected are appended in lexical order. If the query cannot be parsed,
// the operation cannot be found, or data is not an object, data is returned as is.
func OrderData(query, operationName string, data any) any {
	obj, ok := data.(map[string]any)
	if !ok {
		return data
	}
	doc, err := ParseQuery(query)
	if err != nil {
		return data
	}
	op := FindOperation(doc, operationName)
	if op == nil {
		return data
	}
	return orderObject(doc, op.SelectionSet, obj)
}

func orderObject(doc *QueryDocument, sel SelectionSet, obj map[string]any) *OrderedObject {
	g := newFieldGroups()
	g.collect(doc, sel, map[string]bool{})

	out := orderedmap.New[string, any]()
	for _, name := range g.names {
		v, ok := obj[name]
		if !ok {
			continue
		}
		out.Set(name, orderValue(doc, g.subSelections(name), v))
	}

	var rest []string
	for k := range obj {
		if _, seen := g.fields[k]; !seen {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out.Set(k, orderValue(doc, nil, obj[k]))
	}
	return out
}

func orderValue(doc *QueryDocument, sel SelectionSet, v any) any {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil
		}
		return orderObject(doc, sel, t)
	case []any:
		if t == nil {
			return nil
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = orderValue(doc, sel, item)
		}
		return out
	default:
		return v
	}
}

// fieldGroups groups selected fields by response name in first-seen order.
type fieldGroups struct {
	names  []string
	fields map[string][]*Field
}

func newFieldGroups() *fieldGroups {
	return &fieldGroups{fields: make(map[string][]*Field)}
}

func (g *fieldGroups) add(f *Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if _, ok := g.fields[name]; !ok {
		g.names = append(g.names, name)
	}
	g.fields[name] = append(g.fields[name], f)
}

// collect walks fields, inline fragments and fragment spreads. Type conditions
// are ignored: only keys that exist in the data are ever emitted.
func (g *fieldGroups) collect(doc *QueryDocument, sel SelectionSet, visited map[string]bool) {
	for _, s := range sel {
		switch s := s.(type) {
		case *Field:
			g.add(s)
		case *InlineFragment:
			g.collect(doc, s.SelectionSet, visited)
		case *FragmentSpread:
			if visited[s.Name] {
				continue
			}
			visited[s.Name] = true
			if def := doc.Fragments.ForName(s.Name); def != nil {
				g.collect(doc, def.SelectionSet, visited)
			}
		}
	}
}

func (g *fieldGroups) subSelections(name string) SelectionSet {
	var merged SelectionSet
	for _, f := range g.fields[name] {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}
