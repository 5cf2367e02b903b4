package schema

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/formatter"

	language "github.com/hanpama/hellograph/internal/language"
)

// Print writes the app's SDL in canonical form.
func Print(w io.Writer, a *App) error {
	doc, err := language.ParseSchema(a.Name+".graphql", a.Source())
	if err != nil {
		return errors.Wrapf(err, "parse schema %s", a.Name)
	}
	formatter.NewFormatter(w).FormatSchemaDocument(doc)
	return nil
}

// PrintString is Print into a string.
func PrintString(a *App) (string, error) {
	var sb strings.Builder
	if err := Print(&sb, a); err != nil {
		return "", err
	}
	return sb.String(), nil
}
