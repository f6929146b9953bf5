// Package phpgen renders an engine.Plan as a PHP upgrade step for a
// component's db/upgrade.php.
package phpgen

import (
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/component"
	"github.com/hlop3z/swan/internal/engine"
)

// ucfirst upper-cases the first letter and leaves the rest untouched.
var ucfirst = cases.Title(language.Und, cases.NoLower)

var funcs = template.FuncMap{
	"q":           Quote,
	"fieldSpec":   FieldSpec,
	"keySpec":     KeySpec,
	"indexSpec":   IndexSpec,
	"defaultText": defaultText,
	"ucfirst":     ucfirst.String,
}

var (
	steps     = make(map[ast.OpType]*template.Template, len(stepSources))
	block     = template.Must(template.New("block").Funcs(funcs).Parse(blockSource))
	savepoint = template.Must(template.New("savepoint").Funcs(funcs).Parse(savepointSource))
)

func init() {
	for typ, src := range stepSources {
		steps[typ] = template.Must(template.New(typ.String()).Funcs(funcs).Parse(src))
	}
}

// stepData is the template input of one step.
type stepData struct {
	Table *ast.Table
	Field *ast.Field
}

type fieldGroup struct {
	Table string
	Steps []string
}

type blockData struct {
	Version     int64
	TableSteps  []string
	FieldGroups []fieldGroup
	Savepoint   string
}

type savepointData struct {
	Type    string
	Name    string
	Version int64
}

// Render returns the upgrade block of p: a version guard holding the table
// steps, then the field steps of each table, then the savepoint call.
// It fails with ErrInvalidDefinition if any operation's table carries
// validation errors.
func Render(p *engine.Plan) (string, error) {
	data := blockData{Version: p.Version}

	for _, op := range p.TableOps() {
		s, err := Step(op)
		if err != nil {
			return "", err
		}
		data.TableSteps = append(data.TableSteps, s)
	}
	for _, table := range p.FieldTables() {
		g := fieldGroup{Table: table}
		for _, op := range p.FieldOps(table) {
			s, err := Step(op)
			if err != nil {
				return "", err
			}
			g.Steps = append(g.Steps, s)
		}
		data.FieldGroups = append(data.FieldGroups, g)
	}

	sp, err := Savepoint(p.Component, p.Version)
	if err != nil {
		return "", err
	}
	data.Savepoint = sp

	var b strings.Builder
	if err := block.Execute(&b, data); err != nil {
		return "", alerr.Wrap(alerr.EInternalError, err, "failed to render upgrade block")
	}
	return b.String(), nil
}

// Step renders the statements of a single operation.
func Step(op ast.Operation) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}
	tmpl, ok := steps[op.Type()]
	if !ok {
		return "", alerr.Newf(alerr.EInternalError, "no template for %s", op.Type())
	}

	var data stepData
	switch o := op.(type) {
	case ast.FieldOperation:
		data = stepData{Table: o.Definition(), Field: o.Target()}
	case *ast.CreateTable:
		data = stepData{Table: o.Def}
	case *ast.DropTable:
		data = stepData{Table: o.Def}
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", alerr.Wrap(alerr.EInternalError, err, "failed to render "+op.Type().String()).WithTable(op.Table())
	}
	return b.String(), nil
}

// Savepoint renders the savepoint call of component at version.
func Savepoint(comp string, version int64) (string, error) {
	typ, name := component.Normalize(comp)
	var b strings.Builder
	err := savepoint.Execute(&b, savepointData{Type: typ, Name: name, Version: version})
	if err != nil {
		return "", alerr.Wrap(alerr.EInternalError, err, "failed to render savepoint")
	}
	return b.String(), nil
}

// -----------------------------------------------------------------------------
// PHP fragments
// -----------------------------------------------------------------------------

var phpEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Quote returns s as a single-quoted PHP string literal.
func Quote(s string) string {
	return "'" + phpEscaper.Replace(s) + "'"
}

// empty mirrors PHP's empty() for the numeric strings stored in a field.
func empty(s string) bool {
	return s == "" || s == "0"
}

// FieldSpec renders the xmldb_field constructor arguments that follow the
// name: type, precision, unsigned, notnull, sequence, default and, when
// includePrevious is set, the field declared before f in t.
func FieldSpec(t *ast.Table, f *ast.Field, includePrevious bool) string {
	var b strings.Builder
	b.WriteString(f.Type.PHPConst())
	b.WriteString(", ")

	if empty(f.Length) {
		b.WriteString("null, ")
	} else {
		precision := f.Length
		if !empty(f.Decimals) {
			precision += ", " + f.Decimals
		}
		b.WriteString(Quote(precision))
		b.WriteString(", ")
	}

	b.WriteString("null, ")
	if f.NotNull {
		b.WriteString("XMLDB_NOTNULL, ")
	} else {
		b.WriteString("null, ")
	}
	if f.Sequence {
		b.WriteString("XMLDB_SEQUENCE, ")
	} else {
		b.WriteString("null, ")
	}

	if def, ok := f.DefaultValue(); ok && !f.Sequence {
		b.WriteString(Quote(def))
	} else {
		b.WriteString("null")
	}

	if includePrevious {
		if prev := t.Previous(f.Name); prev != "" {
			b.WriteString(", " + Quote(prev))
		} else {
			b.WriteString(", null")
		}
	}
	return b.String()
}

// KeySpec renders the xmldb_key arguments that follow the name.
func KeySpec(k *ast.Key) string {
	s := k.Type.PHPConst() + ", " + phpArray(k.Fields)
	if k.Type.IsForeign() {
		s += ", " + Quote(k.RefTable) + ", " + phpArray(k.RefFields)
	}
	return s
}

// IndexSpec renders the xmldb_index arguments that follow the name.
func IndexSpec(i *ast.Index) string {
	return i.PHPConst() + ", " + phpArray(i.Fields)
}

func phpArray(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return "array(" + strings.Join(quoted, ", ") + ")"
}

func defaultText(f *ast.Field) string {
	if def, ok := f.DefaultValue(); ok {
		return def
	}
	return "drop it"
}
