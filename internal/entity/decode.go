package entity

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

// Top-level entity document keys.
var entityKeys = []string{"name", "namespace", "table", "doc", "abstract", "properties"}

type valueKind int

const (
	kindNull valueKind = iota
	kindScalar
	kindMapping
	kindSequence
	kindDeferred
)

func (k valueKind) String() string {
	switch k {
	case kindScalar:
		return "scalar"
	case kindMapping:
		return "mapping"
	case kindSequence:
		return "list"
	case kindDeferred:
		return "function"
	default:
		return "null"
	}
}

// value is the ordered document tree both loaders decode into.
// Scalars hold bool, int64, float64 or string.
type value struct {
	kind   valueKind
	scalar any
	keys   []string
	items  []*value
	line   int
}

func (v *value) get(key string) *value {
	if v == nil || v.kind != kindMapping {
		return nil
	}
	for i, k := range v.keys {
		if k == key {
			return v.items[i]
		}
	}
	return nil
}

// decoder turns a value tree into an Entity, collecting file context for errors.
type decoder struct {
	source string
}

func (d *decoder) fail(v *value, format string, args ...any) *alerr.Error {
	line := 0
	if v != nil {
		line = v.line
	}
	return alerr.Newf(alerr.ErrInvalidEntity, format, args...).WithFile(d.source, line)
}

func (d *decoder) entity(root *value) (*Entity, error) {
	if root == nil || root.kind != kindMapping {
		return nil, d.fail(root, "entity definition must be a mapping")
	}
	if err := d.checkKeys(root, entityKeys, "entity key"); err != nil {
		return nil, err
	}

	e := &Entity{Source: d.source}
	var err error
	if e.Name, err = d.optString(root, "name"); err != nil {
		return nil, err
	}
	if e.Namespace, err = d.optString(root, "namespace"); err != nil {
		return nil, err
	}
	if e.Table, err = d.optString(root, "table"); err != nil {
		return nil, err
	}
	if e.Doc, err = d.optString(root, "doc"); err != nil {
		return nil, err
	}
	if e.Abstract, err = d.optBool(root, "abstract"); err != nil {
		return nil, err
	}

	if e.Name == "" {
		base := strings.TrimSuffix(filepath.Base(d.source), filepath.Ext(d.source))
		e.Name = base
		if e.Namespace != "" {
			e.Name = e.Namespace + `\` + base
		}
	}
	if e.Table == "" && !e.Abstract {
		return nil, d.fail(root, "entity %s has no table", e.Name).
			WithEntity(e.Name).
			WithHelp("add 'table: <name>' to the entity definition")
	}

	props := root.get("properties")
	if props == nil || props.kind == kindNull {
		return e, nil
	}
	if props.kind != kindMapping {
		return nil, d.fail(props, "properties must be a mapping, got %s", props.kind).WithEntity(e.Name)
	}
	seen := make(map[string]bool, len(props.keys))
	for i, name := range props.keys {
		if seen[name] {
			return nil, d.fail(props.items[i], "property %q is declared twice", name).WithEntity(e.Name)
		}
		seen[name] = true
		p, err := d.property(name, props.items[i])
		if err != nil {
			if ae, ok := err.(*alerr.Error); ok {
				ae.WithEntity(e.Name)
			}
			return nil, err
		}
		e.Properties = append(e.Properties, p)
	}
	return e, nil
}

func (d *decoder) property(name string, v *value) (Property, error) {
	p := Property{Name: name}
	if v == nil || v.kind != kindMapping {
		return p, d.fail(v, "property %q must be a mapping of options", name).WithField(name)
	}
	if err := d.checkKeys(v, PropertyOptions, "property option"); err != nil {
		return p, err.(*alerr.Error).WithField(name)
	}

	typ := v.get(OptType)
	if typ == nil || typ.kind != kindScalar {
		return p, d.fail(v, "property %q has no type", name).WithField(name)
	}
	p.Type = NormalizeType(fmt.Sprint(typ.scalar))

	if dbt := v.get(OptDBType); dbt != nil && dbt.kind != kindNull {
		s := strings.TrimSpace(fmt.Sprint(dbt.scalar))
		ft, ok := ast.ParseFieldType(s)
		if !ok {
			ft, ok = ast.ParseFieldType(strings.ToLower(s))
		}
		if dbt.kind != kindScalar || !ok {
			return p, d.fail(dbt, "unknown dbtype %q", s).
				WithField(name).
				WithHelp(alerr.SuggestSimilar(strings.ToLower(s), fieldTypeNames()))
		}
		p.DBType = ft.String()
	}

	if prec := v.get(OptPrecision); prec != nil && prec.kind != kindNull {
		if prec.kind != kindScalar {
			return p, d.fail(prec, "precision must be a number or string").WithField(name)
		}
		p.Precision = scalarString(prec.scalar)
	}

	var err error
	if p.Null, err = d.nullable(v.get(OptNull)); err != nil {
		return p, err.(*alerr.Error).WithField(name)
	}
	if p.Sequence, err = d.optBool(v, OptSequence); err != nil {
		return p, err.(*alerr.Error).WithField(name)
	}
	if p.Comment, err = d.optString(v, OptComment); err != nil {
		return p, err.(*alerr.Error).WithField(name)
	}

	if def := v.get(OptDefault); def != nil {
		switch def.kind {
		case kindNull:
		case kindDeferred:
			p.Default = Deferred()
		case kindScalar:
			p.Default = Literal(def.scalar)
		default:
			return p, d.fail(def, "default must be a scalar or a function, got %s", def.kind).WithField(name)
		}
	}

	decls := []struct {
		option string
		dst    *KeyDecl
	}{
		{OptForeignKey, &p.ForeignKey},
		{OptUniqueForeignKey, &p.UniqueForeignKey},
		{OptUniqueKey, &p.UniqueKey},
		{OptIndex, &p.Index},
		{OptUniqueIndex, &p.UniqueIndex},
	}
	for _, decl := range decls {
		kd, err := d.keyDecl(decl.option, v.get(decl.option))
		if err != nil {
			return p, err.WithField(name)
		}
		*decl.dst = kd
	}
	return p, nil
}

func (d *decoder) keyDecl(option string, v *value) (KeyDecl, *alerr.Error) {
	if v == nil {
		return KeyDecl{}, nil
	}
	switch v.kind {
	case kindNull:
		return KeyDecl{}, nil
	case kindScalar:
		return Scalar(v.scalar), nil
	case kindMapping:
		entries := make([]KeyEntry, 0, len(v.keys))
		for i, k := range v.keys {
			item := v.items[i]
			if item.kind != kindScalar {
				return KeyDecl{}, d.fail(item, "%s %q must map to a scalar, got %s", option, k, item.kind)
			}
			entries = append(entries, KeyEntry{Name: k, Value: item.scalar})
		}
		return Mapping(entries...), nil
	default:
		return KeyDecl{}, d.fail(v, "%s must be a scalar or a mapping, got %s", option, v.kind)
	}
}

func (d *decoder) checkKeys(v *value, known []string, what string) error {
	for i, k := range v.keys {
		if !slices.Contains(known, k) {
			return d.fail(v.items[i], "unknown %s %q", what, k).
				WithHelp(alerr.SuggestSimilar(k, known))
		}
	}
	return nil
}

func (d *decoder) optString(v *value, key string) (string, error) {
	item := v.get(key)
	if item == nil || item.kind == kindNull {
		return "", nil
	}
	if item.kind != kindScalar {
		return "", d.fail(item, "%s must be a string, got %s", key, item.kind)
	}
	return scalarString(item.scalar), nil
}

func (d *decoder) optBool(v *value, key string) (bool, error) {
	item := v.get(key)
	if item == nil || item.kind == kindNull {
		return false, nil
	}
	b, ok := item.scalar.(bool)
	if !ok {
		return false, d.fail(item, "%s must be true or false", key)
	}
	return b, nil
}

// nullable accepts a bool or the NULL_ALLOWED / NULL_NOT_ALLOWED constants.
func (d *decoder) nullable(v *value) (bool, error) {
	if v == nil || v.kind == kindNull {
		return false, nil
	}
	switch s := v.scalar.(type) {
	case bool:
		return s, nil
	case string:
		switch strings.ToUpper(s) {
		case "NULL_ALLOWED", "ALLOWED":
			return true, nil
		case "NULL_NOT_ALLOWED", "NOT_ALLOWED":
			return false, nil
		}
	}
	return false, d.fail(v, "null must be true, false, NULL_ALLOWED or NULL_NOT_ALLOWED")
}

// NormalizeType lowercases a logical type and strips a PARAM_ prefix,
// so "PARAM_INT" and "int" name the same type.
func NormalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.TrimPrefix(t, "param_")
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(v)
	}
}

func fieldTypeNames() []string {
	var names []string
	for t := ast.TypeInteger; t <= ast.TypeDatetime; t++ {
		names = append(names, t.String())
	}
	return names
}
