package derive

import (
	"slices"
	"testing"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
	"github.com/hlop3z/swan/internal/entity"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref       any
		wantTable string
		wantField string
		wantOK    bool
	}{
		{"user.id", "user", "id", true},
		{"user_source.userid", "user_source", "userid", true},
		{"user", "", "", false},
		{"a.b.c", "", "", false},
		{".id", "", "", false},
		{"user.", "", "", false},
		{true, "", "", false},
		{int64(1), "", "", false},
	}
	for _, tt := range tests {
		table, field, ok := ParseReference(tt.ref)
		if table != tt.wantTable || field != tt.wantField || ok != tt.wantOK {
			t.Errorf("ParseReference(%#v) = %q, %q, %v", tt.ref, table, field, ok)
		}
	}
}

func TestBuildKeysScalarShorthand(t *testing.T) {
	keys, err := BuildKeys([]entity.Property{
		{Name: "courseid", Type: "int", ForeignKey: entity.Scalar("course.id")},
		{Name: "nonce", Type: "raw", UniqueKey: entity.Scalar(true)},
		{Name: "code", Type: "raw", UniqueKey: entity.Scalar("code-nonce")},
		{Name: "flag", Type: "int", UniqueKey: entity.Scalar(false)},
	})
	if err != nil {
		t.Fatalf("BuildKeys() error = %v", err)
	}

	want := []ast.Key{
		{Name: "primary", Type: ast.KeyPrimary, Fields: []string{"id"}},
		{Name: "courseid", Type: ast.KeyForeign, Fields: []string{"courseid"}, RefTable: "course", RefFields: []string{"id"}},
		{Name: "nonce", Type: ast.KeyUnique, Fields: []string{"nonce"}},
		{Name: "code-nonce", Type: ast.KeyUnique, Fields: []string{"code"}},
		{Name: "flag", Type: ast.KeyUnique, Fields: []string{"flag"}},
	}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %d", keyNames(keys), len(want))
	}
	for i, w := range want {
		k := keys[i]
		if k.Name != w.Name || k.Type != w.Type || !slices.Equal(k.Fields, w.Fields) ||
			k.RefTable != w.RefTable || !slices.Equal(k.RefFields, w.RefFields) {
			t.Errorf("keys[%d] = %+v, want %+v", i, *k, w)
		}
	}
}

func TestBuildKeysMergeOrder(t *testing.T) {
	ref := entity.Mapping(entity.KeyEntry{Name: "k", Value: "user.id"})
	keys, err := BuildKeys([]entity.Property{
		{Name: "b", Type: "int", UniqueForeignKey: ref},
		{Name: "a", Type: "int", UniqueForeignKey: ref},
	})
	if err != nil {
		t.Fatalf("BuildKeys() error = %v", err)
	}
	k := keys[1]
	if k.Type != ast.KeyForeignUnique || !slices.Equal(k.Fields, []string{"b", "a"}) ||
		k.RefTable != "user" || !slices.Equal(k.RefFields, []string{"id", "id"}) {
		t.Errorf("merged key = %+v", *k)
	}
}

func TestBuildKeysErrors(t *testing.T) {
	tests := []struct {
		name  string
		props []entity.Property
		want  alerr.Code
	}{
		{
			name:  "malformed reference",
			props: []entity.Property{{Name: "a", ForeignKey: entity.Scalar("user")}},
			want:  alerr.ErrMalformedForeignReference,
		},
		{
			name:  "non-string reference",
			props: []entity.Property{{Name: "a", ForeignKey: entity.Scalar(true)}},
			want:  alerr.ErrMalformedForeignReference,
		},
		{
			name:  "false reference",
			props: []entity.Property{{Name: "a", ForeignKey: entity.Scalar(false)}},
			want:  alerr.ErrMalformedForeignReference,
		},
		{
			name:  "false unique reference",
			props: []entity.Property{{Name: "a", UniqueForeignKey: entity.Scalar(false)}},
			want:  alerr.ErrMalformedForeignReference,
		},
		{
			name: "kind mismatch",
			props: []entity.Property{
				{Name: "a", ForeignKey: entity.Mapping(entity.KeyEntry{Name: "k", Value: "user.id"})},
				{Name: "b", UniqueForeignKey: entity.Mapping(entity.KeyEntry{Name: "k", Value: "user.id"})},
			},
			want: alerr.ErrInconsistentKeyKind,
		},
		{
			name:  "primary collision",
			props: []entity.Property{{Name: "a", UniqueKey: entity.Scalar("primary")}},
			want:  alerr.ErrInconsistentKeyKind,
		},
		{
			name: "foreign target mismatch",
			props: []entity.Property{
				{Name: "a", ForeignKey: entity.Mapping(entity.KeyEntry{Name: "k", Value: "A.id"})},
				{Name: "b", ForeignKey: entity.Mapping(entity.KeyEntry{Name: "k", Value: "B.id"})},
			},
			want: alerr.ErrInconsistentForeignTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildKeys(tt.props)
			if !alerr.Is(err, tt.want) {
				t.Errorf("BuildKeys() error = %v, want %s", err, tt.want)
			}
			if !alerr.IsValidation(err) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestBuildIndexes(t *testing.T) {
	indexes, err := BuildIndexes([]entity.Property{
		{Name: "kind", Index: entity.Scalar(true)},
		{Name: "hidden", Index: entity.Scalar(false)},
		{Name: "a", UniqueIndex: entity.Scalar("a-b")},
		{Name: "b", UniqueIndex: entity.Scalar("a-b"), Index: entity.Mapping(entity.KeyEntry{Name: "b-only", Value: true})},
	})
	if err != nil {
		t.Fatalf("BuildIndexes() error = %v", err)
	}
	var names []string
	for _, i := range indexes {
		names = append(names, i.Name)
	}
	if !slices.Equal(names, []string{"kind", "hidden", "a-b", "b-only"}) {
		t.Errorf("indexes = %v", names)
	}
	if indexes[1].Unique || !slices.Equal(indexes[1].Fields, []string{"hidden"}) {
		t.Errorf("hidden = %+v", *indexes[1])
	}
	if !indexes[2].Unique || !slices.Equal(indexes[2].Fields, []string{"a", "b"}) {
		t.Errorf("a-b = %+v", *indexes[2])
	}
}

func TestBuildIndexesUniquenessMismatch(t *testing.T) {
	_, err := BuildIndexes([]entity.Property{
		{Name: "a", Index: entity.Scalar("ab")},
		{Name: "b", UniqueIndex: entity.Scalar("ab")},
	})
	if !alerr.Is(err, alerr.ErrInconsistentUniqueness) {
		t.Errorf("error = %v, want E2003", err)
	}
}
