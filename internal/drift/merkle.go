// Package drift detects whether install.xml still matches the structure
// derived from the entities, using merkle trees over per-table hashes.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

// StructureHash represents the merkle root hash of a structure.
type StructureHash struct {
	Root   string                // Root hash of the entire structure
	Tables map[string]*TableHash // Individual table hashes for drill-down
}

// TableHash represents the hash of a single table.
type TableHash struct {
	Name    string
	Hash    string            // Hash of the entire table structure
	Fields  map[string]string // Field name -> hash
	Keys    map[string]string // Key name -> hash
	Indexes map[string]string // Index name -> hash
}

// tableContent implements merkletree.Content for table-level hashing.
type tableContent struct {
	name string
	hash string
}

func (t tableContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(t.name + ":" + t.hash))
	return h[:], nil
}

func (t tableContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(tableContent)
	if !ok {
		return false, nil
	}
	return t.name == o.name && t.hash == o.hash, nil
}

// ComputeHash computes the merkle tree hash of a structure. Comments and
// field order do not take part: they never produce an upgrade step.
func ComputeHash(s *ast.Structure) (*StructureHash, error) {
	result := &StructureHash{Tables: make(map[string]*TableHash)}
	if s == nil || len(s.Tables) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	names := s.TableNames()
	sort.Strings(names)

	var contents []merkletree.Content
	for _, name := range names {
		th := computeTableHash(s.Table(name))
		result.Tables[name] = th
		contents = append(contents, tableContent{name: name, hash: th.Hash})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

func computeTableHash(t *ast.Table) *TableHash {
	result := &TableHash{
		Name:    t.Name,
		Fields:  make(map[string]string, len(t.Fields)),
		Keys:    make(map[string]string, len(t.Keys)),
		Indexes: make(map[string]string, len(t.Indexes)),
	}

	for _, f := range t.Fields {
		result.Fields[f.Name] = computeFieldHash(f)
	}
	for _, k := range t.Keys {
		result.Keys[k.Name] = hashString(fmt.Sprintf("type:%s|fields:[%s]|ref_table:%s|ref_fields:[%s]",
			k.Type, strings.Join(k.Fields, ","), k.RefTable, strings.Join(k.RefFields, ",")))
	}
	for _, i := range t.Indexes {
		result.Indexes[i.Name] = hashString(fmt.Sprintf("unique:%v|fields:[%s]",
			i.Unique, strings.Join(i.Fields, ",")))
	}

	result.Hash = hashString(fmt.Sprintf("table:%s|fields:[%s]|keys:[%s]|indexes:[%s]",
		t.Name, joinSorted(result.Fields), joinSorted(result.Keys), joinSorted(result.Indexes)))
	return result
}

// computeFieldHash hashes the attributes an upgrade step can change.
func computeFieldHash(f *ast.Field) string {
	def, _ := f.DefaultValue()
	return hashString(fmt.Sprintf("type:%s|length:%s|decimals:%s|notnull:%v|sequence:%v|default:%s",
		f.Type, canonical(f.Length), canonical(f.Decimals), f.NotNull, f.Sequence, canonical(def)))
}

// canonical renders numeric text in one form so that "1.50" and "1.5"
// hash alike.
func canonical(s string) string {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s
}

func joinSorted(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for name, h := range m {
		parts = append(parts, name+":"+h)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// hashString computes SHA256 hash of a string and returns hex encoding.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for empty structures.
func emptyHash() string {
	return hashString("empty_structure")
}

// -----------------------------------------------------------------------------
// Comparison
// -----------------------------------------------------------------------------

// Comparison represents the result of comparing two structure hashes.
type Comparison struct {
	Match         bool                  // True if structures are identical
	ExpectedRoot  string                // Derived structure root hash
	ActualRoot    string                // install.xml root hash
	TableDiffs    map[string]*TableDiff // Tables with differences
	MissingTables []string              // Derived tables absent from install.xml
	ExtraTables   []string              // install.xml tables no entity derives
}

// TableDiff represents differences within a table.
type TableDiff struct {
	Name            string
	MissingFields   []string
	ExtraFields     []string
	ModifiedFields  []string
	MissingKeys     []string
	ExtraKeys       []string
	ModifiedKeys    []string
	MissingIndexes  []string
	ExtraIndexes    []string
	ModifiedIndexes []string
}

// HasDifferences returns true if the table has any differences.
func (d *TableDiff) HasDifferences() bool {
	return len(d.MissingFields) > 0 || len(d.ExtraFields) > 0 || len(d.ModifiedFields) > 0 ||
		len(d.MissingKeys) > 0 || len(d.ExtraKeys) > 0 || len(d.ModifiedKeys) > 0 ||
		len(d.MissingIndexes) > 0 || len(d.ExtraIndexes) > 0 || len(d.ModifiedIndexes) > 0
}

// CompareHashes compares two structure hashes and returns differences.
func CompareHashes(expected, actual *StructureHash) *Comparison {
	result := &Comparison{
		Match:        expected.Root == actual.Root,
		ExpectedRoot: expected.Root,
		ActualRoot:   actual.Root,
		TableDiffs:   make(map[string]*TableDiff),
	}
	if result.Match {
		return result
	}

	for name, et := range expected.Tables {
		at, ok := actual.Tables[name]
		if !ok {
			result.MissingTables = append(result.MissingTables, name)
			continue
		}
		if et.Hash != at.Hash {
			result.TableDiffs[name] = compareTableHashes(et, at)
		}
	}
	for name := range actual.Tables {
		if _, ok := expected.Tables[name]; !ok {
			result.ExtraTables = append(result.ExtraTables, name)
		}
	}
	sort.Strings(result.MissingTables)
	sort.Strings(result.ExtraTables)
	return result
}

func compareTableHashes(expected, actual *TableHash) *TableDiff {
	diff := &TableDiff{Name: expected.Name}
	diff.MissingFields, diff.ExtraFields, diff.ModifiedFields = compareMembers(expected.Fields, actual.Fields)
	diff.MissingKeys, diff.ExtraKeys, diff.ModifiedKeys = compareMembers(expected.Keys, actual.Keys)
	diff.MissingIndexes, diff.ExtraIndexes, diff.ModifiedIndexes = compareMembers(expected.Indexes, actual.Indexes)
	return diff
}

func compareMembers(expected, actual map[string]string) (missing, extra, modified []string) {
	for name, h := range expected {
		ah, ok := actual[name]
		if !ok {
			missing = append(missing, name)
		} else if h != ah {
			modified = append(modified, name)
		}
	}
	for name := range actual {
		if _, ok := expected[name]; !ok {
			extra = append(extra, name)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	sort.Strings(modified)
	return missing, extra, modified
}
