package drift

import (
	"sort"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/ast"
)

// Result represents the complete drift detection result.
type Result struct {
	// HasDrift is true if any differences were found
	HasDrift bool

	// ExpectedHash is the merkle root of the derived structure
	ExpectedHash string

	// ActualHash is the merkle root of install.xml
	ActualHash string

	// Comparison contains detailed comparison results
	Comparison *Comparison

	// Expected is the structure derived from the entities
	Expected *ast.Structure

	// Actual is the structure read from install.xml
	Actual *ast.Structure
}

// Detect compares the derived structure against the stored one.
func Detect(expected, actual *ast.Structure) (*Result, error) {
	expectedHash, err := ComputeHash(expected)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to compute derived structure hash")
	}
	actualHash, err := ComputeHash(actual)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to compute install.xml hash")
	}

	comparison := CompareHashes(expectedHash, actualHash)
	return &Result{
		HasDrift:     !comparison.Match,
		ExpectedHash: expectedHash.Root,
		ActualHash:   actualHash.Root,
		Comparison:   comparison,
		Expected:     expected,
		Actual:       actual,
	}, nil
}

// Status values of a TableSummary.
const (
	StatusOK       = "ok"
	StatusMissing  = "missing"
	StatusExtra    = "extra"
	StatusModified = "modified"
)

// Summary provides a per-table view of a drift detection result.
type Summary struct {
	Tables         int // tables in the derived structure
	MissingTables  int
	ExtraTables    int
	ModifiedTables int
	Details        []TableSummary
}

// InSync reports whether nothing differs.
func (s *Summary) InSync() bool {
	return s.MissingTables+s.ExtraTables+s.ModifiedTables == 0
}

// TableSummary summarizes drift for a single table.
type TableSummary struct {
	Name    string
	Status  string
	Fields  Counts
	Keys    Counts
	Indexes Counts
}

// Counts tracks missing/extra/modified counts.
type Counts struct {
	Missing  int
	Extra    int
	Modified int
}

// Summarize creates a summary with one entry per table of either structure,
// sorted by table name.
func Summarize(result *Result) *Summary {
	if result == nil || result.Comparison == nil {
		return &Summary{}
	}
	comp := result.Comparison

	summary := &Summary{
		MissingTables:  len(comp.MissingTables),
		ExtraTables:    len(comp.ExtraTables),
		ModifiedTables: len(comp.TableDiffs),
	}
	if result.Expected != nil {
		summary.Tables = len(result.Expected.Tables)
		for _, t := range result.Expected.Tables {
			if _, modified := comp.TableDiffs[t.Name]; modified || contains(comp.MissingTables, t.Name) {
				continue
			}
			summary.Details = append(summary.Details, TableSummary{Name: t.Name, Status: StatusOK})
		}
	}

	for _, name := range comp.MissingTables {
		summary.Details = append(summary.Details, TableSummary{Name: name, Status: StatusMissing})
	}
	for _, name := range comp.ExtraTables {
		summary.Details = append(summary.Details, TableSummary{Name: name, Status: StatusExtra})
	}
	for name, diff := range comp.TableDiffs {
		summary.Details = append(summary.Details, TableSummary{
			Name:   name,
			Status: StatusModified,
			Fields: Counts{
				Missing:  len(diff.MissingFields),
				Extra:    len(diff.ExtraFields),
				Modified: len(diff.ModifiedFields),
			},
			Keys: Counts{
				Missing:  len(diff.MissingKeys),
				Extra:    len(diff.ExtraKeys),
				Modified: len(diff.ModifiedKeys),
			},
			Indexes: Counts{
				Missing:  len(diff.MissingIndexes),
				Extra:    len(diff.ExtraIndexes),
				Modified: len(diff.ModifiedIndexes),
			},
		})
	}

	sort.Slice(summary.Details, func(i, j int) bool {
		return summary.Details[i].Name < summary.Details[j].Name
	})
	return summary
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
