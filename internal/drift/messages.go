package drift

import (
	"fmt"
	"sort"
	"strings"
)

// FormatResult formats a drift detection result for CLI output.
func FormatResult(result *Result) string {
	if result == nil {
		return "No drift detection result available."
	}
	if !result.HasDrift {
		return FormatNoDrift(result)
	}
	return FormatDrift(result)
}

// FormatNoDrift formats a successful (no drift) result.
func FormatNoDrift(result *Result) string {
	var b strings.Builder

	tables := 0
	if result.Expected != nil {
		tables = len(result.Expected.Tables)
	}
	b.WriteString("install.xml is up to date\n\n")
	fmt.Fprintf(&b, "  Tables:          %d\n", tables)
	fmt.Fprintf(&b, "  Structure hash:  %s\n", truncateHash(result.ExpectedHash))
	return b.String()
}

// FormatDrift formats a drift detection result with differences.
func FormatDrift(result *Result) string {
	var b strings.Builder

	b.WriteString("install.xml differs from the entities\n\n")
	fmt.Fprintf(&b, "  Derived hash:     %s\n", truncateHash(result.ExpectedHash))
	fmt.Fprintf(&b, "  install.xml hash: %s\n", truncateHash(result.ActualHash))
	b.WriteString("\n")

	comp := result.Comparison

	if len(comp.MissingTables) > 0 {
		b.WriteString("  Tables not yet in install.xml:\n")
		for _, name := range comp.MissingTables {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(comp.ExtraTables) > 0 {
		b.WriteString("  Tables no entity derives:\n")
		for _, name := range comp.ExtraTables {
			fmt.Fprintf(&b, "    + %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(comp.TableDiffs) > 0 {
		b.WriteString("  Modified tables:\n")
		names := make([]string, 0, len(comp.TableDiffs))
		for name := range comp.TableDiffs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n    %s:\n", name)
			formatTableDiff(&b, comp.TableDiffs[name], "      ")
		}
	}

	b.WriteString("\nFix:\n")
	b.WriteString("  Generate the upgrade step and update install.xml:\n")
	b.WriteString("    swan migrate\n")
	return b.String()
}

func formatTableDiff(b *strings.Builder, diff *TableDiff, indent string) {
	section(b, indent, "Fields missing from install.xml", "-", diff.MissingFields)
	section(b, indent, "Fields only in install.xml", "+", diff.ExtraFields)
	section(b, indent, "Fields with different definitions", "~", diff.ModifiedFields)
	section(b, indent, "Keys missing from install.xml", "-", diff.MissingKeys)
	section(b, indent, "Keys only in install.xml", "+", diff.ExtraKeys)
	section(b, indent, "Keys with different definitions", "~", diff.ModifiedKeys)
	section(b, indent, "Indexes missing from install.xml", "-", diff.MissingIndexes)
	section(b, indent, "Indexes only in install.xml", "+", diff.ExtraIndexes)
	section(b, indent, "Indexes with different definitions", "~", diff.ModifiedIndexes)
}

func section(b *strings.Builder, indent, title, mark string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "%s%s:\n", indent, title)
	for _, n := range names {
		fmt.Fprintf(b, "%s  %s %s\n", indent, mark, n)
	}
}

// FormatSummary formats a drift summary for brief output.
func FormatSummary(summary *Summary) string {
	if summary == nil {
		return "No summary available."
	}
	if summary.InSync() {
		return fmt.Sprintf("No drift detected. %d tables in sync.", summary.Tables)
	}

	var parts []string
	if summary.MissingTables > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", summary.MissingTables))
	}
	if summary.ExtraTables > 0 {
		parts = append(parts, fmt.Sprintf("%d extra", summary.ExtraTables))
	}
	if summary.ModifiedTables > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", summary.ModifiedTables))
	}
	return fmt.Sprintf("Drift detected: %s", strings.Join(parts, ", "))
}

// FormatQuickStatus formats a one-line status.
func FormatQuickStatus(hasDrift bool, expectedHash, actualHash string) string {
	if !hasDrift {
		return fmt.Sprintf("OK  %s", truncateHash(expectedHash))
	}
	return fmt.Sprintf("DRIFT  derived: %s  install.xml: %s",
		truncateHash(expectedHash), truncateHash(actualHash))
}

// truncateHash returns the first 12 characters of a hash for display.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
