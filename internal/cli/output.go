package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders aligned columns. Cell widths are measured with
// lipgloss.Width so styled cells stay aligned.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row, padding missing cells.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.headers) {
		cells = append(cells, "")
	}
	t.rows = append(t.rows, cells[:len(t.headers)])
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

func (t *Table) widths() []int {
	w := make([]int, len(t.headers))
	for i, h := range t.headers {
		w[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			w[i] = max(w[i], lipgloss.Width(cell))
		}
	}
	return w
}

// String renders the header, a separator and every row. Trailing
// padding is trimmed from each line.
func (t *Table) String() string {
	if len(t.headers) == 0 {
		return ""
	}
	w := t.widths()
	var b strings.Builder

	line := func(cells []string, style func(string) string) {
		var l strings.Builder
		for i, cell := range cells {
			if i > 0 {
				l.WriteString("  ")
			}
			pad := strings.Repeat(" ", w[i]-lipgloss.Width(cell))
			l.WriteString(style(cell) + pad)
		}
		b.WriteString(strings.TrimRight(l.String(), " ") + "\n")
	}

	line(t.headers, Header)
	seps := make([]string, len(w))
	for i := range w {
		seps[i] = strings.Repeat("─", w[i])
	}
	line(seps, Dim)
	for _, row := range t.rows {
		line(row, func(s string) string { return s })
	}
	return b.String()
}

// Marker prefixes for List items.
const (
	MarkAdded   = "+"
	MarkRemoved = "-"
	MarkChanged = "~"
	MarkOK      = "✓"
	MarkFailed  = "✗"
)

// List is a bulleted list whose markers are colored by kind.
type List struct {
	items []string
}

// NewList creates an empty list.
func NewList() *List { return &List{} }

// Add appends an item with a neutral bullet.
func (l *List) Add(item string) { l.items = append(l.items, "• "+item) }

// AddAdded appends an item marked as added.
func (l *List) AddAdded(item string) { l.items = append(l.items, Added(MarkAdded)+" "+item) }

// AddRemoved appends an item marked as removed.
func (l *List) AddRemoved(item string) { l.items = append(l.items, Removed(MarkRemoved)+" "+item) }

// AddChanged appends an item marked as modified.
func (l *List) AddChanged(item string) { l.items = append(l.items, Changed(MarkChanged)+" "+item) }

// AddOK appends an item marked as passing.
func (l *List) AddOK(item string) { l.items = append(l.items, Success(MarkOK)+" "+item) }

// AddFailed appends an item marked as failing.
func (l *List) AddFailed(item string) { l.items = append(l.items, Error(MarkFailed)+" "+item) }

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// String renders one item per line, indented by two spaces.
func (l *List) String() string {
	var b strings.Builder
	for _, item := range l.items {
		b.WriteString("  " + item + "\n")
	}
	return b.String()
}

// Section renders a bold title followed by body.
func Section(title, body string) string {
	return Header(title) + "\n" + body
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

// KeyValue renders "key: value" lines with keys padded to a common width.
// Pairs are given flat: key, value, key, value...
func KeyValue(pairs ...string) string {
	width := 0
	for i := 0; i < len(pairs); i += 2 {
		width = max(width, len(pairs[i]))
	}
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%-*s", width+1, pairs[i]+":")), pairs[i+1])
	}
	return b.String()
}

// FormatCount renders "1 table" / "3 tables".
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
