package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hlop3z/swan/internal/alerr"
)

// Context keys rendered by the diagnostic layout instead of the details list.
var layoutKeys = map[string]bool{
	"file":   true,
	"line":   true,
	"column": true,
	"source": true,
	"notes":  true,
	"helps":  true,
}

// FormatError renders an error rustc-style:
//
//	error[E3005]: JavaScript execution failed
//	  --> classes/persistent/thing.js:3
//	   |
//	 3 | field("name", "chat", {length: 20})
//	   | ^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^
//	   |
//	   = table: local_example_thing
//	   = note: ...
//	   = help: ...
//
// Errors without a code are rendered as a plain "error: msg" line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	var ae *alerr.Error
	if errors.As(err, &ae) {
		return formatCoded(ae)
	}
	return Error("error") + ": " + err.Error() + "\n"
}

func formatCoded(e *alerr.Error) string {
	var b strings.Builder
	ctx := e.GetContext()

	b.WriteString(Error("error") + Code("["+string(e.GetCode())+"]") + ": " + e.GetMessage() + "\n")

	file, line, hasFile := e.Location()
	if !hasFile {
		if l, ok := ctx["line"].(int); ok {
			line = l
		}
	}
	gutter := strings.Repeat(" ", len(strconv.Itoa(max(line, 1))))

	if hasFile {
		loc := file
		if line > 0 {
			loc += ":" + strconv.Itoa(line)
			if col, ok := ctx["column"].(int); ok && col > 0 {
				loc += ":" + strconv.Itoa(col)
			}
		}
		fmt.Fprintf(&b, "%s--> %s\n", gutter, FilePath(loc))
	}

	if src, ok := ctx["source"].(string); ok && src != "" && line > 0 {
		b.WriteString(formatSource(src, line, columnOf(ctx), gutter))
	}

	details := contextDetails(ctx)
	if len(details) > 0 || len(e.Notes()) > 0 || len(e.Helps()) > 0 {
		fmt.Fprintf(&b, "%s %s\n", gutter, Pipe())
	}
	for _, d := range details {
		fmt.Fprintf(&b, "%s = %s\n", gutter, d)
	}
	for _, n := range e.Notes() {
		fmt.Fprintf(&b, "%s = %s: %s\n", gutter, Note("note"), n)
	}
	for _, h := range e.Helps() {
		fmt.Fprintf(&b, "%s = %s: %s\n", gutter, Help("help"), h)
	}

	if cause := e.GetCause(); cause != nil {
		if msg := cleanCause(cause); msg != "" && msg != e.GetMessage() {
			fmt.Fprintf(&b, "%s = %s: %s\n", gutter, Dim("cause"), msg)
		}
	}
	return b.String()
}

func columnOf(ctx map[string]any) int {
	col, _ := ctx["column"].(int)
	return col
}

// formatSource renders one source line with a pointer under it. Without a
// column the whole trimmed line is underlined.
func formatSource(src string, line, col int, gutter string) string {
	var b strings.Builder
	num := strconv.Itoa(line)
	fmt.Fprintf(&b, "%s %s\n", gutter, Pipe())
	fmt.Fprintf(&b, "%s %s %s\n", LineNum(num), Pipe(), src)

	var start, width int
	if col > 0 && col <= len(src) {
		start, width = col-1, 1
	} else {
		trimmed := strings.TrimLeft(src, " \t")
		start = len(src) - len(trimmed)
		width = len(strings.TrimRight(trimmed, " \t"))
	}
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(&b, "%s %s %s%s\n", gutter, Pipe(), strings.Repeat(" ", start), Pointer(strings.Repeat("^", width)))
	return b.String()
}

// contextDetails returns the non-layout context entries as sorted "key: value" lines.
func contextDetails(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !layoutKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %v", k, ctx[k]))
	}
	return out
}

// cleanCause strips the "[Exxxx] " prefix and trailing context lines from
// a wrapped swan error so the cause line stays single-line.
func cleanCause(err error) string {
	var ae *alerr.Error
	if errors.As(err, &ae) {
		return ae.GetMessage()
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

// FormatWarning renders "warning: msg".
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote renders "note: msg".
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp renders "help: msg".
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess renders a Cargo-style right aligned verb, e.g. "    Finished msg".
func FormatSuccess(verb, msg string) string {
	return Success(fmt.Sprintf("%12s", verb)) + " " + msg + "\n"
}
