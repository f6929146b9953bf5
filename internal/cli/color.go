package cli

import "github.com/charmbracelet/lipgloss"

// Color scheme inspired by Cargo/rustc.
// Uses ANSI 256 colors for broad terminal compatibility.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleNote    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

	// Error code style (e.g., E2004)
	styleCode = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	// Source code display styles
	styleLineNum  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePipe     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	stylePointer  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleFilePath = lipgloss.NewStyle().Bold(true)

	// Change markers
	styleAdded   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleRemoved = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleChanged = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	styleHeader = lipgloss.NewStyle().Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func render(style lipgloss.Style, s string) string {
	if !EnableColors() {
		return s
	}
	return style.Render(s)
}

// Error returns text styled as an error label.
func Error(s string) string { return render(styleError, s) }

// Warning returns text styled as a warning label.
func Warning(s string) string { return render(styleWarning, s) }

// Note returns text styled as a note label.
func Note(s string) string { return render(styleNote, s) }

// Help returns text styled as a help label.
func Help(s string) string { return render(styleHelp, s) }

// Success returns text styled as a success label.
func Success(s string) string { return render(styleSuccess, s) }

// Code returns text styled as an error code.
func Code(s string) string { return render(styleCode, s) }

// LineNum returns a styled source line number.
func LineNum(s string) string { return render(styleLineNum, s) }

// Pipe returns the styled gutter character.
func Pipe() string { return render(stylePipe, "|") }

// Pointer returns styled ^^^ markers.
func Pointer(s string) string { return render(stylePointer, s) }

// FilePath returns a styled file location.
func FilePath(s string) string { return render(styleFilePath, s) }

// Added styles an added item.
func Added(s string) string { return render(styleAdded, s) }

// Removed styles a removed item.
func Removed(s string) string { return render(styleRemoved, s) }

// Changed styles a modified item.
func Changed(s string) string { return render(styleChanged, s) }

// Header styles a table header or title.
func Header(s string) string { return render(styleHeader, s) }

// Dim styles secondary text.
func Dim(s string) string { return render(styleDim, s) }
