package runtime

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/hlop3z/swan/internal/alerr"
)

// JSErrorInfo contains extracted information from a JavaScript error.
type JSErrorInfo struct {
	Message string
	Line    int
	Column  int
}

// ParseJSError extracts the message and source position from a Goja error.
func ParseJSError(err error) *JSErrorInfo {
	if err == nil {
		return nil
	}

	info := &JSErrorInfo{Message: err.Error()}

	if syntaxErr, ok := err.(*goja.CompilerSyntaxError); ok {
		if syntaxErr.File != nil {
			pos := syntaxErr.File.Position(syntaxErr.Offset)
			info.Line = pos.Line
			info.Column = pos.Column
		} else {
			// Parser errors carry their position only in the message.
			parseGojaErrorMessage(info)
		}
		return info
	}

	if exception, ok := err.(*goja.Exception); ok {
		info.Message = exception.Value().String()
		// Skip native Go frames (line=0) to find the first JS call site.
		for _, frame := range exception.Stack() {
			pos := frame.Position()
			if pos.Line > 0 {
				info.Line = pos.Line
				info.Column = pos.Column
				return info
			}
		}
		parseGojaErrorMessage(info)
	}
	return info
}

// parseGojaErrorMessage reads "Line X:Y" out of a Goja syntax error message.
// Used when the error carries no structured position.
func parseGojaErrorMessage(info *JSErrorInfo) {
	msg := info.Message
	lineIdx := strings.Index(msg, "Line ")
	if lineIdx == -1 {
		return
	}
	rest := msg[lineIdx+5:]

	lineStr, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return
	}
	if line, err := strconv.Atoi(lineStr); err == nil {
		info.Line = line
	}
	if colStr, _, ok := strings.Cut(rest, " "); ok {
		if col, err := strconv.Atoi(colStr); err == nil {
			info.Column = col
		}
	}
}

// GetSourceLine returns line lineNum (1-indexed) of code, or "".
func GetSourceLine(code string, lineNum int) string {
	if lineNum <= 0 || code == "" {
		return ""
	}

	scanner := bufio.NewScanner(strings.NewReader(code))
	currentLine := 0
	for scanner.Scan() {
		currentLine++
		if currentLine == lineNum {
			return scanner.Text()
		}
	}
	return ""
}

// addJSErrorHelp adds contextual help based on the error message.
func addJSErrorHelp(err *alerr.Error, message string) {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "is not defined"):
		err.WithNote("a variable or function was not found in scope")
		err.WithHelp("entity files may use PARAM_* and XMLDB_TYPE_* constants, nothing else is predefined")
	case strings.Contains(msg, "is not a function"):
		err.WithNote("attempted to call something that is not a function")
	case strings.Contains(msg, "unexpected token"), strings.Contains(msg, "syntax"):
		err.WithNote("check for missing brackets, quotes, or commas")
	case strings.Contains(msg, "object is not extensible"), strings.Contains(msg, "read only"):
		err.WithNote("built-in prototypes are frozen inside entity files")
	}
}
