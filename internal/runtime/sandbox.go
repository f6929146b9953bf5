// Package runtime provides a secure, deterministic JavaScript execution environment
// for evaluating entity definition files using the Goja JS engine.
package runtime

import (
	"math/rand"
	"os"
	"regexp"
	"time"

	"github.com/dop251/goja"

	"github.com/hlop3z/swan/internal/alerr"
)

// FixedSeed is the deterministic seed for random number generation.
const FixedSeed = 12345

// exportsVar receives the default export of an entity file.
const exportsVar = "__exports"

var exportDefault = regexp.MustCompile(`(?m)^(\s*)export\s+default\s+`)

// Constants of the host framework, bound so definition files can be written
// the same way as persistent classes ({type: PARAM_INT, dbtype: XMLDB_TYPE_TEXT}).
var hostConstants = map[string]any{
	"PARAM_INT":          "int",
	"PARAM_BOOL":         "bool",
	"PARAM_FLOAT":        "float",
	"PARAM_RAW":          "raw",
	"PARAM_TEXT":         "text",
	"PARAM_ALPHA":        "alpha",
	"PARAM_ALPHANUM":     "alphanum",
	"PARAM_PLUGIN":       "plugin",
	"PARAM_COMPONENT":    "component",
	"PARAM_URL":          "url",
	"PARAM_EMAIL":        "email",
	"PARAM_NOTAGS":       "notags",
	"XMLDB_TYPE_INTEGER": "int",
	"XMLDB_TYPE_NUMBER":  "number",
	"XMLDB_TYPE_FLOAT":   "float",
	"XMLDB_TYPE_CHAR":    "char",
	"XMLDB_TYPE_TEXT":    "text",
	"XMLDB_TYPE_BINARY":  "binary",
	"NULL_ALLOWED":       true,
	"NULL_NOT_ALLOWED":   false,
}

// Sandbox evaluates entity definition files. It enforces deterministic
// execution and resource limits to prevent runaway scripts.
type Sandbox struct {
	vm      *goja.Runtime
	timeout time.Duration

	// Current file context for rich error messages
	currentFile string
	currentCode string
}

// NewSandbox creates a new hardened JavaScript sandbox.
func NewSandbox() *Sandbox {
	vm := goja.New()

	// Resource limits - prevent stack overflow attacks
	vm.SetMaxCallStackSize(500)

	// Deterministic execution - fixed random source
	seedRand := rand.New(rand.NewSource(FixedSeed))
	vm.SetRandSource(func() float64 { return seedRand.Float64() })

	disableDangerousGlobals(vm)

	for name, v := range hostConstants {
		_ = vm.Set(name, v)
	}

	return &Sandbox{
		vm:      vm,
		timeout: 5 * time.Second,
	}
}

// disableDangerousGlobals removes JS features that could cause security
// issues or non-deterministic behavior.
func disableDangerousGlobals(vm *goja.Runtime) {
	_ = vm.Set("eval", goja.Undefined())

	_, _ = vm.RunString(`
		(function() {
			try {
				Object.freeze(Object.prototype);
				Object.freeze(Array.prototype);
				Object.freeze(String.prototype);
				Object.freeze(Number.prototype);
				Object.freeze(Boolean.prototype);
			} catch(e) {}
		})();
	`)
}

// SetTimeout sets the execution timeout for one evaluation.
func (s *Sandbox) SetTimeout(d time.Duration) {
	s.timeout = d
}

// VM returns the underlying runtime.
func (s *Sandbox) VM() *goja.Runtime {
	return s.vm
}

// EvalEntityFile reads and evaluates an entity file, returning its default export.
func (s *Sandbox) EvalEntityFile(path string) (*goja.Object, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.WrapLoad(err, path)
	}
	s.currentFile = path
	return s.EvalEntity(string(code))
}

// EvalEntity evaluates entity code and returns the object it exports with
// `export default { ... }`. The export is rewritten to an assignment so
// line numbers in errors match the source.
func (s *Sandbox) EvalEntity(code string) (*goja.Object, error) {
	s.currentCode = code
	_ = s.vm.Set(exportsVar, goja.Undefined())

	script := exportDefault.ReplaceAllString(code, "${1}"+exportsVar+" = ")
	if err := s.run(script); err != nil {
		return nil, err
	}

	exported := s.vm.Get(exportsVar)
	obj, ok := exported.(*goja.Object)
	if !ok || goja.IsUndefined(exported) || goja.IsNull(exported) {
		e := alerr.New(alerr.ErrInvalidEntity, "entity file did not export an entity definition").
			WithHelp("end the file with 'export default { table: ..., properties: {...} }'")
		if s.currentFile != "" {
			e.WithFile(s.currentFile, 0)
		}
		return nil, e
	}
	return obj, nil
}

// run executes code under the sandbox timeout.
func (s *Sandbox) run(code string) error {
	timer := time.AfterFunc(s.timeout, func() {
		s.vm.Interrupt("execution timeout")
	})
	defer timer.Stop()

	_, err := s.vm.RunString(code)
	if err != nil {
		if interruptErr, ok := err.(*goja.InterruptedError); ok {
			s.vm.ClearInterrupt()
			timeoutErr := alerr.New(alerr.ErrJSTimeout, "script execution timed out").
				With("timeout", s.timeout.String()).
				With("interrupt", interruptErr.String())
			if s.currentFile != "" {
				timeoutErr.WithFile(s.currentFile, 0)
			}
			return timeoutErr
		}
		return s.wrapJSError(err)
	}
	return nil
}

// wrapJSError creates an error with source location and context.
func (s *Sandbox) wrapJSError(err error) *alerr.Error {
	e := alerr.Wrap(alerr.ErrJSExecution, err, "JavaScript execution failed")
	info := ParseJSError(err)
	if info == nil {
		return e
	}
	if s.currentFile != "" {
		e.WithFile(s.currentFile, info.Line)
	} else if info.Line > 0 {
		e.With("line", info.Line)
	}
	if info.Column > 0 {
		e.With("column", info.Column)
	}
	if line := GetSourceLine(s.currentCode, info.Line); line != "" {
		e.With("source", line)
	}
	addJSErrorHelp(e, info.Message)
	return e
}
