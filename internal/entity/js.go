package entity

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/hlop3z/swan/internal/alerr"
	"github.com/hlop3z/swan/internal/runtime"
)

// ParseJS evaluates a JavaScript entity file and decodes its default export.
// A function given as a property default marks a default computed at runtime.
func ParseJS(code []byte, source string) (*Entity, error) {
	sb := runtime.NewSandbox()
	obj, err := sb.EvalEntity(string(code))
	if err != nil {
		if ae, ok := err.(*alerr.Error); ok {
			if _, _, has := ae.Location(); !has {
				ae.WithFile(source, 0)
			}
		}
		return nil, err
	}
	root, err := fromJS(sb.VM(), obj, 0)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrParse, err, "failed to read entity export").WithFile(source, 0)
	}
	d := &decoder{source: source}
	return d.entity(root)
}

// maxDepth bounds recursion through self-referencing objects.
const maxDepth = 16

func fromJS(vm *goja.Runtime, v goja.Value, depth int) (*value, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("value nested more than %d levels deep", maxDepth)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return &value{kind: kindNull}, nil
	}
	if _, ok := goja.AssertFunction(v); ok {
		return &value{kind: kindDeferred}, nil
	}

	obj, isObj := v.(*goja.Object)
	if !isObj {
		return jsScalar(v.Export())
	}

	switch obj.ClassName() {
	case "Array":
		out := &value{kind: kindSequence}
		n := obj.Get("length").ToInteger()
		for i := int64(0); i < n; i++ {
			child, err := fromJS(vm, obj.Get(fmt.Sprint(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, child)
		}
		return out, nil
	case "Object":
		out := &value{kind: kindMapping}
		for _, k := range obj.Keys() {
			child, err := fromJS(vm, obj.Get(k), depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out.keys = append(out.keys, k)
			out.items = append(out.items, child)
		}
		return out, nil
	default:
		// Boxed primitives (new String(...)) and the like.
		return jsScalar(obj.Export())
	}
}

func jsScalar(x any) (*value, error) {
	switch s := x.(type) {
	case bool, int64, float64, string:
		return &value{kind: kindScalar, scalar: s}, nil
	case int:
		return &value{kind: kindScalar, scalar: int64(s)}, nil
	case nil:
		return &value{kind: kindNull}, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", x)
	}
}
