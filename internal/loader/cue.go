package loader

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/patchbind/internal/param"
	"github.com/roach88/patchbind/internal/patch"
)

//go:embed schema.cue
var schemaSource string

func parseCUE(filename string, data []byte) (patch.Patch, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return patch.Patch{}, fmt.Errorf("compiling patch schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return patch.Patch{}, cueError(filename, err)
	}
	v = schema.LookupPath(cue.ParsePath("#Patch")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return patch.Patch{}, cueError(filename, err)
	}

	chains, err := v.LookupPath(cue.ParsePath("chains")).List()
	if err != nil {
		return patch.Patch{}, cueError(filename, err)
	}
	var p patch.Patch
	for chains.Next() {
		ch, err := decodeCUEChain(filename, chains.Value())
		if err != nil {
			return patch.Patch{}, err
		}
		p.Chains = append(p.Chains, ch)
	}
	return p, nil
}

func decodeCUEChain(filename string, v cue.Value) (patch.Chain, error) {
	declared, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return patch.Chain{}, cueError(filename, err)
	}
	name, aux := chainName(declared)
	ch := patch.Chain{Name: name, Aux: aux}

	nodes, err := v.LookupPath(cue.ParsePath("nodes")).List()
	if err != nil {
		return patch.Chain{}, cueError(filename, err)
	}
	for i := 0; nodes.Next(); i++ {
		nv := nodes.Value()
		typ, err := nv.LookupPath(cue.ParsePath("type")).String()
		if err != nil {
			return patch.Chain{}, cueError(filename, err)
		}

		var raw []any
		if pv := nv.LookupPath(cue.ParsePath("params")); pv.Exists() {
			lowered, err := lowerCUE(pv)
			if err != nil {
				return patch.Chain{}, positioned(filename, pv.Pos(), fmt.Sprintf("chain %q node %d (%s): %v", name, i, typ, err))
			}
			raw, _ = lowered.([]any)
		}
		params, err := toParams(raw)
		if err != nil {
			return patch.Chain{}, positioned(filename, nv.Pos(), fmt.Sprintf("chain %q node %d (%s): %v", name, i, typ, err))
		}
		ch.Nodes = append(ch.Nodes, param.Descriptor{Type: typ, Params: params})
	}
	return ch, nil
}

// lowerCUE converts a concrete CUE value into plain Go values.
func lowerCUE(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.IntKind, cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.NullKind:
		return nil, nil
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, err
		}
		var out []any
		for it.Next() {
			elem, err := lowerCUE(it.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return nil, err
		}
		out := make(map[string]any)
		for it.Next() {
			elem, err := lowerCUE(it.Value())
			if err != nil {
				return nil, err
			}
			out[it.Label()] = elem
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of kind %s", v.Kind())
	}
}

// cueError reports the first CUE error with its position.
func cueError(filename string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: filename, Message: err.Error()}
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return positioned(filename, positions[0], first.Error())
	}
	return &Error{File: filename, Message: first.Error()}
}

func positioned(filename string, pos token.Pos, msg string) *Error {
	e := &Error{File: filename, Message: msg}
	if pos.IsValid() {
		e.Line = pos.Line()
		e.Column = pos.Column()
	}
	return e
}
