package loader

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/roach88/patchbind/internal/param"
	"github.com/roach88/patchbind/internal/patch"
)

// hclPatchFile is the top-level structure of an .hcl patch:
//
//	chain "lead" {
//	  node "saw" { params = [110] }
//	  node "lpf" { params = ["~lfo", 1.0] }
//	}
type hclPatchFile struct {
	Chains []*hclChain `hcl:"chain,block"`
}

type hclChain struct {
	Name  string     `hcl:"name,label"`
	Nodes []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	Type   string         `hcl:"type,label"`
	Params hcl.Expression `hcl:"params,optional"`
}

func parseHCL(filename string, data []byte) (patch.Patch, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return patch.Patch{}, hclError(filename, diags)
	}

	var parsed hclPatchFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return patch.Patch{}, hclError(filename, diags)
	}

	p := patch.Patch{Chains: make([]patch.Chain, 0, len(parsed.Chains))}
	for _, hc := range parsed.Chains {
		name, aux := chainName(hc.Name)
		ch := patch.Chain{Name: name, Aux: aux, Nodes: make([]param.Descriptor, 0, len(hc.Nodes))}
		for i, hn := range hc.Nodes {
			params, err := hclParams(hn.Params)
			if err != nil {
				rng := hn.Params.Range()
				return patch.Patch{}, &Error{File: filename, Line: rng.Start.Line, Column: rng.Start.Column,
					Message: fmt.Sprintf("chain %q node %d (%s): %v", name, i, hn.Type, err)}
			}
			ch.Nodes = append(ch.Nodes, param.Descriptor{Type: hn.Type, Params: params})
		}
		p.Chains = append(p.Chains, ch)
	}
	return p, nil
}

// hclParams evaluates a params expression without variables or functions.
// A missing params attribute yields no params.
func hclParams(expr hcl.Expression) ([]param.Value, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsTupleType() && !val.Type().IsListType() {
		return nil, fmt.Errorf("params must be a list, got %s", val.Type().FriendlyName())
	}
	lowered, err := lowerCty(val)
	if err != nil {
		return nil, err
	}
	raw, _ := lowered.([]any)
	return toParams(raw)
}

// lowerCty converts a known cty value into plain Go values.
func lowerCty(v cty.Value) (any, error) {
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case ty == cty.String:
		return v.AsString(), nil
	case ty.IsTupleType() || ty.IsListType():
		out := make([]any, 0, v.LengthInt())
		for _, elem := range v.AsValueSlice() {
			lowered, err := lowerCty(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, lowered)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for k, elem := range v.AsValueMap() {
			lowered, err := lowerCty(elem)
			if err != nil {
				return nil, err
			}
			out[k] = lowered
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}

func hclError(filename string, diags hcl.Diagnostics) error {
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		e := &Error{File: filename, Message: d.Summary}
		if d.Detail != "" {
			e.Message += "; " + d.Detail
		}
		if d.Subject != nil {
			e.Line = d.Subject.Start.Line
			e.Column = d.Subject.Start.Column
		}
		return e
	}
	return &Error{File: filename, Message: diags.Error()}
}
