package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/patchbind/internal/param"
	"github.com/roach88/patchbind/internal/patch"
)

type yamlPatch struct {
	Chains []yamlChain `yaml:"chains"`
}

type yamlChain struct {
	Name  string      `yaml:"name"`
	Nodes []yaml.Node `yaml:"nodes"`
}

type yamlNode struct {
	Type   string `yaml:"type"`
	Params []any  `yaml:"params"`
}

func parseYAML(filename string, data []byte) (patch.Patch, error) {
	var doc yamlPatch
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return patch.Patch{}, &Error{File: filename, Message: err.Error()}
	}

	p := patch.Patch{Chains: make([]patch.Chain, 0, len(doc.Chains))}
	for ci, yc := range doc.Chains {
		if yc.Name == "" {
			return patch.Patch{}, &Error{File: filename, Message: fmt.Sprintf("chains[%d]: name is required", ci)}
		}
		name, aux := chainName(yc.Name)
		ch := patch.Chain{Name: name, Aux: aux, Nodes: make([]param.Descriptor, 0, len(yc.Nodes))}
		for ni := range yc.Nodes {
			n := &yc.Nodes[ni]
			var yn yamlNode
			if err := n.Decode(&yn); err != nil {
				return patch.Patch{}, &Error{File: filename, Line: n.Line, Column: n.Column, Message: err.Error()}
			}
			if yn.Type == "" {
				return patch.Patch{}, &Error{File: filename, Line: n.Line, Column: n.Column,
					Message: fmt.Sprintf("chain %q node %d: type is required", name, ni)}
			}
			params, err := toParams(yn.Params)
			if err != nil {
				return patch.Patch{}, &Error{File: filename, Line: n.Line, Column: n.Column,
					Message: fmt.Sprintf("chain %q node %d (%s): %v", name, ni, yn.Type, err)}
			}
			ch.Nodes = append(ch.Nodes, param.Descriptor{Type: yn.Type, Params: params})
		}
		p.Chains = append(p.Chains, ch)
	}
	return p, nil
}
