// Package loader reads patch files in YAML, CUE or HCL form.
//
// All three formats describe the same structure: an ordered list of chains,
// each an ordered list of nodes with a type name and positional params.
// Param scalars map onto parameter values the same way in every format:
//
//	440                      number
//	"~lfo"                   reference to chain lfo
//	"\808"                   sample symbol 808
//	"anything else"          symbol
//	[1, 2, 3]                number list
//	[{time: 0, value: 60}]   sequence
//
// A chain whose name starts with "~" is an aux chain: it can be referenced
// but is not routed to the output.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/patchbind/internal/patch"
)

// Format identifies a patch file syntax.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatCUE
	FormatHCL
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatCUE:
		return "cue"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	case ".hcl":
		return FormatHCL
	default:
		return FormatUnknown
	}
}

// Extensions lists the file extensions Load understands.
func Extensions() []string {
	return []string{".yaml", ".yml", ".cue", ".hcl"}
}

// Error reports a malformed patch file. Line and Column are 0 when the
// position is unknown.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
}

// Load reads and parses the patch file at path.
func Load(path string) (patch.Patch, error) {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return patch.Patch{}, &Error{File: path, Message: fmt.Sprintf(
			"unsupported file extension %q (want one of %s)", filepath.Ext(path), strings.Join(Extensions(), ", "))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return patch.Patch{}, fmt.Errorf("reading patch: %w", err)
	}
	return Parse(format, path, data)
}

// Parse parses data in the given format. filename is used in errors only.
func Parse(format Format, filename string, data []byte) (patch.Patch, error) {
	switch format {
	case FormatYAML:
		return parseYAML(filename, data)
	case FormatCUE:
		return parseCUE(filename, data)
	case FormatHCL:
		return parseHCL(filename, data)
	default:
		return patch.Patch{}, &Error{File: filename, Message: "unknown format"}
	}
}

// chainName splits the aux marker off a declared chain name.
func chainName(declared string) (name string, aux bool) {
	if rest, ok := strings.CutPrefix(declared, "~"); ok {
		return rest, true
	}
	return declared, false
}
