package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/roach88/patchbind/internal/binder"
	"github.com/roach88/patchbind/internal/loader"
	"github.com/roach88/patchbind/internal/patch"
)

// Error codes for CLI output.
// E0xx: Command and I/O errors
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeConfig      = "E002" // Invalid configuration
	ErrCodeUnsupported = "E003" // Unsupported patch file extension
	ErrCodeParseFailed = "E004" // Patch file could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeStoreFailed = "E006" // History database error
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeWatchFailed = "E008" // File watcher error
	ErrCodeSamples     = "E009" // Sample manifest error
	ErrCodeTestFailed  = "E010" // One or more scenarios failed
)

// E2xx: Binding and wiring errors
const (
	ErrCodeUnknownNodeType      = "E201"
	ErrCodeNonexistentSample    = "E202"
	ErrCodeKindMismatch         = "E203"
	ErrCodeArityMismatch        = "E204"
	ErrCodeInvalidSequenceEvent = "E205"
	ErrCodeUnresolvedReference  = "E206"
	ErrCodeDuplicateChain       = "E207"
	ErrCodeEmptyChain           = "E208"
)

var bindCodes = map[binder.ErrorCode]string{
	binder.ErrCodeUnknownNodeType:      ErrCodeUnknownNodeType,
	binder.ErrCodeNonexistentSample:    ErrCodeNonexistentSample,
	binder.ErrCodeKindMismatch:         ErrCodeKindMismatch,
	binder.ErrCodeArityMismatch:        ErrCodeArityMismatch,
	binder.ErrCodeInvalidSequenceEvent: ErrCodeInvalidSequenceEvent,
}

var wiringCodes = map[patch.ErrorCode]string{
	patch.ErrCodeUnresolvedReference: ErrCodeUnresolvedReference,
	patch.ErrCodeDuplicateChain:      ErrCodeDuplicateChain,
	patch.ErrCodeEmptyChain:          ErrCodeEmptyChain,
}

// describeErrors flattens err into one CLIError per underlying failure.
// A *patch.CompileError expands to all of its errors.
func describeErrors(err error) []CLIError {
	var ce *patch.CompileError
	if errors.As(err, &ce) {
		out := make([]CLIError, len(ce.Errors))
		for i, e := range ce.Errors {
			out[i] = describeError(e)
		}
		return out
	}
	return []CLIError{describeError(err)}
}

// describeError maps a single error onto a stable code and location.
func describeError(err error) CLIError {
	var ne *patch.NodeError
	if errors.As(err, &ne) {
		code := ErrCodeGeneric
		var be *binder.BindError
		if errors.As(ne.Err, &be) {
			code = bindCodes[be.Code]
		}
		return CLIError{
			Code:     code,
			Message:  ne.Err.Error(),
			Location: fmt.Sprintf("chain %s node %d (%s)", ne.Chain, ne.Index, ne.Type),
		}
	}

	var we *patch.WiringError
	if errors.As(err, &we) {
		loc := "chain " + we.Chain
		if we.Index >= 0 {
			loc = fmt.Sprintf("chain %s node %d", we.Chain, we.Index)
		}
		return CLIError{Code: wiringCodes[we.Code], Message: we.Message, Location: loc}
	}

	var le *loader.Error
	if errors.As(err, &le) {
		loc := le.File
		switch {
		case le.Line > 0 && le.Column > 0:
			loc = fmt.Sprintf("%s:%d:%d", le.File, le.Line, le.Column)
		case le.Line > 0:
			loc = fmt.Sprintf("%s:%d", le.File, le.Line)
		}
		code := ErrCodeParseFailed
		if loader.FormatFromPath(le.File) == loader.FormatUnknown {
			code = ErrCodeUnsupported
		}
		return CLIError{Code: code, Message: le.Message, Location: loc}
	}

	if errors.Is(err, fs.ErrNotExist) {
		return CLIError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}
