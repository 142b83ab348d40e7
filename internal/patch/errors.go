package patch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes patch-level failures that are not binding errors.
type ErrorCode string

const (
	// ErrCodeUnresolvedReference indicates a reference to a chain that does not exist.
	ErrCodeUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"

	// ErrCodeDuplicateChain indicates two chains share a name.
	ErrCodeDuplicateChain ErrorCode = "DUPLICATE_CHAIN"

	// ErrCodeEmptyChain indicates a chain with no nodes.
	ErrCodeEmptyChain ErrorCode = "EMPTY_CHAIN"
)

// NodeError locates a failure at one node of one chain. Err is usually a
// *binder.BindError.
type NodeError struct {
	Chain string
	Index int
	Type  string
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("chain %q node %d (%s): %v", e.Chain, e.Index, e.Type, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// WiringError reports a problem with the patch structure itself.
type WiringError struct {
	Code    ErrorCode
	Chain   string
	Index   int // node index, -1 for chain-level errors
	Name    string
	Message string
}

func (e *WiringError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: chain %q node %d: %s", e.Code, e.Chain, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: chain %q: %s", e.Code, e.Chain, e.Message)
}

// CompileError aggregates every failure of a compile pass. In fail-fast
// mode it holds exactly one error.
type CompileError struct {
	Errors []error
}

func (e *CompileError) Error() string {
	if len(e.Errors) == 1 {
		return "compile failed: " + e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("compile failed with %d errors:\n  %s", len(e.Errors), strings.Join(msgs, "\n  "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *CompileError) Unwrap() []error { return e.Errors }

// IsUnresolvedReference reports whether err contains an unresolved reference.
func IsUnresolvedReference(err error) bool {
	var we *WiringError
	if errors.As(err, &we) {
		return we.Code == ErrCodeUnresolvedReference
	}
	return false
}

// IsDuplicateChain reports whether err contains a duplicate chain name.
func IsDuplicateChain(err error) bool {
	var we *WiringError
	if errors.As(err, &we) {
		return we.Code == ErrCodeDuplicateChain
	}
	return false
}
