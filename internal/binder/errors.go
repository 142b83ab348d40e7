package binder

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes binding failures.
type ErrorCode string

const (
	// ErrCodeUnknownNodeType indicates no rule is registered for the type name.
	ErrCodeUnknownNodeType ErrorCode = "UNKNOWN_NODE_TYPE"

	// ErrCodeNonexistentSample indicates a sample name missing from the table.
	ErrCodeNonexistentSample ErrorCode = "NONEXISTENT_SAMPLE"

	// ErrCodeKindMismatch indicates a parameter of the wrong kind for its slot.
	ErrCodeKindMismatch ErrorCode = "PARAMETER_KIND_MISMATCH"

	// ErrCodeArityMismatch indicates too few or too many parameters.
	ErrCodeArityMismatch ErrorCode = "PARAMETER_ARITY_MISMATCH"

	// ErrCodeInvalidSequenceEvent indicates a sequence event that cannot be scheduled.
	ErrCodeInvalidSequenceEvent ErrorCode = "INVALID_SEQUENCE_EVENT"
)

// BindError reports why a single descriptor could not be bound.
//
// Slot is the offending parameter position, or -1 when the error is not tied
// to one slot. For sequence errors Event is the index of the offending event.
type BindError struct {
	Code     ErrorCode
	NodeType string
	Slot     int
	Event    int
	Expected string
	Actual   string
	Message  string
}

// Error implements the error interface.
func (e *BindError) Error() string {
	switch {
	case e.Slot >= 0 && e.Event >= 0:
		return fmt.Sprintf("%s: %s slot %d event %d: %s", e.Code, e.NodeType, e.Slot, e.Event, e.Message)
	case e.Slot >= 0:
		return fmt.Sprintf("%s: %s slot %d: %s", e.Code, e.NodeType, e.Slot, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.NodeType, e.Message)
	}
}

func newUnknownNodeType(name string) *BindError {
	return &BindError{
		Code:     ErrCodeUnknownNodeType,
		NodeType: name,
		Slot:     -1,
		Event:    -1,
		Message:  "unknown node type",
	}
}

func newNonexistentSample(t NodeType, slot int, name string) *BindError {
	return &BindError{
		Code:     ErrCodeNonexistentSample,
		NodeType: t.String(),
		Slot:     slot,
		Event:    -1,
		Actual:   name,
		Message:  fmt.Sprintf("sample %q not found", name),
	}
}

func newKindMismatch(t NodeType, slot int, expected SlotKind, actual string) *BindError {
	return &BindError{
		Code:     ErrCodeKindMismatch,
		NodeType: t.String(),
		Slot:     slot,
		Event:    -1,
		Expected: expected.String(),
		Actual:   actual,
		Message:  fmt.Sprintf("expected %s, got %s", expected, actual),
	}
}

func newArityMismatch(t NodeType, expected string, actual int) *BindError {
	return &BindError{
		Code:     ErrCodeArityMismatch,
		NodeType: t.String(),
		Slot:     -1,
		Event:    -1,
		Expected: expected,
		Actual:   fmt.Sprintf("%d", actual),
		Message:  fmt.Sprintf("expected %s parameters, got %d", expected, actual),
	}
}

func newInvalidSequenceEvent(t NodeType, slot, event int, reason string) *BindError {
	return &BindError{
		Code:     ErrCodeInvalidSequenceEvent,
		NodeType: t.String(),
		Slot:     slot,
		Event:    event,
		Message:  reason,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var be *BindError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// IsUnknownNodeType reports whether err is an unknown node type error.
// Uses errors.As to handle wrapped errors.
func IsUnknownNodeType(err error) bool { return hasCode(err, ErrCodeUnknownNodeType) }

// IsNonexistentSample reports whether err is a sample lookup miss.
func IsNonexistentSample(err error) bool { return hasCode(err, ErrCodeNonexistentSample) }

// IsKindMismatch reports whether err is a parameter kind mismatch.
func IsKindMismatch(err error) bool { return hasCode(err, ErrCodeKindMismatch) }

// IsArityMismatch reports whether err is a parameter count mismatch.
func IsArityMismatch(err error) bool { return hasCode(err, ErrCodeArityMismatch) }

// IsInvalidSequenceEvent reports whether err is an invalid sequence event.
func IsInvalidSequenceEvent(err error) bool { return hasCode(err, ErrCodeInvalidSequenceEvent) }
