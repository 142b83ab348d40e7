// Package param provides the parameter value model for node descriptors.
//
// This package contains type definitions and codecs only. Every other internal
// package imports param; param imports nothing internal.
//
// Key design constraints:
//   - Value is a sealed union; only the six kinds declared here implement it
//   - Values are immutable once constructed (list-backed kinds copy on the way in and out)
//   - No implicit coercion: deciding whether a slot accepts a kind is the binder's job
//   - Descriptor parameters are positional; slot order is significant
package param
