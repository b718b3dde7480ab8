// Package errors defines error types for the botlink bridge.
//
// This package provides structured error types for the distinct failure
// kinds a bridged call can hit: timeout, transport failure, reply decode
// failure, and remote error replies. All error types support unwrapping and
// can be checked with errors.Is and errors.As.
package errors
