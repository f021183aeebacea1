// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyTypeMismatch is returned when a backend reply has a shape that cannot
	// be decoded into the requested key type.
	ErrKeyTypeMismatch = errors.New("key type mismatch")

	// ErrInvalidKeyLength is returned when a byte-string reply does not have the
	// exact length required by the key encoding.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrKeyOutOfRange is returned when a native integer reply does not fit the key type.
	ErrKeyOutOfRange = errors.New("key out of range")

	// ErrInvalidAddress is returned when the backend address cannot be parsed or is incomplete.
	ErrInvalidAddress = errors.New("invalid backend address")

	// ErrUnsupportedScheme is returned when no backend is registered for the address scheme.
	ErrUnsupportedScheme = errors.New("unsupported backend scheme")

	// ErrConnectionFailed is returned when the initial backend connection cannot be established.
	ErrConnectionFailed = errors.New("failed to connect to backend")

	// ErrConnectionLost indicates the backend connection is no longer usable.
	// It ends the connection actor.
	ErrConnectionLost = errors.New("backend connection lost")

	// ErrConnectionClosed is returned when a command is sent to, or left pending in,
	// a connection actor that no longer executes commands.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrComponentNotFound is returned when the requested component is not stored for the entity.
	ErrComponentNotFound = errors.New("component not found")

	// ErrPluginConsumed is returned when the connection held by a plugin has already been taken.
	ErrPluginConsumed = errors.New("cannot reuse persistence plugin")

	// ErrUndefinedCommand is returned when a nil command is sent to the connection actor.
	ErrUndefinedCommand = errors.New("command is not defined")
)

// NewErrKeyTypeMismatch formats an ErrKeyTypeMismatch for the given key type and reply.
func NewErrKeyTypeMismatch(keyType string, reply any) error {
	return fmt.Errorf("%s cannot be decoded from reply of type %T: %w", keyType, reply, ErrKeyTypeMismatch)
}

// NewErrInvalidKeyLength formats an ErrInvalidKeyLength for the given key type.
func NewErrInvalidKeyLength(keyType string, expected, actual int) error {
	return fmt.Errorf("%s requires %d bytes, got %d: %w", keyType, expected, actual, ErrInvalidKeyLength)
}

// NewErrKeyOutOfRange formats an ErrKeyOutOfRange for the given key type and value.
func NewErrKeyOutOfRange(keyType string, value any) error {
	return fmt.Errorf("%s value=(%v) %w", keyType, value, ErrKeyOutOfRange)
}

// NewErrUnsupportedScheme formats an ErrUnsupportedScheme for the given scheme.
func NewErrUnsupportedScheme(scheme string) error {
	return fmt.Errorf("no database backend for scheme=(%s): %w", scheme, ErrUnsupportedScheme)
}

// NewErrInvalidAddress wraps the cause with ErrInvalidAddress.
func NewErrInvalidAddress(cause error) error {
	return errors.Join(ErrInvalidAddress, cause)
}

// NewErrConnectionFailed wraps the cause with ErrConnectionFailed.
func NewErrConnectionFailed(cause error) error {
	return errors.Join(ErrConnectionFailed, cause)
}

// NewErrConnectionLost wraps the cause with ErrConnectionLost.
func NewErrConnectionLost(cause error) error {
	return errors.Join(ErrConnectionLost, cause)
}

// PanicError wraps a value recovered from a panic during command execution
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
