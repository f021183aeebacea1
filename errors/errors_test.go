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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("With key type mismatch", func(t *testing.T) {
		err := NewErrKeyTypeMismatch("EntityKey", int64(1))
		assert.ErrorIs(t, err, ErrKeyTypeMismatch)
		assert.Contains(t, err.Error(), "int64")
	})
	t.Run("With invalid key length", func(t *testing.T) {
		err := NewErrInvalidKeyLength("ComponentKey", 2, 3)
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
		assert.Equal(t, "ComponentKey requires 2 bytes, got 3: invalid key length", err.Error())
	})
	t.Run("With key out of range", func(t *testing.T) {
		err := NewErrKeyOutOfRange("ComponentKey", 70000)
		assert.ErrorIs(t, err, ErrKeyOutOfRange)
		assert.Equal(t, "ComponentKey value=(70000) key out of range", err.Error())
	})
	t.Run("With unsupported scheme", func(t *testing.T) {
		err := NewErrUnsupportedScheme("postgres")
		assert.ErrorIs(t, err, ErrUnsupportedScheme)
		assert.Contains(t, err.Error(), "postgres")
	})
	t.Run("With wrapped causes", func(t *testing.T) {
		cause := io.ErrUnexpectedEOF
		for _, err := range []error{
			NewErrInvalidAddress(cause),
			NewErrConnectionFailed(cause),
			NewErrConnectionLost(cause),
		} {
			assert.True(t, errors.Is(err, cause))
		}
		assert.ErrorIs(t, NewErrInvalidAddress(cause), ErrInvalidAddress)
		assert.ErrorIs(t, NewErrConnectionFailed(cause), ErrConnectionFailed)
		assert.ErrorIs(t, NewErrConnectionLost(cause), ErrConnectionLost)
	})
	t.Run("With panic error", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewPanicError(cause)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "panic: boom", err.Error())
	})
}
