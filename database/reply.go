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

package database

import "context"

// Result is the outcome of a command. Exactly one of Value and Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// Reply is the private channel on which the connection delivers a command result.
//
// A Reply holds at most one result and the connection never blocks on it: a
// caller that stops waiting simply never reads the result.
type Reply[T any] chan Result[T]

// NewReply creates a Reply ready to be attached to a command
func NewReply[T any]() Reply[T] {
	return make(Reply[T], 1)
}

// Await blocks until the result is delivered or the context is done
func (r Reply[T]) Await(ctx context.Context) (T, error) {
	select {
	case result := <-r:
		return result.Value, result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// deliver hands the result over without blocking.
// It is a no-op on a nil Reply or on a Reply that already holds a result.
func (r Reply[T]) deliver(value T, err error) {
	if r == nil {
		return
	}
	select {
	case r <- Result[T]{Value: value, Err: err}:
	default:
	}
}
