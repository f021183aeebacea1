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

// Package backend defines the contract every key-value store implementation
// fulfills and the address scheme that selects one of them.
package backend

import (
	"context"

	"github.com/tochemey/entitystore/key"
)

// Conn is one exclusively owned connection to a key-value store.
//
// Entities are stored as a map of component keys to opaque payloads. A Conn is
// not required to be safe for concurrent use: the connection actor is its only
// caller. Implementations return errors wrapping errors.ErrConnectionLost when
// the connection can no longer be used at all, and errors.ErrComponentNotFound
// when Get finds nothing.
type Conn interface {
	// Ping checks the connection round-trip
	Ping(ctx context.Context) error
	// Get returns the payload stored for the given entity component
	Get(ctx context.Context, entity key.EntityKey, component key.ComponentKey) ([]byte, error)
	// Set stores the payload and reports whether the component was created
	Set(ctx context.Context, entity key.EntityKey, component key.ComponentKey, data []byte) (bool, error)
	// Delete removes the component and reports whether it existed
	Delete(ctx context.Context, entity key.EntityKey, component key.ComponentKey) (bool, error)
	// Load returns every component stored for the entity
	Load(ctx context.Context, entity key.EntityKey) (map[key.ComponentKey][]byte, error)
	// Components lists the component keys stored for the entity
	Components(ctx context.Context, entity key.EntityKey) ([]key.ComponentKey, error)
	// DeleteEntity removes the entity with all its components and reports whether it existed
	DeleteEntity(ctx context.Context, entity key.EntityKey) (bool, error)
	// Entities lists the stored entity keys
	Entities(ctx context.Context) ([]key.EntityKey, error)
	// Close releases the connection
	Close() error
}
