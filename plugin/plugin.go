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

// Package plugin hands the database connection over to a host application.
//
// A Plugin is constructed once at startup and gives its connection away
// exactly once, so the process ends up with a single live connection.
package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/tochemey/entitystore/database"
	gerrors "github.com/tochemey/entitystore/errors"
)

// App is the host receiving the connection as a shared resource
type App interface {
	// InsertResource registers the resource with the host
	InsertResource(resource any)
}

// Plugin holds a database connection until the host takes it
type Plugin struct {
	mu         sync.Mutex
	connection *database.Connection
}

// New opens the database connection named by address.
//
// It panics when the address is invalid, names an unsupported backend or the
// connection cannot be established: the host cannot start without it.
func New(address string, opts ...database.Option) *Plugin {
	connection, err := database.Open(context.Background(), address, opts...)
	if err != nil {
		panic(fmt.Errorf("failed to create database connection: %w", err))
	}
	return FromConnection(connection)
}

// FromConnection wraps an already opened connection
func FromConnection(connection *database.Connection) *Plugin {
	return &Plugin{connection: connection}
}

// Build inserts the connection into the host.
// It panics when the connection was already handed over.
func (p *Plugin) Build(app App) {
	connection, err := p.Take()
	if err != nil {
		panic(err)
	}
	app.InsertResource(connection)
}

// Take hands the connection over to the caller.
// Every call after the first returns errors.ErrPluginConsumed.
func (p *Plugin) Take() (*database.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connection == nil {
		return nil, gerrors.ErrPluginConsumed
	}
	connection := p.connection
	p.connection = nil
	return connection, nil
}
