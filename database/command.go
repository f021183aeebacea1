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

import (
	"context"

	"github.com/tochemey/entitystore/backend"
	"github.com/tochemey/entitystore/key"
)

// Command is a unit of work executed by the connection actor.
//
// The set of commands is closed: Shutdown, Ping, Get, Set, Delete, Load,
// Components, DeleteEntity and Entities. Commands are executed in the order
// they are received. A command whose Reply is nil is fire-and-forget and its
// failure is logged by the connection.
type Command interface {
	// name identifies the command in logs and metrics
	name() string
	// execute runs the command against the backend and delivers the result.
	// The returned error is the one delivered to the reply.
	execute(ctx context.Context, conn backend.Conn) error
	// reject delivers err without touching the backend
	reject(err error)
	// detached reports whether nobody waits for the result
	detached() bool
}

// Shutdown stops the connection. Commands queued behind it are rejected.
type Shutdown struct{}

// Ping checks the backend round-trip
type Ping struct {
	Reply Reply[struct{}]
}

// Get reads one component payload.
// The reply carries errors.ErrComponentNotFound when the component is absent.
type Get struct {
	Entity    key.EntityKey
	Component key.ComponentKey
	Reply     Reply[[]byte]
}

// Set writes one component payload. The reply is true when the component was created.
type Set struct {
	Entity    key.EntityKey
	Component key.ComponentKey
	Data      []byte
	Reply     Reply[bool]
}

// Delete removes one component. The reply is true when it existed.
type Delete struct {
	Entity    key.EntityKey
	Component key.ComponentKey
	Reply     Reply[bool]
}

// Load reads every component of an entity
type Load struct {
	Entity key.EntityKey
	Reply  Reply[map[key.ComponentKey][]byte]
}

// Components lists the component keys stored for an entity
type Components struct {
	Entity key.EntityKey
	Reply  Reply[[]key.ComponentKey]
}

// DeleteEntity removes an entity with all its components. The reply is true when it existed.
type DeleteEntity struct {
	Entity key.EntityKey
	Reply  Reply[bool]
}

// Entities enumerates the stored entity keys
type Entities struct {
	Reply Reply[[]key.EntityKey]
}

// enforce compilation error
var (
	_ Command = Shutdown{}
	_ Command = Ping{}
	_ Command = Get{}
	_ Command = Set{}
	_ Command = Delete{}
	_ Command = Load{}
	_ Command = Components{}
	_ Command = DeleteEntity{}
	_ Command = Entities{}
)

func (Shutdown) name() string                                { return "Shutdown" }
func (Shutdown) execute(context.Context, backend.Conn) error { return nil }
func (Shutdown) reject(error)                                {}
func (Shutdown) detached() bool                              { return true }

func (x Ping) name() string   { return "Ping" }
func (x Ping) detached() bool { return x.Reply == nil }
func (x Ping) reject(err error) {
	x.Reply.deliver(struct{}{}, err)
}
func (x Ping) execute(ctx context.Context, conn backend.Conn) error {
	err := conn.Ping(ctx)
	x.Reply.deliver(struct{}{}, err)
	return err
}

func (x Get) name() string   { return "Get" }
func (x Get) detached() bool { return x.Reply == nil }
func (x Get) reject(err error) {
	x.Reply.deliver(nil, err)
}
func (x Get) execute(ctx context.Context, conn backend.Conn) error {
	data, err := conn.Get(ctx, x.Entity, x.Component)
	x.Reply.deliver(data, err)
	return err
}

func (x Set) name() string   { return "Set" }
func (x Set) detached() bool { return x.Reply == nil }
func (x Set) reject(err error) {
	x.Reply.deliver(false, err)
}
func (x Set) execute(ctx context.Context, conn backend.Conn) error {
	created, err := conn.Set(ctx, x.Entity, x.Component, x.Data)
	x.Reply.deliver(created, err)
	return err
}

func (x Delete) name() string   { return "Delete" }
func (x Delete) detached() bool { return x.Reply == nil }
func (x Delete) reject(err error) {
	x.Reply.deliver(false, err)
}
func (x Delete) execute(ctx context.Context, conn backend.Conn) error {
	deleted, err := conn.Delete(ctx, x.Entity, x.Component)
	x.Reply.deliver(deleted, err)
	return err
}

func (x Load) name() string   { return "Load" }
func (x Load) detached() bool { return x.Reply == nil }
func (x Load) reject(err error) {
	x.Reply.deliver(nil, err)
}
func (x Load) execute(ctx context.Context, conn backend.Conn) error {
	components, err := conn.Load(ctx, x.Entity)
	x.Reply.deliver(components, err)
	return err
}

func (x Components) name() string   { return "Components" }
func (x Components) detached() bool { return x.Reply == nil }
func (x Components) reject(err error) {
	x.Reply.deliver(nil, err)
}
func (x Components) execute(ctx context.Context, conn backend.Conn) error {
	components, err := conn.Components(ctx, x.Entity)
	x.Reply.deliver(components, err)
	return err
}

func (x DeleteEntity) name() string   { return "DeleteEntity" }
func (x DeleteEntity) detached() bool { return x.Reply == nil }
func (x DeleteEntity) reject(err error) {
	x.Reply.deliver(false, err)
}
func (x DeleteEntity) execute(ctx context.Context, conn backend.Conn) error {
	deleted, err := conn.DeleteEntity(ctx, x.Entity)
	x.Reply.deliver(deleted, err)
	return err
}

func (x Entities) name() string   { return "Entities" }
func (x Entities) detached() bool { return x.Reply == nil }
func (x Entities) reject(err error) {
	x.Reply.deliver(nil, err)
}
func (x Entities) execute(ctx context.Context, conn backend.Conn) error {
	entities, err := conn.Entities(ctx)
	x.Reply.deliver(entities, err)
	return err
}
