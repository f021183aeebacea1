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
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/key"
)

// hook is called before every fakeConn operation. A non-nil error is returned
// instead of executing the operation.
type hook func(ctx context.Context, op string, component key.ComponentKey) error

// fakeConn is an in-memory backend.Conn recording the order of writes
type fakeConn struct {
	mu       sync.Mutex
	entities map[key.EntityKey]map[key.ComponentKey][]byte
	writes   []write
	hook     hook
	closed   *atomic.Bool
}

type write struct {
	entity    key.EntityKey
	component key.ComponentKey
}

var _ backend.Conn = (*fakeConn)(nil)

func newFakeConn(h hook) *fakeConn {
	return &fakeConn{
		entities: make(map[key.EntityKey]map[key.ComponentKey][]byte),
		hook:     h,
		closed:   atomic.NewBool(false),
	}
}

func (f *fakeConn) before(ctx context.Context, op string, component key.ComponentKey) error {
	if f.closed.Load() {
		return gerrors.ErrConnectionLost
	}
	if f.hook != nil {
		return f.hook(ctx, op, component)
	}
	return nil
}

func (f *fakeConn) Ping(ctx context.Context) error {
	return f.before(ctx, "Ping", 0)
}

func (f *fakeConn) Get(ctx context.Context, entity key.EntityKey, component key.ComponentKey) ([]byte, error) {
	if err := f.before(ctx, "Get", component); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entities[entity][component]
	if !ok {
		return nil, gerrors.ErrComponentNotFound
	}
	return data, nil
}

func (f *fakeConn) Set(ctx context.Context, entity key.EntityKey, component key.ComponentKey, data []byte) (bool, error) {
	if err := f.before(ctx, "Set", component); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	components, ok := f.entities[entity]
	if !ok {
		components = make(map[key.ComponentKey][]byte)
		f.entities[entity] = components
	}
	_, exists := components[component]
	components[component] = data
	f.writes = append(f.writes, write{entity: entity, component: component})
	return !exists, nil
}

func (f *fakeConn) Delete(ctx context.Context, entity key.EntityKey, component key.ComponentKey) (bool, error) {
	if err := f.before(ctx, "Delete", component); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	components, ok := f.entities[entity]
	if !ok {
		return false, nil
	}
	if _, ok := components[component]; !ok {
		return false, nil
	}
	delete(components, component)
	if len(components) == 0 {
		delete(f.entities, entity)
	}
	return true, nil
}

func (f *fakeConn) Load(ctx context.Context, entity key.EntityKey) (map[key.ComponentKey][]byte, error) {
	if err := f.before(ctx, "Load", 0); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[key.ComponentKey][]byte, len(f.entities[entity]))
	for component, data := range f.entities[entity] {
		out[component] = data
	}
	return out, nil
}

func (f *fakeConn) Components(ctx context.Context, entity key.EntityKey) ([]key.ComponentKey, error) {
	if err := f.before(ctx, "Components", 0); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []key.ComponentKey
	for component := range f.entities[entity] {
		out = append(out, component)
	}
	return out, nil
}

func (f *fakeConn) DeleteEntity(ctx context.Context, entity key.EntityKey) (bool, error) {
	if err := f.before(ctx, "DeleteEntity", 0); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entities[entity]
	delete(f.entities, entity)
	return ok, nil
}

func (f *fakeConn) Entities(ctx context.Context) ([]key.EntityKey, error) {
	if err := f.before(ctx, "Entities", 0); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []key.EntityKey
	for entity := range f.entities {
		out = append(out, entity)
	}
	return out, nil
}

func (f *fakeConn) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeConn) recordedWrites() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]write(nil), f.writes...)
}

func (f *fakeConn) has(entity key.EntityKey, component key.ComponentKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entities[entity][component]
	return ok
}

// gate blocks the Get of one component until released
type gate struct {
	component key.ComponentKey
	entered   chan struct{}
	release   chan struct{}
}

func newGate(component key.ComponentKey) *gate {
	return &gate{
		component: component,
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gate) hook(_ context.Context, op string, component key.ComponentKey) error {
	if op == "Get" && component == g.component {
		close(g.entered)
		<-g.release
	}
	return nil
}
