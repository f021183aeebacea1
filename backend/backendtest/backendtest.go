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

// Package backendtest provides a conformance suite shared by the backend.Conn
// implementations.
package backendtest

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/key"
)

// TestConn runs the conformance suite against a freshly opened, empty connection.
// The connection is not closed by the suite.
func TestConn(t *testing.T, conn backend.Conn) {
	t.Helper()
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, conn.Ping(ctx))
	})

	t.Run("Get missing component", func(t *testing.T) {
		_, err := conn.Get(ctx, key.NewEntityKey(), key.ComponentKey(1))
		assert.ErrorIs(t, err, gerrors.ErrComponentNotFound)
	})

	t.Run("Set then Get", func(t *testing.T) {
		entity := key.NewEntityKey()
		created, err := conn.Set(ctx, entity, key.ComponentKey(300), []byte("position"))
		require.NoError(t, err)
		assert.True(t, created)

		data, err := conn.Get(ctx, entity, key.ComponentKey(300))
		require.NoError(t, err)
		assert.Equal(t, []byte("position"), data)

		created, err = conn.Set(ctx, entity, key.ComponentKey(300), []byte("velocity"))
		require.NoError(t, err)
		assert.False(t, created)

		data, err = conn.Get(ctx, entity, key.ComponentKey(300))
		require.NoError(t, err)
		assert.Equal(t, []byte("velocity"), data)
	})

	t.Run("Set empty payload", func(t *testing.T) {
		entity := key.NewEntityKey()
		_, err := conn.Set(ctx, entity, key.ComponentKey(0), []byte{})
		require.NoError(t, err)
		data, err := conn.Get(ctx, entity, key.ComponentKey(0))
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Load and Components", func(t *testing.T) {
		entity := key.NewEntityKey()
		expected := map[key.ComponentKey][]byte{
			0:     []byte("zero"),
			1:     []byte("one"),
			300:   {0x00, 0xFF, 0x10},
			65535: []byte("max"),
		}
		for component, data := range expected {
			_, err := conn.Set(ctx, entity, component, data)
			require.NoError(t, err)
		}

		loaded, err := conn.Load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, expected, loaded)

		components, err := conn.Components(ctx, entity)
		require.NoError(t, err)
		sort.Slice(components, func(i, j int) bool { return components[i] < components[j] })
		assert.Equal(t, []key.ComponentKey{0, 1, 300, 65535}, components)
	})

	t.Run("Load unknown entity", func(t *testing.T) {
		loaded, err := conn.Load(ctx, key.NewEntityKey())
		require.NoError(t, err)
		assert.Empty(t, loaded)

		components, err := conn.Components(ctx, key.NewEntityKey())
		require.NoError(t, err)
		assert.Empty(t, components)
	})

	t.Run("Delete component", func(t *testing.T) {
		entity := key.NewEntityKey()
		_, err := conn.Set(ctx, entity, key.ComponentKey(7), []byte("health"))
		require.NoError(t, err)
		_, err = conn.Set(ctx, entity, key.ComponentKey(8), []byte("mana"))
		require.NoError(t, err)

		deleted, err := conn.Delete(ctx, entity, key.ComponentKey(7))
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = conn.Delete(ctx, entity, key.ComponentKey(7))
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = conn.Get(ctx, entity, key.ComponentKey(7))
		assert.ErrorIs(t, err, gerrors.ErrComponentNotFound)

		data, err := conn.Get(ctx, entity, key.ComponentKey(8))
		require.NoError(t, err)
		assert.Equal(t, []byte("mana"), data)

		deleted, err = conn.Delete(ctx, key.NewEntityKey(), key.ComponentKey(7))
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Delete last component removes the entity", func(t *testing.T) {
		entity := key.NewEntityKey()
		_, err := conn.Set(ctx, entity, key.ComponentKey(9), []byte("tag"))
		require.NoError(t, err)
		_, err = conn.Delete(ctx, entity, key.ComponentKey(9))
		require.NoError(t, err)

		entities, err := conn.Entities(ctx)
		require.NoError(t, err)
		assert.NotContains(t, entities, entity)
	})

	t.Run("DeleteEntity and Entities", func(t *testing.T) {
		first := key.NewEntityKey()
		second := key.NewEntityKey()
		for _, entity := range []key.EntityKey{first, second} {
			_, err := conn.Set(ctx, entity, key.ComponentKey(1), []byte("name"))
			require.NoError(t, err)
			_, err = conn.Set(ctx, entity, key.ComponentKey(2), []byte("age"))
			require.NoError(t, err)
		}

		entities, err := conn.Entities(ctx)
		require.NoError(t, err)
		assert.Contains(t, entities, first)
		assert.Contains(t, entities, second)

		deleted, err := conn.DeleteEntity(ctx, first)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = conn.DeleteEntity(ctx, first)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = conn.Get(ctx, first, key.ComponentKey(1))
		assert.ErrorIs(t, err, gerrors.ErrComponentNotFound)

		entities, err = conn.Entities(ctx)
		require.NoError(t, err)
		assert.NotContains(t, entities, first)
		assert.Contains(t, entities, second)
	})
}
