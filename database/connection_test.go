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
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/key"
	"github.com/tochemey/entitystore/log"
)

func TestConnection(t *testing.T) {
	t.Run("With typed commands", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		conn := newFakeConn(nil)
		connection := startTestConnection(t, conn)

		require.NoError(t, connection.Ping(ctx))
		assert.True(t, connection.IsRunning())
		assert.Equal(t, backend.Bolt, connection.Kind())

		entity := key.NewEntityKey()
		created, err := connection.Set(ctx, entity, key.ComponentKey(300), []byte("position"))
		require.NoError(t, err)
		assert.True(t, created)

		data, err := connection.Get(ctx, entity, key.ComponentKey(300))
		require.NoError(t, err)
		assert.Equal(t, []byte("position"), data)

		_, err = connection.Get(ctx, entity, key.ComponentKey(301))
		assert.ErrorIs(t, err, gerrors.ErrComponentNotFound)

		loaded, err := connection.Load(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, map[key.ComponentKey][]byte{300: []byte("position")}, loaded)

		components, err := connection.Components(ctx, entity)
		require.NoError(t, err)
		assert.Equal(t, []key.ComponentKey{300}, components)

		entities, err := connection.Entities(ctx)
		require.NoError(t, err)
		assert.Equal(t, []key.EntityKey{entity}, entities)

		deleted, err := connection.Delete(ctx, entity, key.ComponentKey(300))
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = connection.Set(ctx, entity, key.ComponentKey(1), []byte("name"))
		require.NoError(t, err)
		deleted, err = connection.DeleteEntity(ctx, entity)
		require.NoError(t, err)
		assert.True(t, deleted)

		require.NoError(t, connection.Shutdown(ctx))
		assert.False(t, connection.IsRunning())
		assert.True(t, conn.closed.Load())
		assert.NoError(t, connection.Err())
	})
	t.Run("With commands processed in order across producers", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		conn := newFakeConn(nil)
		connection := startTestConnection(t, conn)

		const producers = 8
		const commands = 100
		entities := make([]key.EntityKey, producers)
		for i := range entities {
			entities[i] = key.NewEntityKey()
		}

		eg, egCtx := errgroup.WithContext(ctx)
		for _, entity := range entities {
			eg.Go(func() error {
				for i := 0; i < commands; i++ {
					if err := connection.Send(Set{Entity: entity, Component: key.ComponentKey(i), Data: []byte("v")}); err != nil {
						return err
					}
				}
				return connection.Ping(egCtx)
			})
		}
		require.NoError(t, eg.Wait())

		next := make(map[key.EntityKey]int, producers)
		writes := conn.recordedWrites()
		require.Len(t, writes, producers*commands)
		for _, w := range writes {
			assert.EqualValues(t, next[w.entity], w.component)
			next[w.entity]++
		}

		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With shutdown rejecting queued commands", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(g.hook)
		connection := startTestConnection(t, conn)

		entity := key.NewEntityKey()
		getReply := NewReply[[]byte]()
		require.NoError(t, connection.Send(Get{Entity: entity, Component: 1, Reply: getReply}))
		<-g.entered

		before := NewReply[bool]()
		after := NewReply[bool]()
		require.NoError(t, connection.Send(Set{Entity: entity, Component: 2, Data: []byte("a"), Reply: before}))
		require.NoError(t, connection.Send(Shutdown{}))
		require.NoError(t, connection.Send(Set{Entity: entity, Component: 3, Data: []byte("b"), Reply: after}))
		close(g.release)

		_, err := getReply.Await(ctx)
		assert.ErrorIs(t, err, gerrors.ErrComponentNotFound)

		created, err := before.Await(ctx)
		require.NoError(t, err)
		assert.True(t, created)

		_, err = after.Await(ctx)
		assert.ErrorIs(t, err, gerrors.ErrConnectionClosed)

		require.NoError(t, connection.Wait())
		assert.True(t, conn.has(entity, 2))
		assert.False(t, conn.has(entity, 3))
		assert.True(t, conn.closed.Load())

		err = connection.Send(Ping{})
		assert.ErrorIs(t, err, gerrors.ErrConnectionClosed)
		err = connection.Ping(ctx)
		assert.ErrorIs(t, err, gerrors.ErrConnectionClosed)
		assert.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With close draining queued commands", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(g.hook)
		connection := startTestConnection(t, conn)

		entity := key.NewEntityKey()
		require.NoError(t, connection.Send(Get{Entity: entity, Component: 1}))
		<-g.entered

		replies := make([]Reply[bool], 5)
		for i := range replies {
			replies[i] = NewReply[bool]()
			require.NoError(t, connection.Send(Set{Entity: entity, Component: key.ComponentKey(10 + i), Reply: replies[i]}))
		}
		connection.Close()
		assert.ErrorIs(t, connection.Send(Ping{}), gerrors.ErrConnectionClosed)
		close(g.release)

		for _, reply := range replies {
			created, err := reply.Await(ctx)
			require.NoError(t, err)
			assert.True(t, created)
		}

		select {
		case <-connection.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("connection did not terminate")
		}
		require.NoError(t, connection.Err())
		assert.True(t, conn.closed.Load())
	})
	t.Run("With failing command not affecting the others", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		failure := errors.New("simulated failure")
		conn := newFakeConn(func(_ context.Context, op string, component key.ComponentKey) error {
			if op == "Set" && component == 13 {
				return failure
			}
			return nil
		})
		connection := startTestConnection(t, conn)

		entity := key.NewEntityKey()
		_, err := connection.Set(ctx, entity, 13, []byte("unlucky"))
		assert.ErrorIs(t, err, failure)

		// fire-and-forget failures are only logged
		require.NoError(t, connection.Send(Set{Entity: entity, Component: 13}))

		created, err := connection.Set(ctx, entity, 14, []byte("lucky"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, connection.IsRunning())
		assert.NoError(t, connection.Err())

		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With connection lost terminating the actor", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(func(ctx context.Context, op string, component key.ComponentKey) error {
			if op == "Ping" {
				return gerrors.NewErrConnectionLost(errors.New("socket closed"))
			}
			return g.hook(ctx, op, component)
		})
		connection := startTestConnection(t, conn)

		require.NoError(t, connection.Send(Get{Entity: key.NewEntityKey(), Component: 1}))
		<-g.entered

		ping := NewReply[struct{}]()
		pending := NewReply[bool]()
		require.NoError(t, connection.Send(Ping{Reply: ping}))
		require.NoError(t, connection.Send(Set{Entity: key.NewEntityKey(), Component: 2, Reply: pending}))
		close(g.release)

		_, err := ping.Await(ctx)
		assert.ErrorIs(t, err, gerrors.ErrConnectionLost)
		_, err = pending.Await(ctx)
		assert.ErrorIs(t, err, gerrors.ErrConnectionClosed)

		err = connection.Wait()
		assert.ErrorIs(t, err, gerrors.ErrConnectionLost)
		assert.ErrorIs(t, connection.Err(), gerrors.ErrConnectionLost)
		assert.False(t, connection.IsRunning())
		assert.True(t, conn.closed.Load())
		assert.ErrorIs(t, connection.Shutdown(ctx), gerrors.ErrConnectionLost)
	})
	t.Run("With command timeout", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		conn := newFakeConn(func(ctx context.Context, op string, _ key.ComponentKey) error {
			if op == "Get" {
				<-ctx.Done()
				return ctx.Err()
			}
			return nil
		})
		connection := startTestConnection(t, conn, WithCommandTimeout(20*time.Millisecond))

		_, err := connection.Get(ctx, key.NewEntityKey(), 1)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		require.NoError(t, connection.Ping(ctx))
		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With caller abandoning the wait", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(g.hook)
		connection := startTestConnection(t, conn)

		cancelCtx, cancel := context.WithCancel(ctx)
		errc := make(chan error, 1)
		go func() {
			_, err := connection.Get(cancelCtx, key.NewEntityKey(), 1)
			errc <- err
		}()
		<-g.entered
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)

		close(g.release)
		require.NoError(t, connection.Ping(ctx))
		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With shutdown context expiring", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(g.hook)
		connection := startTestConnection(t, conn)

		require.NoError(t, connection.Send(Get{Entity: key.NewEntityKey(), Component: 1}))
		<-g.entered

		timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, connection.Shutdown(timeoutCtx), context.DeadlineExceeded)

		close(g.release)
		require.NoError(t, connection.Wait())
	})
	t.Run("With panicking backend terminating the actor", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		ctx := context.Background()
		g := newGate(1)
		conn := newFakeConn(func(ctx context.Context, op string, component key.ComponentKey) error {
			if op == "Get" && component == 66 {
				panic("corrupted state")
			}
			return g.hook(ctx, op, component)
		})
		connection := startTestConnection(t, conn)

		require.NoError(t, connection.Send(Get{Entity: key.NewEntityKey(), Component: 1}))
		<-g.entered

		failing := NewReply[[]byte]()
		pending := NewReply[bool]()
		require.NoError(t, connection.Send(Get{Entity: key.NewEntityKey(), Component: 66, Reply: failing}))
		require.NoError(t, connection.Send(Set{Entity: key.NewEntityKey(), Component: 2, Reply: pending}))
		close(g.release)

		var panicErr *gerrors.PanicError
		_, err := failing.Await(ctx)
		require.ErrorAs(t, err, &panicErr)
		assert.Contains(t, err.Error(), "corrupted state")

		_, err = pending.Await(ctx)
		assert.ErrorIs(t, err, gerrors.ErrConnectionClosed)

		timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err = connection.Shutdown(timeoutCtx)
		require.ErrorAs(t, err, &panicErr)
		assert.ErrorAs(t, connection.Wait(), &panicErr)
		assert.False(t, connection.IsRunning())
		assert.True(t, conn.closed.Load())
	})
	t.Run("With pointer shutdown command", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		connection := startTestConnection(t, newFakeConn(nil))
		require.NoError(t, connection.Send(&Shutdown{}))
		require.NoError(t, connection.Wait())
	})
	t.Run("With undefined command", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		connection := startTestConnection(t, newFakeConn(nil))
		assert.ErrorIs(t, connection.Send(nil), gerrors.ErrUndefinedCommand)
		require.NoError(t, connection.Shutdown(context.Background()))
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	t.Run("With unsupported scheme", func(t *testing.T) {
		_, err := Open(ctx, "memcached://localhost:11211")
		assert.ErrorIs(t, err, gerrors.ErrUnsupportedScheme)
	})
	t.Run("With malformed address", func(t *testing.T) {
		_, err := Open(ctx, "redis://localhost:6379/db", WithLogger(log.DiscardLogger))
		assert.ErrorIs(t, err, gerrors.ErrInvalidAddress)
	})
	t.Run("With negative timeouts", func(t *testing.T) {
		_, err := Open(ctx, "bolt:///tmp/never-opened.db", WithCommandTimeout(-time.Second), WithDialTimeout(-time.Second))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command timeout must not be negative")
		assert.Contains(t, err.Error(), "dial timeout must not be negative")
	})
	t.Run("With unreachable redis", func(t *testing.T) {
		port := dynaport.Get(1)[0]
		_, err := Open(ctx, fmt.Sprintf("redis://127.0.0.1:%d", port),
			WithLogger(log.DiscardLogger),
			WithDialTimeout(200*time.Millisecond))
		assert.ErrorIs(t, err, gerrors.ErrConnectionFailed)
	})
	t.Run("With bolt backend", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		path := filepath.Join(t.TempDir(), "entities.db")
		entity := key.NewEntityKey()

		connection := openTestConnection(t, "bolt://"+path)
		assert.Equal(t, backend.Bolt, connection.Kind())
		require.NoError(t, connection.Ping(ctx))
		created, err := connection.Set(ctx, entity, key.ComponentKey(300), []byte("position"))
		require.NoError(t, err)
		assert.True(t, created)
		require.NoError(t, connection.Shutdown(ctx))

		// the file lock is released on shutdown
		connection = openTestConnection(t, "bolt://"+path)
		data, err := connection.Get(ctx, entity, key.ComponentKey(300))
		require.NoError(t, err)
		assert.Equal(t, []byte("position"), data)
		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With redis backend", func(t *testing.T) {
		server := miniredis.RunT(t)
		entity := key.NewEntityKey()

		connection := openTestConnection(t, "redis://"+server.Addr())
		assert.Equal(t, backend.Redis, connection.Kind())
		_, err := connection.Set(ctx, entity, key.ComponentKey(300), []byte("position"))
		require.NoError(t, err)
		assert.Equal(t, "position", server.HGet(string(key.EncodeEntityKey(entity)), "\x2C\x01"))

		entities, err := connection.Entities(ctx)
		require.NoError(t, err)
		assert.Equal(t, []key.EntityKey{entity}, entities)
		require.NoError(t, connection.Shutdown(ctx))
	})
	t.Run("With redis server gone", func(t *testing.T) {
		server, err := miniredis.Run()
		require.NoError(t, err)
		connection := openTestConnection(t, "redis://"+server.Addr(), WithCommandTimeout(time.Second))
		server.Close()

		// go-redis redials per command; a transient outage is reported to the caller only
		err = connection.Ping(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, gerrors.ErrConnectionLost)
		assert.True(t, connection.IsRunning())
		require.NoError(t, connection.Shutdown(ctx))
	})
}

func startTestConnection(t *testing.T, conn *fakeConn, opts ...Option) *Connection {
	t.Helper()
	opts = append([]Option{WithLogger(log.DiscardLogger), WithMeterProvider(noop.NewMeterProvider())}, opts...)
	connection, err := newConnection(conn, backend.Bolt, newConfig(opts...))
	require.NoError(t, err)
	return connection
}

func openTestConnection(t *testing.T, address string, opts ...Option) *Connection {
	t.Helper()
	opts = append([]Option{WithLogger(log.DiscardLogger), WithMeterProvider(noop.NewMeterProvider())}, opts...)
	connection, err := Open(context.Background(), address, opts...)
	require.NoError(t, err)
	return connection
}
