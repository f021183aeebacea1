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

// Package database runs the single connection to the entity store as an actor.
//
// A Connection owns one backend connection and one goroutine. Callers hand it
// commands through an unbounded queue that never blocks the sender, and the
// goroutine executes them one at a time in arrival order. Each command carries
// its own Reply, so a caller waits only for its own result.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/internal/metric"
	"github.com/tochemey/entitystore/internal/queue"
	"github.com/tochemey/entitystore/internal/validation"
	"github.com/tochemey/entitystore/key"
	"github.com/tochemey/entitystore/log"
)

// Connection is the handle to the connection actor.
// It is safe for concurrent use.
type Connection struct {
	kind     backend.Kind
	conn     backend.Conn
	commands *queue.Unbounded[Command]
	logger   log.Logger

	commandTimeout time.Duration
	metrics        *metric.ConnectionMetric
	registration   otelmetric.Registration

	stateFlags *atomic.Uint32
	done       chan struct{}
	err        error
}

// Open connects to the backend named by address and starts the connection actor.
//
// Recognized schemes are redis, rediss and bolt. The address is validated
// before any connection attempt. Connection failures are returned as is and
// never retried.
func Open(ctx context.Context, address string, opts ...Option) (*Connection, error) {
	cfg := newConfig(opts...)
	if err := validation.New(validation.AllErrors()).
		AddAssertion(cfg.commandTimeout >= 0, "command timeout must not be negative").
		AddAssertion(cfg.dialTimeout >= 0, "dial timeout must not be negative").
		Validate(); err != nil {
		return nil, err
	}

	addr, err := backend.ParseAddress(address)
	if err != nil {
		return nil, err
	}

	conn, err := dial(ctx, addr, cfg)
	if err != nil {
		cfg.logger.Errorf("failed to connect to %s: %v", addr, err)
		return nil, err
	}

	connection, err := newConnection(conn, addr.Kind(), cfg)
	if err != nil {
		return nil, multierr.Append(err, conn.Close())
	}

	cfg.logger.Infof("connected to %s", addr)
	return connection, nil
}

// newConnection starts the actor over an established backend connection
func newConnection(conn backend.Conn, kind backend.Kind, cfg *config) (*Connection, error) {
	connection := &Connection{
		kind:           kind,
		conn:           conn,
		commands:       queue.NewUnbounded[Command](),
		logger:         cfg.logger,
		commandTimeout: cfg.commandTimeout,
		stateFlags:     atomic.NewUint32(0),
		done:           make(chan struct{}),
	}

	if err := connection.registerMetrics(metric.NewProvider(cfg.meterProvider).Meter()); err != nil {
		return nil, err
	}

	connection.toggleFlag(runningFlag, true)
	go connection.run()
	return connection, nil
}

// Kind returns the backend kind
func (c *Connection) Kind() backend.Kind {
	return c.kind
}

// IsRunning reports whether the connection still executes commands
func (c *Connection) IsRunning() bool {
	return c.isFlagEnabled(runningFlag) && !c.isFlagEnabled(stoppingFlag)
}

// Send enqueues the command without blocking.
// It fails with errors.ErrConnectionClosed once the connection stopped accepting commands.
func (c *Connection) Send(command Command) error {
	if command == nil {
		return gerrors.ErrUndefinedCommand
	}
	if !c.commands.Push(command) {
		return gerrors.ErrConnectionClosed
	}
	return nil
}

// Shutdown enqueues a Shutdown command and waits for the connection to terminate.
// Commands queued behind it are rejected with errors.ErrConnectionClosed.
// It returns the error that ended the actor, if any.
func (c *Connection) Shutdown(ctx context.Context) error {
	if err := c.Send(Shutdown{}); err != nil && !errors.Is(err, gerrors.ErrConnectionClosed) {
		return err
	}
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting commands. Commands already queued are executed,
// then the connection terminates. Close does not wait; use Wait or Done.
func (c *Connection) Close() {
	c.commands.Close()
}

// Done is closed when the connection has terminated
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the connection has terminated and returns the error that ended it
func (c *Connection) Wait() error {
	<-c.done
	return c.err
}

// Err returns the error that ended the connection.
// It is nil while the connection runs and after a clean shutdown.
func (c *Connection) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Ping checks the backend round-trip
func (c *Connection) Ping(ctx context.Context) error {
	reply := NewReply[struct{}]()
	_, err := ask(ctx, c, Ping{Reply: reply}, reply)
	return err
}

// Get reads one component payload
func (c *Connection) Get(ctx context.Context, entity key.EntityKey, component key.ComponentKey) ([]byte, error) {
	reply := NewReply[[]byte]()
	return ask(ctx, c, Get{Entity: entity, Component: component, Reply: reply}, reply)
}

// Set writes one component payload and reports whether it was created
func (c *Connection) Set(ctx context.Context, entity key.EntityKey, component key.ComponentKey, data []byte) (bool, error) {
	reply := NewReply[bool]()
	return ask(ctx, c, Set{Entity: entity, Component: component, Data: data, Reply: reply}, reply)
}

// Delete removes one component and reports whether it existed
func (c *Connection) Delete(ctx context.Context, entity key.EntityKey, component key.ComponentKey) (bool, error) {
	reply := NewReply[bool]()
	return ask(ctx, c, Delete{Entity: entity, Component: component, Reply: reply}, reply)
}

// Load reads every component of the entity
func (c *Connection) Load(ctx context.Context, entity key.EntityKey) (map[key.ComponentKey][]byte, error) {
	reply := NewReply[map[key.ComponentKey][]byte]()
	return ask(ctx, c, Load{Entity: entity, Reply: reply}, reply)
}

// Components lists the component keys stored for the entity
func (c *Connection) Components(ctx context.Context, entity key.EntityKey) ([]key.ComponentKey, error) {
	reply := NewReply[[]key.ComponentKey]()
	return ask(ctx, c, Components{Entity: entity, Reply: reply}, reply)
}

// DeleteEntity removes the entity with all its components and reports whether it existed
func (c *Connection) DeleteEntity(ctx context.Context, entity key.EntityKey) (bool, error) {
	reply := NewReply[bool]()
	return ask(ctx, c, DeleteEntity{Entity: entity, Reply: reply}, reply)
}

// Entities lists the stored entity keys
func (c *Connection) Entities(ctx context.Context) ([]key.EntityKey, error) {
	reply := NewReply[[]key.EntityKey]()
	return ask(ctx, c, Entities{Reply: reply}, reply)
}

// ask sends the command and waits for its reply under the caller context
func ask[T any](ctx context.Context, c *Connection, command Command, reply Reply[T]) (T, error) {
	if err := c.Send(command); err != nil {
		var zero T
		return zero, err
	}
	return reply.Await(ctx)
}

// run is the actor loop. It is the only user of the backend connection.
func (c *Connection) run() {
	for {
		command, ok := c.commands.Wait()
		if !ok {
			c.stop(nil)
			return
		}

		switch command.(type) {
		case Shutdown, *Shutdown:
			c.stop(nil)
			return
		}

		err := c.process(command)
		var panicErr *gerrors.PanicError
		switch {
		case errors.As(err, &panicErr):
			c.logger.Errorf("%s command panicked: %v", command.name(), err)
			c.stop(err)
			return
		case errors.Is(err, gerrors.ErrConnectionLost):
			c.logger.Errorf("%s connection lost: %v", c.kind, err)
			c.stop(err)
			return
		}
	}
}

func (c *Connection) process(command Command) error {
	ctx := context.Background()
	if c.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.commandTimeout)
		defer cancel()
	}

	start := time.Now()
	err := c.execute(ctx, command)
	duration := time.Since(start)

	attrs := otelmetric.WithAttributes(
		attribute.String("backend", c.kind.String()),
		attribute.String("command", command.name()),
	)
	c.metrics.ProcessedCount().Add(ctx, 1, attrs)
	c.metrics.CommandDuration().Record(ctx, float64(duration.Microseconds())/1e3, attrs)

	if err != nil {
		c.metrics.FailureCount().Add(ctx, 1, attrs)
		if command.detached() {
			c.logger.Errorf("%s command failed: %v", command.name(), err)
		}
	}
	return err
}

// execute runs the command and turns a panic into a PanicError delivered to its caller
func (c *Connection) execute(ctx context.Context, command Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.NewPanicError(fmt.Errorf("%s: %v", command.name(), r))
			command.reject(err)
		}
	}()
	return command.execute(ctx, c.conn)
}

// stop rejects what is left in the queue, releases the backend connection
// and marks the connection as terminated
func (c *Connection) stop(cause error) {
	c.toggleFlag(stoppingFlag, true)

	pending := c.commands.CloseRemaining()
	for _, command := range pending {
		command.reject(gerrors.ErrConnectionClosed)
	}
	if len(pending) > 0 {
		c.logger.Warnf("rejected %d pending commands", len(pending))
	}

	err := cause
	if closeErr := c.conn.Close(); closeErr != nil && cause == nil {
		err = closeErr
	}

	if c.registration != nil {
		err = multierr.Append(err, c.registration.Unregister())
	}

	c.err = err
	c.toggleFlag(runningFlag, false)
	c.toggleFlag(stoppingFlag, false)
	c.logger.Infof("%s connection terminated", c.kind)
	close(c.done)
}

func (c *Connection) registerMetrics(meter otelmetric.Meter) error {
	metrics, err := metric.NewConnectionMetric(meter)
	if err != nil {
		return err
	}

	registration, err := meter.RegisterCallback(func(_ context.Context, observer otelmetric.Observer) error {
		observer.ObserveInt64(metrics.QueueDepth(), int64(c.commands.Len()),
			otelmetric.WithAttributes(attribute.String("backend", c.kind.String())))
		return nil
	}, metrics.QueueDepth())
	if err != nil {
		return err
	}

	c.metrics = metrics
	c.registration = registration
	return nil
}
