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

// Package redis implements backend.Conn on top of a Redis server.
//
// Each entity is a Redis hash named by the 16 raw bytes of its EntityKey.
// Hash fields are the 2-byte little-endian ComponentKey and values are the
// component payloads.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/key"
	"github.com/tochemey/entitystore/log"
)

// scanCount is the COUNT hint used when enumerating entities
const scanCount = 256

// Config holds the dial settings
type Config struct {
	// DialTimeout bounds the establishment of the connection. Zero keeps the client default.
	DialTimeout time.Duration
	// Logger is used for diagnostics
	Logger log.Logger
}

// Conn implements backend.Conn with a go-redis client pinned to a single
// connection. The client redials transparently when the connection drops,
// so only a closed client is reported as errors.ErrConnectionLost.
type Conn struct {
	client *goredis.Client
	logger log.Logger
	closed *atomic.Bool
}

// enforce compilation error
var _ backend.Conn = (*Conn)(nil)

// Dial connects to the Redis server at the given address and checks the
// connection with a PING before returning.
func Dial(ctx context.Context, address *backend.Address, config *Config) (*Conn, error) {
	if address == nil || address.Kind() != backend.Redis {
		return nil, gerrors.NewErrInvalidAddress(errors.New("not a redis address"))
	}

	options, err := goredis.ParseURL(address.URL().String())
	if err != nil {
		return nil, gerrors.NewErrInvalidAddress(err)
	}

	options.PoolSize = 1
	options.MaxActiveConns = 1
	// command deadlines come from the caller context, not the client read/write timeouts
	options.ContextTimeoutEnabled = true
	logger := log.DefaultLogger.With("backend", backend.Redis.String())
	if config != nil {
		if config.DialTimeout > 0 {
			options.DialTimeout = config.DialTimeout
		}
		if config.Logger != nil {
			logger = config.Logger
		}
	}

	client := goredis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, gerrors.NewErrConnectionFailed(err)
	}

	logger.Debugf("connected to redis at %s", address.String())
	return &Conn{
		client: client,
		logger: logger,
		closed: atomic.NewBool(false),
	}, nil
}

// Ping implements backend.Conn.
func (c *Conn) Ping(ctx context.Context) error {
	return c.wrap(c.client.Ping(ctx).Err())
}

// Get implements backend.Conn.
func (c *Conn) Get(ctx context.Context, entity key.EntityKey, component key.ComponentKey) ([]byte, error) {
	data, err := c.client.HGet(ctx, entityName(entity), componentField(component)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, gerrors.ErrComponentNotFound
		}
		return nil, c.wrap(err)
	}
	return data, nil
}

// Set implements backend.Conn.
func (c *Conn) Set(ctx context.Context, entity key.EntityKey, component key.ComponentKey, data []byte) (bool, error) {
	added, err := c.client.HSet(ctx, entityName(entity), componentField(component), data).Result()
	if err != nil {
		return false, c.wrap(err)
	}
	return added == 1, nil
}

// Delete implements backend.Conn.
func (c *Conn) Delete(ctx context.Context, entity key.EntityKey, component key.ComponentKey) (bool, error) {
	removed, err := c.client.HDel(ctx, entityName(entity), componentField(component)).Result()
	if err != nil {
		return false, c.wrap(err)
	}
	return removed > 0, nil
}

// Load implements backend.Conn.
func (c *Conn) Load(ctx context.Context, entity key.EntityKey) (map[key.ComponentKey][]byte, error) {
	fields, err := c.client.HGetAll(ctx, entityName(entity)).Result()
	if err != nil {
		return nil, c.wrap(err)
	}

	components := make(map[key.ComponentKey][]byte, len(fields))
	for field, value := range fields {
		component, err := key.DecodeComponentKey(field)
		if err != nil {
			return nil, err
		}
		components[component] = []byte(value)
	}
	return components, nil
}

// Components implements backend.Conn.
func (c *Conn) Components(ctx context.Context, entity key.EntityKey) ([]key.ComponentKey, error) {
	replies, err := c.client.Do(ctx, "HKEYS", entityName(entity)).Slice()
	if err != nil {
		return nil, c.wrap(err)
	}
	return key.DecodeComponentKeys(replies)
}

// DeleteEntity implements backend.Conn.
func (c *Conn) DeleteEntity(ctx context.Context, entity key.EntityKey) (bool, error) {
	removed, err := c.client.Del(ctx, entityName(entity)).Result()
	if err != nil {
		return false, c.wrap(err)
	}
	return removed > 0, nil
}

// Entities implements backend.Conn.
// Only hash keys are considered. Keys that do not decode as an EntityKey do not
// belong to this store and are skipped. SCAN may return a key more than once.
func (c *Conn) Entities(ctx context.Context) ([]key.EntityKey, error) {
	var (
		cursor   uint64
		entities []key.EntityKey
	)

	seen := make(map[key.EntityKey]struct{})
	for {
		names, next, err := c.client.ScanType(ctx, cursor, "", scanCount, "hash").Result()
		if err != nil {
			return nil, c.wrap(err)
		}

		for _, name := range names {
			entity, err := key.DecodeEntityKey(name)
			if err != nil {
				c.logger.Debugf("skipping foreign key %q: %v", name, err)
				continue
			}
			if _, ok := seen[entity]; ok {
				continue
			}
			seen[entity] = struct{}{}
			entities = append(entities, entity)
		}

		if next == 0 {
			return entities, nil
		}
		cursor = next
	}
}

// Close implements backend.Conn.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.client.Close()
}

// wrap marks errors from a closed client as a lost connection
func (c *Conn) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, goredis.ErrClosed) || c.closed.Load() {
		return gerrors.NewErrConnectionLost(err)
	}
	return err
}

func entityName(entity key.EntityKey) string {
	return string(key.EncodeEntityKey(entity))
}

func componentField(component key.ComponentKey) string {
	return string(key.EncodeComponentKey(component))
}
