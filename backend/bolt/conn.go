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

// Package bolt implements backend.Conn on top of an embedded bbolt file.
//
// Each entity is a top-level bucket named by the 16 raw bytes of its
// EntityKey. Bucket keys are the 2-byte little-endian ComponentKey and values
// are the component payloads, mirroring the Redis hash layout.
package bolt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
	"go.uber.org/atomic"

	"github.com/tochemey/entitystore/backend"
	gerrors "github.com/tochemey/entitystore/errors"
	"github.com/tochemey/entitystore/key"
	"github.com/tochemey/entitystore/log"
)

const (
	boltFileMode os.FileMode = 0o600
	boltDirMode  os.FileMode = 0o755
)

var (
	defaultTimeout  = 5 * time.Second
	errStoreClosed  = errors.New("bolt: store is closed")
	errNotBoltAddr  = errors.New("not a bolt address")
	errNestedBucket = errors.New("bolt: unexpected nested bucket")
)

// Config holds the open settings
type Config struct {
	// Timeout bounds the wait for the file lock. Zero uses five seconds.
	Timeout time.Duration
	// Logger is used for diagnostics
	Logger log.Logger
}

// Conn implements backend.Conn using go.etcd.io/bbolt.
//
// bbolt provides single-writer/multi-reader semantics. The connection actor is
// the only caller so transactions never contend; only the close state is guarded.
type Conn struct {
	db     *bbolt.DB
	path   string
	logger log.Logger
	closed *atomic.Bool
}

// enforce compilation error
var _ backend.Conn = (*Conn)(nil)

// Open opens (or creates) the bbolt file named by the address.
// Missing parent directories are created.
func Open(ctx context.Context, address *backend.Address, config *Config) (*Conn, error) {
	if address == nil || address.Kind() != backend.Bolt {
		return nil, gerrors.NewErrInvalidAddress(errNotBoltAddr)
	}

	if err := contextErr(ctx); err != nil {
		return nil, gerrors.NewErrConnectionFailed(err)
	}

	timeout := defaultTimeout
	logger := log.DefaultLogger.With("backend", backend.Bolt.String())
	if config != nil {
		if config.Timeout > 0 {
			timeout = config.Timeout
		}
		if config.Logger != nil {
			logger = config.Logger
		}
	}

	path := address.FilePath()
	if err := os.MkdirAll(filepath.Dir(path), boltDirMode); err != nil {
		return nil, gerrors.NewErrConnectionFailed(fmt.Errorf("bolt: unable to create directory: %w", err))
	}

	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, gerrors.NewErrConnectionFailed(fmt.Errorf("bolt: opening %s: %w", path, err))
	}

	logger.Debugf("opened bolt database at %s", path)
	return &Conn{
		db:     db,
		path:   path,
		logger: logger,
		closed: atomic.NewBool(false),
	}, nil
}

// Path returns the database file path
func (c *Conn) Path() string {
	return c.path
}

// Ping implements backend.Conn.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.ensureReady(ctx); err != nil {
		return err
	}
	return c.wrap(c.db.View(func(*bbolt.Tx) error { return nil }))
}

// Get implements backend.Conn.
func (c *Conn) Get(ctx context.Context, entity key.EntityKey, component key.ComponentKey) ([]byte, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	var data []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(key.EncodeEntityKey(entity))
		if bucket == nil {
			return gerrors.ErrComponentNotFound
		}
		value, found := lookup(bucket, key.EncodeComponentKey(component))
		if !found {
			return gerrors.ErrComponentNotFound
		}
		// values are only valid for the lifetime of the transaction
		data = bytes.Clone(value)
		if data == nil {
			data = []byte{}
		}
		return nil
	})
	if err != nil {
		return nil, c.wrap(err)
	}
	return data, nil
}

// Set implements backend.Conn.
func (c *Conn) Set(ctx context.Context, entity key.EntityKey, component key.ComponentKey, data []byte) (bool, error) {
	if err := c.ensureReady(ctx); err != nil {
		return false, err
	}

	var created bool
	err := c.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(key.EncodeEntityKey(entity))
		if err != nil {
			return err
		}
		field := key.EncodeComponentKey(component)
		_, found := lookup(bucket, field)
		created = !found
		if data == nil {
			data = []byte{}
		}
		return bucket.Put(field, data)
	})
	if err != nil {
		return false, c.wrap(err)
	}
	return created, nil
}

// Delete implements backend.Conn.
// The entity bucket is dropped with its last component, as Redis drops an empty hash.
func (c *Conn) Delete(ctx context.Context, entity key.EntityKey, component key.ComponentKey) (bool, error) {
	if err := c.ensureReady(ctx); err != nil {
		return false, err
	}

	var deleted bool
	err := c.db.Update(func(tx *bbolt.Tx) error {
		name := key.EncodeEntityKey(entity)
		bucket := tx.Bucket(name)
		if bucket == nil {
			return nil
		}
		field := key.EncodeComponentKey(component)
		if _, found := lookup(bucket, field); !found {
			return nil
		}
		if err := bucket.Delete(field); err != nil {
			return err
		}
		deleted = true
		if first, _ := bucket.Cursor().First(); first == nil {
			return tx.DeleteBucket(name)
		}
		return nil
	})
	if err != nil {
		return false, c.wrap(err)
	}
	return deleted, nil
}

// Load implements backend.Conn.
func (c *Conn) Load(ctx context.Context, entity key.EntityKey) (map[key.ComponentKey][]byte, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	components := make(map[key.ComponentKey][]byte)
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(key.EncodeEntityKey(entity))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(field, value []byte) error {
			if value == nil {
				return errNestedBucket
			}
			component, err := key.DecodeComponentKey(field)
			if err != nil {
				return err
			}
			components[component] = bytes.Clone(value)
			return nil
		})
	})
	if err != nil {
		return nil, c.wrap(err)
	}
	return components, nil
}

// Components implements backend.Conn.
func (c *Conn) Components(ctx context.Context, entity key.EntityKey) ([]key.ComponentKey, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	var components []key.ComponentKey
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(key.EncodeEntityKey(entity))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(field, _ []byte) error {
			component, err := key.DecodeComponentKey(field)
			if err != nil {
				return err
			}
			components = append(components, component)
			return nil
		})
	})
	if err != nil {
		return nil, c.wrap(err)
	}
	return components, nil
}

// DeleteEntity implements backend.Conn.
func (c *Conn) DeleteEntity(ctx context.Context, entity key.EntityKey) (bool, error) {
	if err := c.ensureReady(ctx); err != nil {
		return false, err
	}

	var deleted bool
	err := c.db.Update(func(tx *bbolt.Tx) error {
		name := key.EncodeEntityKey(entity)
		if tx.Bucket(name) == nil {
			return nil
		}
		deleted = true
		return tx.DeleteBucket(name)
	})
	if err != nil {
		return false, c.wrap(err)
	}
	return deleted, nil
}

// Entities implements backend.Conn.
// Buckets whose name does not decode as an EntityKey are skipped.
func (c *Conn) Entities(ctx context.Context) ([]key.EntityKey, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	var entities []key.EntityKey
	err := c.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			entity, err := key.DecodeEntityKey(name)
			if err != nil {
				c.logger.Debugf("skipping foreign bucket %q: %v", name, err)
				return nil
			}
			entities = append(entities, entity)
			return nil
		})
	})
	if err != nil {
		return nil, c.wrap(err)
	}
	return entities, nil
}

// Close releases the underlying bbolt handle. The file is kept.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

func (c *Conn) ensureReady(ctx context.Context) error {
	if c.closed.Load() {
		return gerrors.NewErrConnectionLost(errStoreClosed)
	}
	return contextErr(ctx)
}

// wrap marks errors from a closed database as a lost connection
func (c *Conn) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, berrors.ErrDatabaseNotOpen) {
		return gerrors.NewErrConnectionLost(err)
	}
	return err
}

// lookup reports whether the field holds a value, including an empty one
func lookup(bucket *bbolt.Bucket, field []byte) ([]byte, bool) {
	k, v := bucket.Cursor().Seek(field)
	if k == nil || !bytes.Equal(k, field) || v == nil {
		return nil, false
	}
	return v, true
}

func contextErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
