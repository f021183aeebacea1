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
	"github.com/tochemey/entitystore/backend/bolt"
	"github.com/tochemey/entitystore/backend/redis"
	gerrors "github.com/tochemey/entitystore/errors"
)

// dial establishes the backend connection selected by the address kind
func dial(ctx context.Context, address *backend.Address, cfg *config) (backend.Conn, error) {
	logger := cfg.logger.With("backend", address.Kind().String())
	switch address.Kind() {
	case backend.Redis:
		conn, err := redis.Dial(ctx, address, &redis.Config{DialTimeout: cfg.dialTimeout, Logger: logger})
		if err != nil {
			return nil, err
		}
		return conn, nil
	case backend.Bolt:
		conn, err := bolt.Open(ctx, address, &bolt.Config{Timeout: cfg.dialTimeout, Logger: logger})
		if err != nil {
			return nil, err
		}
		return conn, nil
	default:
		return nil, gerrors.NewErrUnsupportedScheme(address.URL().Scheme)
	}
}
