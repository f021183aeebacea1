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
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/entitystore/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *config)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*config)

func (f OptionFunc) Apply(c *config) {
	f(c)
}

type config struct {
	logger         log.Logger
	commandTimeout time.Duration
	dialTimeout    time.Duration
	meterProvider  metric.MeterProvider
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger:      log.DefaultLogger,
		dialTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	return cfg
}

// WithLogger sets the connection logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCommandTimeout bounds the execution of every command against the backend.
// Zero, the default, leaves commands unbounded.
func WithCommandTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *config) {
		c.commandTimeout = timeout
	})
}

// WithDialTimeout bounds the connection establishment.
// For bolt it is the maximum wait on the database file lock.
func WithDialTimeout(timeout time.Duration) Option {
	return OptionFunc(func(c *config) {
		c.dialTimeout = timeout
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(c *config) {
		c.meterProvider = provider
	})
}
