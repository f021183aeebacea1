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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/tochemey/entitystore"
)

// ConnectionMetric defines the connection actor instrumentation
type ConnectionMetric struct {
	// Specifies the total number of commands executed
	processedCount metric.Int64Counter
	// Specifies the total number of commands that failed
	failureCount metric.Int64Counter
	// Specifies the command execution latency in milliseconds
	commandDuration metric.Float64Histogram
	// Specifies the number of commands waiting in the queue
	queueDepth metric.Int64ObservableGauge
}

// NewConnectionMetric creates an instance of ConnectionMetric
func NewConnectionMetric(meter metric.Meter) (*ConnectionMetric, error) {
	connectionMetric := new(ConnectionMetric)
	var err error

	if connectionMetric.processedCount, err = meter.Int64Counter(
		"entitystore_commands_processed",
		metric.WithDescription("Total number of commands executed against the backend"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processedCount instrument, %w", err)
	}

	if connectionMetric.failureCount, err = meter.Int64Counter(
		"entitystore_commands_failed",
		metric.WithDescription("Total number of commands that failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}

	if connectionMetric.commandDuration, err = meter.Float64Histogram(
		"entitystore_command_duration",
		metric.WithDescription("The latency of a command execution in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create commandDuration instrument, %w", err)
	}

	if connectionMetric.queueDepth, err = meter.Int64ObservableGauge(
		"entitystore_queue_depth",
		metric.WithDescription("Number of commands waiting to be executed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create queueDepth instrument, %w", err)
	}

	return connectionMetric, nil
}

// ProcessedCount returns the total number of commands executed
func (x *ConnectionMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// FailureCount returns the total number of failed commands
func (x *ConnectionMetric) FailureCount() metric.Int64Counter {
	return x.failureCount
}

// CommandDuration returns the command latency histogram
func (x *ConnectionMetric) CommandDuration() metric.Float64Histogram {
	return x.commandDuration
}

// QueueDepth returns the queue depth gauge
func (x *ConnectionMetric) QueueDepth() metric.Int64ObservableGauge {
	return x.queueDepth
}

// Provider hands out the meter used by the package instruments
type Provider struct {
	meter metric.Meter
}

// NewProvider creates a Provider from the given meter provider.
// A nil provider falls back to the global one.
func NewProvider(provider metric.MeterProvider) *Provider {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return &Provider{
		meter: provider.Meter(instrumentationName),
	}
}

// Meter returns the Meter used by this Provider.
func (x *Provider) Meter() metric.Meter {
	return x.meter
}
