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

package queue

import "sync"

// minQueueLen is the smallest capacity that queue may have.
// Must be power of 2 for bitwise modulus: x % n == x & (n - 1).
const minQueueLen = 16

// Unbounded is a multi-producer single-consumer FIFO queue backed by a
// growable ring buffer.
//
// Push never blocks and never fails while the queue is open. Wait blocks the
// consumer until an item is available. Closing the queue rejects further pushes
// but keeps queued items available to the consumer, mirroring a channel whose
// senders are all gone.
//
// reference: https://blog.dubbelboer.com/2015/04/25/go-faster-queue.html
type Unbounded[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	nodes  []T
	head   int
	tail   int
	count  int
	closed bool
}

// NewUnbounded creates an instance of Unbounded
func NewUnbounded[T any]() *Unbounded[T] {
	q := &Unbounded[T]{
		nodes: make([]T, minQueueLen),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds an item to the back of the queue.
// It is safe for concurrent use and returns false when the queue is closed,
// in which case the item is dropped.
func (q *Unbounded[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if q.count == len(q.nodes) {
		q.resize(q.count << 1)
	}
	q.nodes[q.tail] = item
	// bitwise modulus
	q.tail = (q.tail + 1) & (len(q.nodes) - 1)
	q.count++
	q.cond.Signal()
	return true
}

// Wait removes the item at the front of the queue, blocking until one is
// available. It returns false only once the queue is closed and drained.
func (q *Unbounded[T]) Wait() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.count == 0 {
		if q.closed {
			var zero T
			return zero, false
		}
		q.cond.Wait()
	}
	return q.pop(), true
}

// Pop removes the item at the front of the queue without blocking.
// It returns false when the queue is empty.
func (q *Unbounded[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.pop(), true
}

// Close rejects further pushes and wakes up a blocked consumer.
// Items already queued remain available.
func (q *Unbounded[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// CloseRemaining closes the queue and returns every item still queued,
// in FIFO order.
func (q *Unbounded[T]) CloseRemaining() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	remaining := make([]T, 0, q.count)
	for q.count > 0 {
		remaining = append(remaining, q.pop())
	}
	q.closed = true
	q.cond.Broadcast()
	return remaining
}

// IsClosed returns true if the queue has been closed
func (q *Unbounded[T]) IsClosed() bool {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	return closed
}

// Len returns the current length of the queue.
func (q *Unbounded[T]) Len() int {
	q.mu.Lock()
	count := q.count
	q.mu.Unlock()
	return count
}

// Cap returns the capacity (without allocations)
func (q *Unbounded[T]) Cap() int {
	q.mu.Lock()
	c := len(q.nodes)
	q.mu.Unlock()
	return c
}

// pop must be called with the lock held and a non-empty queue
func (q *Unbounded[T]) pop() T {
	var zero T
	item := q.nodes[q.head]
	q.nodes[q.head] = zero
	// bitwise modulus
	q.head = (q.head + 1) & (len(q.nodes) - 1)
	q.count--
	// resize down if buffer 1/4 full.
	if len(q.nodes) > minQueueLen && (q.count<<2) == len(q.nodes) {
		q.resize(q.count << 1)
	}
	return item
}

func (q *Unbounded[T]) resize(size int) {
	if size < minQueueLen {
		size = minQueueLen
	}
	nodes := make([]T, size)
	if q.tail > q.head {
		copy(nodes, q.nodes[q.head:q.tail])
	} else if q.count > 0 {
		n := copy(nodes, q.nodes[q.head:])
		copy(nodes[n:], q.nodes[:q.tail])
	}
	q.tail = q.count & (size - 1)
	q.head = 0
	q.nodes = nodes
}
