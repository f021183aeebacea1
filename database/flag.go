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

// stateFlag is a bit of Connection.stateFlags
type stateFlag uint32

//   - runningFlag:  the actor accepts and executes commands.
//   - stoppingFlag: the actor is releasing the backend connection.
const (
	runningFlag stateFlag = 1 << iota
	stoppingFlag
)

func (c *Connection) isFlagEnabled(flag stateFlag) bool {
	return c.stateFlags.Load()&uint32(flag) != 0
}

// toggleFlag sets or clears the given flag with a CAS loop
func (c *Connection) toggleFlag(flag stateFlag, enabled bool) {
	for {
		state := c.stateFlags.Load()
		var desired uint32
		if enabled {
			desired = state | uint32(flag)
		} else {
			desired = state &^ uint32(flag)
		}
		if desired == state {
			return
		}
		if c.stateFlags.CompareAndSwap(state, desired) {
			return
		}
	}
}
