/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package reactor wraps Linux epoll in edge-triggered mode and owns the
// listening endpoint plus the table mapping each descriptor to its
// connection task. One reactor drives every connection; the connection
// tasks suspend inside the buffered stream primitives and the reactor
// resumes them when the kernel signals readiness.
//
// Descriptor exhaustion on accept is the only fatal per-event error;
// every other per-event failure is logged and swallowed. A failing
// epoll wait (other than EINTR) also ends the loop with an error.
package reactor

import (
	"context"
	"time"

	liberr "github.com/nabbar/litefs/errors"
	liblog "github.com/nabbar/litefs/logger"
	libsio "github.com/nabbar/litefs/sockio"
)

// DefaultPollInterval is the reactor quantum used when Run is given a
// non-positive interval.
const DefaultPollInterval = 200 * time.Millisecond

// ConnHandler runs one connection task over the given stream. The
// context is cancelled by the reactor on hang-up or error events; the
// handler must unwind and release its resources when that happens.
// The reactor closes the stream after the handler returns.
type ConnHandler func(ctx context.Context, s libsio.Stream)

// Reactor is the single-threaded event loop.
type Reactor interface {
	libsio.Poller

	// Run drives the loop until Shutdown is called or a fatal error
	// occurs. The interval is the poll quantum, not a request deadline.
	Run(pollInterval time.Duration) liberr.Error

	// Shutdown stops the loop: all descriptors are unregistered, the
	// running tasks cancelled and the listener closed.
	Shutdown()

	// Host returns the bound listen host.
	Host() string

	// Port returns the bound listen port.
	Port() int
}

// New opens the listening endpoint (non-blocking, SO_REUSEADDR,
// registered edge-triggered for readable readiness) and returns the
// reactor driving it.
func New(ctx context.Context, host string, port, backlog int, hdl ConnHandler, log liblog.Logger) (Reactor, liberr.Error) {
	return newReactor(ctx, host, port, backlog, hdl, log)
}
