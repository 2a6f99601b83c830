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

// Package sockio provides a line-and-length-oriented buffered stream
// over a non-blocking socket. When the socket would block, the stream
// arms the owning connection's waker on the reactor and suspends the
// calling task until the reactor signals readiness.
//
// Only EAGAIN/EWOULDBLOCK is treated as a retriable would-block signal;
// every other socket error propagates to the caller.
package sockio

import (
	"context"
	"io"

	liberr "github.com/nabbar/litefs/errors"
)

// DefaultBufferSize is the size of the read and write buffers.
const DefaultBufferSize = 8 * 1024

// Poller arms readiness wakers for a descriptor. The reactor is the
// only implementation; when both directions end up registered, the
// implementation folds them into a single kernel modification.
type Poller interface {
	// Wait blocks the calling task until the descriptor is ready for
	// the requested direction or the context is cancelled.
	Wait(ctx context.Context, fd int, write bool) error
}

// Stream is the buffered byte stream over one connection.
type Stream interface {
	io.Reader
	io.Writer

	// Fd returns the underlying descriptor.
	Fd() int

	// RemoteHost returns the peer address without port.
	RemoteHost() string

	// RemotePort returns the peer port.
	RemotePort() int

	// ReadLine reads up to and including the next LF, never returning
	// more than max bytes. A partial line is returned when max is
	// reached before a LF.
	ReadLine(max int) ([]byte, liberr.Error)

	// ReadExact reads exactly n bytes.
	ReadExact(n int) ([]byte, liberr.Error)

	// Flush writes out any buffered output, writing until the socket
	// would block and suspending until it drains.
	Flush() liberr.Error

	// Close flushes nothing: it shuts the socket down both ways
	// (ignoring not-connected) then closes the descriptor.
	Close() error
}

// New returns a Stream over the given non-blocking descriptor. The
// context bounds every suspension; the poller must be the reactor
// owning the descriptor.
func New(ctx context.Context, fd int, host string, port int, p Poller) Stream {
	return &sio{
		x:  ctx,
		fd: fd,
		h:  host,
		o:  port,
		p:  p,
		rb: make([]byte, DefaultBufferSize),
		wb: make([]byte, 0, DefaultBufferSize),
	}
}
