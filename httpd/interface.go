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

// Package httpd wires the serving stack together: the reactor, the
// per-connection task (parse, session acquire, dispatch, flush), the
// two caches, the session store and the document-root watcher.
package httpd

import (
	"context"
	"time"

	liberr "github.com/nabbar/litefs/errors"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"

	libcfg "github.com/nabbar/litefs/config"
)

// Litefs is the assembled server.
type Litefs interface {
	// Register binds a handler into the capability table before or
	// while the server runs.
	Register(path string, h libhdl.Handler)

	// Run starts the document-root watcher and drives the reactor
	// until Shutdown. The interval is the reactor poll quantum.
	Run(pollInterval time.Duration) liberr.Error

	// Shutdown stops the reactor loop and the watcher.
	Shutdown()

	// IsRunning reports whether the reactor loop is active.
	IsRunning() bool

	// Host returns the bound listen host.
	Host() string

	// Port returns the bound listen port.
	Port() int
}

// New binds the listening endpoint and assembles the server for the
// given configuration.
func New(ctx context.Context, cfg *libcfg.Config, log liblog.Logger) (Litefs, liberr.Error) {
	return newLitefs(ctx, cfg, log)
}
