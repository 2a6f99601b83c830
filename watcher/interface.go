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

// Package watcher consumes filesystem change notifications rooted at
// the document root and evicts the affected entries from both the
// handler and the static caches. Paths carrying a script or template
// suffix additionally evict their suffix-stripped form, since a cached
// handler is keyed under the logical request path.
package watcher

import (
	liberr "github.com/nabbar/litefs/errors"
	liblog "github.com/nabbar/litefs/logger"
)

// scriptSuffixes are the extensions whose change also invalidates the
// suffix-stripped request path.
var scriptSuffixes = map[string]bool{
	".py":   true,
	".pyc":  true,
	".pyo":  true,
	".so":   true,
	".mako": true,
}

// CacheEvictor is the slice of the cache surface the watcher needs;
// both caches satisfy it.
type CacheEvictor interface {
	Delete(key string)
}

// Watcher is the running directory watch.
type Watcher interface {
	// Start walks the document root, registers the recursive watch and
	// begins consuming events.
	Start() liberr.Error

	// Close stops the watch and releases the notification descriptor.
	Close() error
}

// New returns a Watcher evicting from the given caches on any change
// below the document root. Events for the root itself are ignored.
func New(webroot string, caches, files CacheEvictor, log liblog.Logger) (Watcher, liberr.Error) {
	return newWatcher(webroot, caches, files, log)
}
