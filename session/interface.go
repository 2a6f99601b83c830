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

// Package session manages the per-client sessions kept in the bounded
// memory store. A session is identified by a 40-hex digest carried in
// the litefs.sid cookie; its lifetime is bounded by the store's LRU
// eviction.
package session

import (
	liberr "github.com/nabbar/litefs/errors"
	libmem "github.com/nabbar/litefs/memcache"
	librqt "github.com/nabbar/litefs/request"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "litefs.sid"

// Session is one client session: an identifier plus an attribute map.
// Attribute access is safe for concurrent use.
type Session interface {
	ID() string

	Get(key string) (interface{}, bool)
	Set(key string, val interface{})
	Delete(key string)
}

// Manager resolves the request's session cookie against the store,
// minting a new session when the cookie is absent or stale.
type Manager interface {
	// Acquire returns the request's session. The boolean is true when
	// the session has been newly minted during this request, in which
	// case the response must set the cookie.
	Acquire(env librqt.Env) (Session, bool, liberr.Error)

	// CookieName returns the configured session cookie name.
	CookieName() string
}

// New returns a Manager over the given store. An empty cookieName
// selects DefaultCookieName.
func New(store libmem.MemoryCache[string, Session], cookieName string) Manager {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return &mgr{
		s: store,
		c: cookieName,
	}
}
