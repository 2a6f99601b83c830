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

package session

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"

	liberr "github.com/nabbar/litefs/errors"
	libmem "github.com/nabbar/litefs/memcache"
	librqt "github.com/nabbar/litefs/request"
)

const tokenEntropy = 24

type ssn struct {
	m sync.Mutex
	i string
	d map[string]interface{}
}

func (o *ssn) ID() string {
	return o.i
}

func (o *ssn) Get(key string) (interface{}, bool) {
	o.m.Lock()
	defer o.m.Unlock()

	v, ok := o.d[key]
	return v, ok
}

func (o *ssn) Set(key string, val interface{}) {
	o.m.Lock()
	defer o.m.Unlock()

	o.d[key] = val
}

func (o *ssn) Delete(key string) {
	o.m.Lock()
	defer o.m.Unlock()

	delete(o.d, key)
}

type mgr struct {
	s libmem.MemoryCache[string, Session]
	c string
}

func (o *mgr) CookieName() string {
	return o.c
}

func (o *mgr) Acquire(env librqt.Env) (Session, bool, liberr.Error) {
	if sid := o.cookieValue(env.Get("HTTP_COOKIE")); sid != "" {
		if s, ok := o.s.Get(sid); ok {
			return s, false, nil
		}
	}

	sid, err := o.newSessionID()
	if err != nil {
		return nil, false, err
	}

	s := &ssn{
		i: sid,
		d: make(map[string]interface{}),
	}

	o.s.Put(sid, s)

	return s, true, nil
}

// cookieValue extracts the session cookie value from the raw cookie
// header.
func (o *mgr) cookieValue(raw string) string {
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == o.c {
			return strings.Trim(v, "\"")
		}
	}

	return ""
}

// newSessionID mints a fresh identifier: the digest of 24 random bytes
// concatenated with a high-resolution timestamp, re-drawn on the
// unlikely collision.
func (o *mgr) newSessionID() (string, liberr.Error) {
	for {
		b, e := uuid.GenerateRandomBytes(tokenEntropy)
		if e != nil {
			return "", ErrorEntropy.Error(e)
		}

		token := append(b, []byte(strconv.FormatInt(time.Now().UnixNano(), 10))...)
		sum := sha1.Sum(token)
		sid := hex.EncodeToString(sum[:])

		if _, ok := o.s.Get(sid); !ok {
			return sid, nil
		}
	}
}
