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

package treecache

import (
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
)

type tce[V any] struct {
	v V
	t time.Time
}

type trc[V any] struct {
	m sync.Mutex
	d map[string]*tce[V]
	i *btree.BTreeG[string]
	c time.Duration
	e time.Duration
	s time.Time
}

func (o *trc[V]) Put(key string, val V) {
	o.m.Lock()
	defer o.m.Unlock()

	now := time.Now()
	o.sweepLocked(now)

	if _, ok := o.d[key]; !ok {
		o.i.ReplaceOrInsert(key)
	}

	o.d[key] = &tce[V]{
		v: val,
		t: now,
	}
}

func (o *trc[V]) Get(key string) (V, bool) {
	o.m.Lock()
	defer o.m.Unlock()

	var zero V

	now := time.Now()
	o.sweepLocked(now)

	e, ok := o.d[key]
	if !ok {
		return zero, false
	}

	if now.Sub(e.t) > o.e {
		delete(o.d, key)
		o.i.Delete(key)
		return zero, false
	}

	return e.v, true
}

func (o *trc[V]) Delete(key string) {
	o.m.Lock()
	defer o.m.Unlock()

	o.sweepLocked(time.Now())

	keys := make([]string, 0)

	if _, ok := o.d[key]; ok {
		keys = append(keys, key)
	}

	pfx := key + "/"
	o.i.AscendGreaterOrEqual(pfx, func(k string) bool {
		if !strings.HasPrefix(k, pfx) {
			return false
		}
		keys = append(keys, k)
		return true
	})

	for _, k := range keys {
		delete(o.d, k)
		o.i.Delete(k)
	}
}

func (o *trc[V]) Len() int {
	o.m.Lock()
	defer o.m.Unlock()

	return len(o.d)
}

func (o *trc[V]) Sweep() {
	o.m.Lock()
	defer o.m.Unlock()

	o.expireLocked(time.Now())
}

// sweepLocked runs the lazy sweep once per clean period.
func (o *trc[V]) sweepLocked(now time.Time) {
	if now.Sub(o.s) < o.c {
		return
	}

	o.s = now
	o.expireLocked(now)
}

func (o *trc[V]) expireLocked(now time.Time) {
	for k, e := range o.d {
		if now.Sub(e.t) > o.e {
			delete(o.d, k)
			o.i.Delete(k)
		}
	}
}
