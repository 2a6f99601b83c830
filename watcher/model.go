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

package watcher

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	liberr "github.com/nabbar/litefs/errors"
	liblog "github.com/nabbar/litefs/logger"
)

type wtc struct {
	w *fsnotify.Watcher

	root string
	chs  CacheEvictor
	fls  CacheEvictor
	log  liblog.Logger

	done chan struct{}
}

func newWatcher(webroot string, caches, files CacheEvictor, log liblog.Logger) (Watcher, liberr.Error) {
	w, e := fsnotify.NewWatcher()
	if e != nil {
		return nil, ErrorWatchCreate.Error(e)
	}

	return &wtc{
		w:    w,
		root: strings.TrimRight(webroot, "/"),
		chs:  caches,
		fls:  files,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

func (o *wtc) Start() liberr.Error {
	e := filepath.WalkDir(o.root, func(p string, d fs.DirEntry, e error) error {
		if e != nil {
			return e
		}
		if d.IsDir() {
			return o.w.Add(p)
		}
		return nil
	})

	if e != nil {
		return ErrorWatchRegister.Error(e)
	}

	go o.loop()

	return nil
}

func (o *wtc) Close() error {
	close(o.done)
	return o.w.Close()
}

func (o *wtc) loop() {
	for {
		select {
		case <-o.done:
			return

		case evt, ok := <-o.w.Events:
			if !ok {
				return
			}
			o.handle(evt)

		case e, ok := <-o.w.Errors:
			if !ok {
				return
			}
			o.log.LogError("watch", e)
		}
	}
}

// handle translates one filesystem event into cache eviction. Move
// events surface as Rename on the source and Create on the
// destination, so both ends are evicted through the same path.
func (o *wtc) handle(evt fsnotify.Event) {
	name := filepath.ToSlash(filepath.Clean(evt.Name))

	if name == o.root {
		return
	}

	if !strings.HasPrefix(name, o.root+"/") {
		return
	}

	o.evict(name)

	// a created directory joins the recursive watch
	if evt.Has(fsnotify.Create) {
		if st, e := os.Stat(evt.Name); e == nil && st.IsDir() {
			if e = o.w.Add(evt.Name); e != nil {
				o.log.LogError("watch add", e)
			}
		}
	}
}

// evict removes the web-rooted path from both caches, plus its
// suffix-stripped form for script and template suffixes.
func (o *wtc) evict(name string) {
	p := "/" + strings.Trim(strings.TrimPrefix(name, o.root), "/")

	o.chs.Delete(p)
	o.fls.Delete(p)

	if ext := path.Ext(p); scriptSuffixes[ext] {
		base := strings.TrimSuffix(p, ext)
		o.chs.Delete(base)
		o.fls.Delete(base)
	}
}
