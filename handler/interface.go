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

// Package handler defines the polymorphic handler contract shared by
// every dynamic content producer (registered handlers, loaded plugins,
// templates, CGI runners) and the capability table resolving request
// paths to registered handlers.
package handler

import (
	"net/http"
	"strconv"
	"sync"

	liberr "github.com/nabbar/litefs/errors"
	librsp "github.com/nabbar/litefs/response"
)

// Handler serves one request by emitting a full response.
type Handler interface {
	Handle(rsp *librsp.Response) liberr.Error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(rsp *librsp.Response) liberr.Error

func (f HandlerFunc) Handle(rsp *librsp.Response) liberr.Error {
	return f(rsp)
}

// Registry is the capability table mapping request paths to handlers
// registered at startup. It is consulted by the dispatcher before the
// plugin loader.
type Registry interface {
	// Register binds the handler to the given request path.
	Register(path string, h Handler)

	// Lookup resolves the given request path.
	Lookup(path string) (Handler, bool)

	// Paths returns the registered paths.
	Paths() []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() Registry {
	return &reg{
		d: make(map[string]Handler),
	}
}

type reg struct {
	m sync.RWMutex
	d map[string]Handler
}

func (o *reg) Register(path string, h Handler) {
	o.m.Lock()
	defer o.m.Unlock()

	o.d[path] = h
}

func (o *reg) Lookup(path string) (Handler, bool) {
	o.m.RLock()
	defer o.m.RUnlock()

	h, ok := o.d[path]
	return h, ok
}

func (o *reg) Paths() []string {
	o.m.RLock()
	defer o.m.RUnlock()

	res := make([]string, 0, len(o.d))
	for k := range o.d {
		res = append(res, k)
	}

	return res
}

// NewStatusHandler returns a handler emitting a fixed status. A nil
// body selects the default status body. Used for load failures and
// CGI outcomes.
func NewStatusHandler(status int, contentType string, body []byte) Handler {
	return HandlerFunc(func(rsp *librsp.Response) liberr.Error {
		var headers librsp.Headers

		if body != nil {
			if contentType == "" {
				contentType = "text/html;charset=utf-8"
			}
			headers = librsp.Headers{
				{"Content-Type", contentType},
				{"Content-Length", strconv.Itoa(len(body))},
			}
		}

		return rsp.Respond(status, headers, body)
	})
}

// NewFailureHandler returns the 500 handler for a load failure: the
// failure detail is used as body only when debug is enabled.
func NewFailureHandler(err liberr.Error) Handler {
	return HandlerFunc(func(rsp *librsp.Response) liberr.Error {
		if rsp.Debug() && err != nil {
			body := []byte(err.Error() + "\n" + err.GetTrace())
			return rsp.Respond(http.StatusInternalServerError, librsp.Headers{
				{"Content-Type", "text/plain;charset=utf-8"},
				{"Content-Length", strconv.Itoa(len(body))},
			}, body)
		}

		return rsp.Respond(http.StatusInternalServerError, nil, nil)
	})
}
