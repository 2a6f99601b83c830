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

package handler

import (
	"plugin"

	liberr "github.com/nabbar/litefs/errors"
	librsp "github.com/nabbar/litefs/response"
)

// PluginSymbol is the symbol looked up in a handler plugin.
const PluginSymbol = "Handler"

// LoadPlugin loads a handler module from a .so plugin file. The plugin
// must export a Handler symbol that is either a Handler value or a
// func(*response.Response) errors.Error.
//
// The Go runtime never unloads a plugin: eviction of a cached plugin
// handler makes the path reloadable, but a changed .so only takes
// effect on process restart.
func LoadPlugin(path string) (Handler, liberr.Error) {
	p, e := plugin.Open(path)
	if e != nil {
		return nil, ErrorPluginOpen.Error(e)
	}

	sym, e := p.Lookup(PluginSymbol)
	if e != nil {
		return nil, ErrorPluginSymbol.Error(e)
	}

	switch h := sym.(type) {
	case Handler:
		return h, nil
	case *Handler:
		if *h != nil {
			return *h, nil
		}
	case func(*librsp.Response) liberr.Error:
		return HandlerFunc(h), nil
	case *func(*librsp.Response) liberr.Error:
		if *h != nil {
			return HandlerFunc(*h), nil
		}
	}

	return nil, ErrorPluginSymbol.Error(nil)
}
