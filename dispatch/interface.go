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

// Package dispatch converts a normalized request path into a handler
// invocation: handler cache, static cache, directory redirect, CGI,
// template sibling, handler module, static file, then the not-found
// fallback. Successful loads are published into the caches before the
// handler runs.
package dispatch

import (
	libcfg "github.com/nabbar/litefs/config"
	libfil "github.com/nabbar/litefs/litefile"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"
	librsp "github.com/nabbar/litefs/response"
	libtrc "github.com/nabbar/litefs/treecache"
)

// ScriptSuffixes are the extensions never served as static content.
var ScriptSuffixes = map[string]bool{
	".py":   true,
	".pyc":  true,
	".pyo":  true,
	".so":   true,
	".mako": true,
}

// CGISuffixes are the extensions eligible for CGI execution under the
// configured CGI directory.
var CGISuffixes = map[string]bool{
	".pl":  true,
	".py":  true,
	".pyc": true,
	".pyo": true,
	".php": true,
}

// TemplateSuffix is the template sibling extension.
const TemplateSuffix = ".mako"

// PluginSuffix is the handler module extension.
const PluginSuffix = ".so"

// Dispatcher resolves paths against the two caches and the loaders.
type Dispatcher interface {
	// Serve runs the ordered lookup for the request bound to the
	// response and emits the result. It never returns before a
	// response has been attempted; handler failures surface as 500.
	Serve(rsp *librsp.Response)

	// Handlers returns the handler cache.
	Handlers() libtrc.TreeCache[libhdl.Handler]

	// Files returns the static cache.
	Files() libtrc.TreeCache[*libfil.LiteFile]

	// Registry returns the capability table for registered handlers.
	Registry() libhdl.Registry
}

// New returns a Dispatcher over the given configuration, caches and
// registry.
func New(cfg *libcfg.Config, caches libtrc.TreeCache[libhdl.Handler], files libtrc.TreeCache[*libfil.LiteFile], reg libhdl.Registry, log liblog.Logger) Dispatcher {
	return &dsp{
		cfg: cfg,
		chs: caches,
		fls: files,
		reg: reg,
		log: log,
	}
}
