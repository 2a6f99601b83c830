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

package dispatch

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	libcfg "github.com/nabbar/litefs/config"
	libcgi "github.com/nabbar/litefs/cgi"
	liberr "github.com/nabbar/litefs/errors"
	libfil "github.com/nabbar/litefs/litefile"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"
	librsp "github.com/nabbar/litefs/response"
	libtrc "github.com/nabbar/litefs/treecache"
)

var (
	doubleSlash = regexp.MustCompile(`/{2,}`)
	leadingDots = regexp.MustCompile(`/\.+`)
)

type dsp struct {
	cfg *libcfg.Config
	chs libtrc.TreeCache[libhdl.Handler]
	fls libtrc.TreeCache[*libfil.LiteFile]
	reg libhdl.Registry
	log liblog.Logger
}

func (d *dsp) Handlers() libtrc.TreeCache[libhdl.Handler] {
	return d.chs
}

func (d *dsp) Files() libtrc.TreeCache[*libfil.LiteFile] {
	return d.fls
}

func (d *dsp) Registry() libhdl.Registry {
	return d.reg
}

func (d *dsp) Serve(rsp *librsp.Response) {
	pathInfo := rsp.Env().Get("PATH_INFO")

	p := leadingDots.ReplaceAllString(pathInfo, "/")
	p = doubleSlash.ReplaceAllString(p, "/")

	if p != pathInfo {
		d.checkEmit(rsp, rsp.Redirect(p))
		return
	}

	base, name := path.Split(p)
	if name == "" {
		name = d.cfg.DefaultPage
	}
	p = path.Join(base, name)

	if h, ok := d.chs.Get(p); ok {
		d.invoke(rsp, h)
		return
	}

	if f, ok := d.fls.Get(p); ok {
		d.invoke(rsp, f)
		return
	}

	real, err := d.resolve(p)
	if err != nil {
		d.log.LogError("path resolve", err)
		d.serveNotFound(rsp)
		return
	}

	if st, e := os.Stat(real); e == nil && st.IsDir() {
		d.checkEmit(rsp, rsp.Redirect(p+"/"))
		return
	}

	if h := d.loadScript(p, base, name, real); h != nil {
		d.invoke(rsp, h)
		return
	}

	if lf, err := d.loadStatic(name, real); err != nil {
		d.log.LogError("static load", err)
		d.serveNotFound(rsp)
		return
	} else if lf != nil {
		d.fls.Put(p, lf)
		d.invoke(rsp, lf)
		return
	}

	d.serveNotFound(rsp)
}

// resolve maps the request path to the filesystem under the document
// root, rejecting any resolved path escaping it.
func (d *dsp) resolve(p string) (string, liberr.Error) {
	real := filepath.Join(d.cfg.WebRoot, filepath.FromSlash(strings.TrimPrefix(p, "/")))

	real, e := filepath.Abs(real)
	if e != nil {
		return "", ErrorPathResolve.Error(e)
	}

	if real != d.cfg.WebRoot && !strings.HasPrefix(real, d.cfg.WebRoot+string(filepath.Separator)) {
		return "", ErrorPathTraversal.Error(nil)
	}

	return real, nil
}

// loadScript tries, in order, the CGI runner, the template sibling,
// the registered handler table and the handler plugin. A nil return
// falls through to the static loader. Loaded handlers are published
// into the handler cache before being returned; the CGI handler never
// is, so its script runs again on every request.
func (d *dsp) loadScript(p, base, name, real string) libhdl.Handler {
	ext := path.Ext(name)

	if CGISuffixes[ext] && strings.HasPrefix(base, d.cfg.CGIDir) {
		return d.loadCGI(p, ext, real)
	}

	if _, e := os.Stat(real + TemplateSuffix); e == nil {
		h, err := libhdl.LoadTemplate(d.cfg.WebRoot, strings.TrimPrefix(p, "/")+TemplateSuffix)
		if err != nil {
			d.log.LogError("template load", err)
			h = libhdl.NewFailureHandler(err)
		}

		d.chs.Put(strings.TrimSuffix(p, TemplateSuffix), h)
		return h
	}

	if h, ok := d.reg.Lookup(p); ok {
		d.chs.Put(p, h)
		return h
	}

	if _, e := os.Stat(real + PluginSuffix); e == nil {
		h, err := libhdl.LoadPlugin(real + PluginSuffix)
		if err != nil {
			d.log.LogError("plugin load", err)
			h = libhdl.NewFailureHandler(err)
		}

		d.chs.Put(p, h)
		return h
	}

	return nil
}

// loadCGI wraps the CGI invocation so the script is re-run per request.
func (d *dsp) loadCGI(p, ext, real string) libhdl.Handler {
	if st, e := os.Stat(real); e != nil || st.IsDir() {
		return libhdl.NewStatusHandler(http.StatusNotFound, "", nil)
	}

	var (
		runner    = libcgi.Runners[ext]
		scriptURI = strings.TrimPrefix(p, "/")
		webroot   = d.cfg.WebRoot
		log       = d.log
	)

	return libhdl.HandlerFunc(func(rsp *librsp.Response) liberr.Error {
		return libcgi.Run(runner, scriptURI, webroot, log).Handle(rsp)
	})
}

// loadStatic builds the LiteFile for the resolved path, refusing the
// script-reserved extensions. A nil, nil return means not found.
func (d *dsp) loadStatic(name, real string) (*libfil.LiteFile, liberr.Error) {
	if ScriptSuffixes[path.Ext(name)] {
		return nil, nil
	}

	if st, e := os.Stat(real); e != nil || st.IsDir() {
		return nil, nil
	}

	return libfil.Load(real, name)
}

// serveNotFound serves the configured not-found page with status 404
// when it resolves, else the synthesized 404.
func (d *dsp) serveNotFound(rsp *librsp.Response) {
	nf := d.cfg.NotFound

	if nf != "" {
		p := "/" + strings.TrimPrefix(nf, "/")
		base, name := path.Split(p)
		if name == "" {
			name = "404"
		}
		p = path.Join(base, name)

		var lf *libfil.LiteFile

		if f, ok := d.fls.Get(p); ok {
			lf = f
		} else if real, err := d.resolve(p); err == nil {
			if f, err := d.loadStatic(name, real); err == nil && f != nil {
				d.fls.Put(p, f)
				lf = f
			}
		}

		if lf != nil {
			d.checkEmit(rsp, lf.ServeAs(rsp, http.StatusNotFound))
			return
		}
	}

	d.checkEmit(rsp, rsp.Respond(http.StatusNotFound, nil, nil))
}

// invoke runs the handler under the catch-all: any failure or panic is
// logged and substituted with a 500 when the head is still unsent.
func (d *dsp) invoke(rsp *librsp.Response, h libhdl.Handler) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("handler panic: %v", rec)
			d.serveFailure(rsp, ErrorHandlerFailure.Error(nil))
		}
	}()

	if err := h.Handle(rsp); err != nil {
		d.log.LogError("handler", err)
		d.serveFailure(rsp, ErrorHandlerFailure.Error(err))
	}
}

func (d *dsp) serveFailure(rsp *librsp.Response, err liberr.Error) {
	if rsp.HeadersSent() {
		return
	}

	d.checkEmit(rsp, libhdl.NewFailureHandler(err).Handle(rsp))
}

func (d *dsp) checkEmit(rsp *librsp.Response, err liberr.Error) {
	if err != nil {
		d.log.LogError("response emit", err)
	}
}
