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

package httpd

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	libcfg "github.com/nabbar/litefs/config"
	libdsp "github.com/nabbar/litefs/dispatch"
	liberr "github.com/nabbar/litefs/errors"
	libfil "github.com/nabbar/litefs/litefile"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"
	libmem "github.com/nabbar/litefs/memcache"
	librct "github.com/nabbar/litefs/reactor"
	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"
	libses "github.com/nabbar/litefs/session"
	libsio "github.com/nabbar/litefs/sockio"
	libtrc "github.com/nabbar/litefs/treecache"
	libwtc "github.com/nabbar/litefs/watcher"
)

type app struct {
	cfg *libcfg.Config
	log liblog.Logger

	rct librct.Reactor
	dsp libdsp.Dispatcher
	wtc libwtc.Watcher
	ses libses.Manager

	run atomic.Bool
}

func newLitefs(ctx context.Context, cfg *libcfg.Config, log liblog.Logger) (Litefs, liberr.Error) {
	if cfg == nil || log == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	var (
		caches = libtrc.New[libhdl.Handler](0, 0)
		files  = libtrc.New[*libfil.LiteFile](0, 0)
		reg    = libhdl.NewRegistry()
	)

	store, err := libmem.New[string, libses.Session](libmem.DefaultMaxSize)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: log,
		dsp: libdsp.New(cfg, caches, files, reg, log),
		ses: libses.New(store, ""),
	}

	a.rct, err = librct.New(ctx, cfg.Host, cfg.Port, cfg.Listen, a.connTask, log)
	if err != nil {
		return nil, err
	}

	a.wtc, err = libwtc.New(cfg.WebRoot, caches, files, log)
	if err != nil {
		a.rct.Shutdown()
		return nil, err
	}

	return a, nil
}

func (a *app) Register(path string, h libhdl.Handler) {
	a.dsp.Registry().Register(path, h)
}

func (a *app) Host() string {
	return a.rct.Host()
}

func (a *app) Port() int {
	return a.rct.Port()
}

func (a *app) IsRunning() bool {
	return a.run.Load()
}

func (a *app) Run(pollInterval time.Duration) liberr.Error {
	if err := a.wtc.Start(); err != nil {
		return err
	}

	defer func() {
		if e := a.wtc.Close(); e != nil {
			a.log.LogError("watcher close", e)
		}
	}()

	a.log.Info("server is running at %s:%d", a.rct.Host(), a.rct.Port())

	a.run.Store(true)
	defer a.run.Store(false)

	return a.rct.Run(pollInterval)
}

func (a *app) Shutdown() {
	a.rct.Shutdown()
}

// connTask is the per-connection lifecycle: parse the environment,
// acquire the session, dispatch, flush, then let the reactor shut the
// socket down. Temporary upload files are released on every exit path.
func (a *app) connTask(ctx context.Context, s libsio.Stream) {
	req, err := librqt.Parse(s, a.cfg.Host, a.rct.Port(), a.cfg.DefaultPage)

	if err != nil {
		if liberr.IsCode(err, librqt.ErrorHeadersIncomplete) {
			// aborted probe, close silently
			return
		}

		a.log.LogError("request parse", err)
		a.respondBare(s, http.StatusBadRequest)
		return
	}

	defer req.Release()

	if ctx.Err() != nil {
		return
	}

	ses, fresh, serr := a.ses.Acquire(req.Env)
	if serr != nil {
		a.log.LogError("session acquire", serr)
	}

	rsp := librsp.New(s, req, ses, fresh, a.ses.CookieName(), a.cfg.Debug)

	if a.cfg.Debug {
		a.log.Debug("%s - \"%s %s %s\"",
			req.Env.Get("REMOTE_HOST"),
			req.Env.Get("REQUEST_METHOD"),
			req.Env.Get("PATH_INFO"),
			req.Env.Get("SERVER_PROTOCOL"),
		)
	}

	a.dsp.Serve(rsp)

	if ferr := s.Flush(); ferr != nil {
		a.log.LogError("response flush", ferr)
		return
	}

	a.log.Access(
		req.Env.Get("REMOTE_HOST"),
		req.Env.Get("REQUEST_METHOD"),
		req.Env.Get("PATH_INFO"),
		req.Env.Get("SERVER_PROTOCOL"),
		rsp.Status(), rsp.Size(),
	)
}

// respondBare emits a synthesized response for a request that never
// produced a usable environment.
func (a *app) respondBare(s libsio.Stream, status int) {
	req := &librqt.Request{Env: make(librqt.Env)}
	rsp := librsp.New(s, req, nil, false, a.ses.CookieName(), a.cfg.Debug)

	if err := rsp.Respond(status, nil, nil); err != nil {
		a.log.LogError("response emit", err)
		return
	}

	if err := s.Flush(); err != nil {
		a.log.LogError("response flush", err)
	}
}
