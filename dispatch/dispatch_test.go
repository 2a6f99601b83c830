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

package dispatch_test

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	libcfg "github.com/nabbar/litefs/config"
	liberr "github.com/nabbar/litefs/errors"
	libfil "github.com/nabbar/litefs/litefile"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"
	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"
	libtrc "github.com/nabbar/litefs/treecache"

	. "github.com/nabbar/litefs/dispatch"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var etagPattern = regexp.MustCompile(`Etag: ([0-9a-f]{40})`)

type fixture struct {
	cfg *libcfg.Config
	chs libtrc.TreeCache[libhdl.Handler]
	fls libtrc.TreeCache[*libfil.LiteFile]
	reg libhdl.Registry
	dsp Dispatcher
}

func newFixture(files map[string]string) *fixture {
	root := GinkgoT().TempDir()

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		Expect(os.MkdirAll(filepath.Dir(p), 0755)).To(Succeed())
		Expect(os.WriteFile(p, []byte(content), 0644)).To(Succeed())
	}

	abs, e := filepath.Abs(root)
	Expect(e).ToNot(HaveOccurred())

	cfg := &libcfg.Config{
		Host:        "localhost",
		Port:        9090,
		WebRoot:     abs,
		NotFound:    "not_found",
		DefaultPage: "index.html",
		CGIDir:      "/cgi-bin",
		Listen:      128,
	}

	log, err := liblog.New(liblog.Options{Level: liblog.NilLevel})
	Expect(err).To(BeNil())

	f := &fixture{
		cfg: cfg,
		chs: libtrc.New[libhdl.Handler](0, 0),
		fls: libtrc.New[*libfil.LiteFile](0, 0),
		reg: libhdl.NewRegistry(),
	}

	f.dsp = New(cfg, f.chs, f.fls, f.reg, log)

	return f
}

func (f *fixture) serve(pathInfo string, env map[string]string) string {
	var buf bytes.Buffer

	e := librqt.Env{
		"PATH_INFO":       pathInfo,
		"HTTP_HOST":       "localhost:9090",
		"REQUEST_METHOD":  "GET",
		"SERVER_PROTOCOL": "HTTP/1.1",
	}
	for k, v := range env {
		e[k] = v
	}

	req := &librqt.Request{Env: e, Form: make(librqt.Form), Posts: make(map[string]string)}
	rsp := librsp.New(&buf, req, nil, false, "litefs.sid", false)

	f.dsp.Serve(rsp)

	return buf.String()
}

func statusOf(raw string) string {
	line, _, _ := strings.Cut(raw, "\r\n")
	return line
}

var _ = Describe("Dispatch", func() {
	It("serves the default page for the root path", func() {
		f := newFixture(map[string]string{"index.html": "<h1>hi</h1>"})

		out := f.serve("/", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 200 OK"))
		Expect(out).To(ContainSubstring("Content-Type: text/html;charset=utf-8"))
		Expect(out).To(ContainSubstring("Content-Length: 11"))
		Expect(out).To(HaveSuffix("<h1>hi</h1>"))
	})

	It("redirects a path with doubled slashes to the normalized form", func() {
		f := newFixture(nil)

		out := f.serve("//foo", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 302 Found"))
		Expect(out).To(ContainSubstring("Location: http://localhost:9090/foo"))
	})

	It("redirects a dot-leading segment to the normalized form", func() {
		f := newFixture(nil)

		out := f.serve("/../secret", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 302 Found"))
	})

	It("dispatching the normalized form of a path reaches the terminal status", func() {
		f := newFixture(map[string]string{"foo": "bar"})

		first := f.serve("//foo", nil)
		Expect(statusOf(first)).To(Equal("HTTP/1.1 302 Found"))

		second := f.serve("/foo", nil)
		Expect(statusOf(second)).To(Equal("HTTP/1.1 200 OK"))
	})

	It("returns the synthesized 404 when no not-found page exists", func() {
		f := newFixture(nil)

		out := f.serve("/missing", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 404 Not Found"))
		Expect(out).To(ContainSubstring("HTTP status 404"))
	})

	It("serves the configured not-found page with status 404", func() {
		f := newFixture(map[string]string{"not_found": "<h1>nothing here</h1>"})

		out := f.serve("/missing", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 404 Not Found"))
		Expect(out).To(HaveSuffix("<h1>nothing here</h1>"))
	})

	It("redirects a directory path to its slash form", func() {
		f := newFixture(map[string]string{"sub/index.html": "x"})

		out := f.serve("/sub", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 302 Found"))
		Expect(out).To(ContainSubstring("Location: http://localhost:9090/sub/"))
	})

	It("publishes a served static file into the cache", func() {
		f := newFixture(map[string]string{"a.png": "png-bytes"})

		first := f.serve("/a.png", nil)
		Expect(statusOf(first)).To(Equal("HTTP/1.1 200 OK"))

		_, ok := f.fls.Get("/a.png")
		Expect(ok).To(BeTrue())

		second := f.serve("/a.png", nil)
		Expect(statusOf(second)).To(Equal("HTTP/1.1 200 OK"))
		Expect(second).To(HaveSuffix("png-bytes"))

		etag := etagPattern.FindStringSubmatch(first)[1]

		third := f.serve("/a.png", map[string]string{"HTTP_IF_NONE_MATCH": etag})
		Expect(statusOf(third)).To(Equal("HTTP/1.1 304 Not Modified"))
	})

	It("never serves script-reserved suffixes as static content", func() {
		f := newFixture(map[string]string{"secret.py": "password"})

		out := f.serve("/secret.py", nil)

		Expect(statusOf(out)).To(Equal("HTTP/1.1 404 Not Found"))
		Expect(out).ToNot(ContainSubstring("password"))
	})

	It("a cached handler wins over everything else", func() {
		f := newFixture(map[string]string{"page": "static"})

		f.chs.Put("/page", libhdl.NewStatusHandler(200, "text/plain;charset=utf-8", []byte("cached")))

		out := f.serve("/page", nil)
		Expect(out).To(HaveSuffix("cached"))
	})

	It("a registered handler is found and published into the cache", func() {
		f := newFixture(nil)

		f.reg.Register("/hello", libhdl.NewStatusHandler(200, "text/plain;charset=utf-8", []byte("hi there")))

		out := f.serve("/hello", nil)
		Expect(statusOf(out)).To(Equal("HTTP/1.1 200 OK"))
		Expect(out).To(HaveSuffix("hi there"))

		_, ok := f.chs.Get("/hello")
		Expect(ok).To(BeTrue())
	})

	It("a template sibling is rendered and cached under the stripped path", func() {
		f := newFixture(map[string]string{
			"greet.mako": "<p>hello {{ .Form.Get \"who\" }}</p>",
		})

		var buf bytes.Buffer
		env := librqt.Env{
			"PATH_INFO":       "/greet",
			"HTTP_HOST":       "localhost:9090",
			"REQUEST_METHOD":  "GET",
			"SERVER_PROTOCOL": "HTTP/1.1",
		}
		form := librqt.Form{"who": []string{"tom"}}
		req := &librqt.Request{Env: env, Form: form, Posts: make(map[string]string)}
		rsp := librsp.New(&buf, req, nil, false, "litefs.sid", false)

		f.dsp.Serve(rsp)

		out := buf.String()
		Expect(statusOf(out)).To(Equal("HTTP/1.1 200 OK"))
		Expect(out).To(ContainSubstring("<p>hello tom</p>"))

		_, ok := f.chs.Get("/greet")
		Expect(ok).To(BeTrue())
	})

	It("a failing handler is substituted with a 500", func() {
		f := newFixture(nil)

		f.chs.Put("/boom", libhdl.HandlerFunc(func(rsp *librsp.Response) liberr.Error {
			panic("exploded")
		}))

		out := f.serve("/boom", nil)
		Expect(statusOf(out)).To(Equal("HTTP/1.1 500 Internal Server Error"))
	})
})
