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

package handler_test

import (
	"bytes"
	"os"
	"path/filepath"

	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"

	. "github.com/nabbar/litefs/handler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newResponse(debug bool) (*bytes.Buffer, *librsp.Response) {
	var buf bytes.Buffer

	req := &librqt.Request{
		Env:   librqt.Env{"PATH_INFO": "/t"},
		Form:  librqt.Form{"who": []string{"tom"}},
		Posts: map[string]string{"p": "v"},
	}

	return &buf, librsp.New(&buf, req, nil, false, "litefs.sid", debug)
}

var _ = Describe("Handler", func() {
	Context("Registry", func() {
		It("resolves registered paths only", func() {
			r := NewRegistry()

			r.Register("/a", NewStatusHandler(200, "", nil))

			_, ok := r.Lookup("/a")
			Expect(ok).To(BeTrue())
			_, ok = r.Lookup("/b")
			Expect(ok).To(BeFalse())
			Expect(r.Paths()).To(ConsistOf("/a"))
		})

		It("re-registering a path replaces the handler", func() {
			r := NewRegistry()

			r.Register("/a", NewStatusHandler(200, "", nil))
			r.Register("/a", NewStatusHandler(404, "", nil))

			h, ok := r.Lookup("/a")
			Expect(ok).To(BeTrue())

			buf, rsp := newResponse(false)
			Expect(h.Handle(rsp)).To(BeNil())
			Expect(buf.String()).To(ContainSubstring("404"))
		})
	})

	Context("StatusHandler", func() {
		It("emits the fixed body with its content type", func() {
			h := NewStatusHandler(200, "text/plain;charset=utf-8", []byte("fixed"))

			buf, rsp := newResponse(false)
			Expect(h.Handle(rsp)).To(BeNil())

			Expect(buf.String()).To(ContainSubstring("HTTP/1.1 200 OK"))
			Expect(buf.String()).To(ContainSubstring("Content-Type: text/plain;charset=utf-8"))
			Expect(buf.String()).To(HaveSuffix("fixed"))
		})

		It("a nil body falls back to the default status body", func() {
			h := NewStatusHandler(404, "", nil)

			buf, rsp := newResponse(false)
			Expect(h.Handle(rsp)).To(BeNil())
			Expect(buf.String()).To(ContainSubstring("HTTP status 404"))
		})
	})

	Context("FailureHandler", func() {
		It("hides the failure detail in production", func() {
			h := NewFailureHandler(ErrorTemplateParse.Error(nil))

			buf, rsp := newResponse(false)
			Expect(h.Handle(rsp)).To(BeNil())

			Expect(buf.String()).To(ContainSubstring("HTTP/1.1 500 Internal Server Error"))
			Expect(buf.String()).ToNot(ContainSubstring("template"))
		})

		It("exposes the failure detail in debug", func() {
			h := NewFailureHandler(ErrorTemplateParse.Error(nil))

			buf, rsp := newResponse(true)
			Expect(h.Handle(rsp)).To(BeNil())

			Expect(buf.String()).To(ContainSubstring("HTTP/1.1 500 Internal Server Error"))
			Expect(buf.String()).To(ContainSubstring("cannot parse template file"))
		})
	})

	Context("Template", func() {
		It("renders with environ, form and sprig functions", func() {
			root := GinkgoT().TempDir()
			Expect(os.WriteFile(
				filepath.Join(root, "t.mako"),
				[]byte("<p>{{ upper (.Form.Get \"who\") }} at {{ .Env.Get \"PATH_INFO\" }}</p>"),
				0644,
			)).To(Succeed())

			h, err := LoadTemplate(root, "t.mako")
			Expect(err).To(BeNil())

			buf, rsp := newResponse(false)
			Expect(h.Handle(rsp)).To(BeNil())

			Expect(buf.String()).To(ContainSubstring("HTTP/1.1 200 OK"))
			Expect(buf.String()).To(ContainSubstring("<p>TOM at /t</p>"))
		})

		It("a parse failure is returned to the loader", func() {
			root := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(root, "bad.mako"), []byte("{{ unclosed"), 0644)).To(Succeed())

			_, err := LoadTemplate(root, "bad.mako")
			Expect(err).ToNot(BeNil())
		})

		It("a missing template file fails to load", func() {
			_, err := LoadTemplate(GinkgoT().TempDir(), "absent.mako")
			Expect(err).ToNot(BeNil())
		})
	})
})
