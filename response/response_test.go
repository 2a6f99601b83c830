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

package response_test

import (
	"bytes"
	"strings"

	librqt "github.com/nabbar/litefs/request"

	. "github.com/nabbar/litefs/response"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newRequest(env map[string]string) *librqt.Request {
	e := make(librqt.Env)
	for k, v := range env {
		e[k] = v
	}

	return &librqt.Request{
		Env:   e,
		Form:  make(librqt.Form),
		Posts: make(map[string]string),
	}
}

// stubSession carries only the identifier the cookie needs.
type stubSession string

func (s stubSession) ID() string                        { return string(s) }
func (s stubSession) Get(string) (interface{}, bool)    { return nil, false }
func (s stubSession) Set(string, interface{})           {}
func (s stubSession) Delete(string)                     {}

var _ = Describe("Response", func() {
	It("emits the head in order: status, Server, Connection, headers", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), nil, false, "litefs.sid", false)

		err := rsp.Respond(200, Headers{
			{"Content-Type", "text/html;charset=utf-8"},
			{"Content-Length", "2"},
		}, []byte("ok"))
		Expect(err).To(BeNil())

		lines := strings.Split(buf.String(), "\r\n")
		Expect(lines[0]).To(Equal("HTTP/1.1 200 OK"))
		Expect(lines[1]).To(HavePrefix("Server: litefs/"))
		Expect(lines[2]).To(Equal("Connection: close"))
		Expect(lines[3]).To(Equal("Content-Type: text/html;charset=utf-8"))
		Expect(lines[4]).To(Equal("Content-Length: 2"))
		Expect(lines[5]).To(Equal(""))
		Expect(lines[6]).To(Equal("ok"))

		Expect(rsp.Status()).To(Equal(200))
		Expect(rsp.Size()).To(Equal(2))
	})

	It("substitutes the default status body", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), nil, false, "litefs.sid", false)

		Expect(rsp.Respond(404, nil, nil)).To(BeNil())

		out := buf.String()
		Expect(out).To(ContainSubstring("HTTP/1.1 404 Not Found"))
		Expect(out).To(ContainSubstring("HTTP status 404"))
		Expect(out).To(ContainSubstring("Content-Type: text/html;charset=utf-8"))
	})

	It("304 carries no body and no content length", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), nil, false, "litefs.sid", false)

		Expect(rsp.Respond(304, nil, nil)).To(BeNil())

		out := buf.String()
		Expect(out).To(ContainSubstring("HTTP/1.1 304 Not Modified"))
		Expect(out).ToNot(ContainSubstring("Content-Length"))
		Expect(out).To(HaveSuffix("\r\n\r\n"))
	})

	It("redirect points at the request host", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(map[string]string{"HTTP_HOST": "localhost:9090"}), nil, false, "litefs.sid", false)

		Expect(rsp.Redirect("/foo")).To(BeNil())

		out := buf.String()
		Expect(out).To(ContainSubstring("HTTP/1.1 302 Found"))
		Expect(out).To(ContainSubstring("Location: http://localhost:9090/foo"))
	})

	It("a freshly minted session sets the cookie", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), stubSession("a1b2c3"), true, "litefs.sid", false)

		Expect(rsp.Respond(200, nil, nil)).To(BeNil())
		Expect(buf.String()).To(ContainSubstring("Set-Cookie: litefs.sid=a1b2c3; Path=/"))
	})

	It("a reused session sets no cookie", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), stubSession("a1b2c3"), false, "litefs.sid", false)

		Expect(rsp.Respond(200, nil, nil)).To(BeNil())
		Expect(buf.String()).ToNot(ContainSubstring("Set-Cookie"))
	})

	It("double emission of the head is refused", func() {
		var buf bytes.Buffer

		rsp := New(&buf, newRequest(nil), nil, false, "litefs.sid", false)

		Expect(rsp.StartResponse(200, nil)).To(BeNil())
		Expect(rsp.StartResponse(200, nil)).ToNot(BeNil())
		Expect(rsp.HeadersSent()).To(BeTrue())
	})
})
