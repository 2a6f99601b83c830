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

// Package response builds HTTP/1.1 responses onto the connection's
// buffered stream: status line, ordered headers (Server first, then
// Connection, Content-Type and handler headers, then the session
// cookie for a freshly minted session), blank line, body.
//
// Every connection serves exactly one response; Connection: close is
// sent unconditionally.
package response

import (
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"

	liberr "github.com/nabbar/litefs/errors"
	librqt "github.com/nabbar/litefs/request"
	libses "github.com/nabbar/litefs/session"
)

// Version is the served software version.
const Version = "0.1.0-dev"

var serverInfo = fmt.Sprintf("litefs/%s %s", Version, runtime.Version())

// Headers is an ordered header list.
type Headers [][2]string

// Response drives the emission of one response.
type Response struct {
	w io.Writer

	req *librqt.Request
	ses libses.Session

	fresh  bool
	cookie string
	debug  bool

	sent   bool
	status int
	size   int
}

// New returns a Response bound to the given request and stream. The
// fresh flag marks a session minted during this request, triggering
// Set-Cookie emission.
func New(w io.Writer, req *librqt.Request, ses libses.Session, fresh bool, cookieName string, debug bool) *Response {
	return &Response{
		w:      w,
		req:    req,
		ses:    ses,
		fresh:  fresh,
		cookie: cookieName,
		debug:  debug,
	}
}

func (o *Response) Request() *librqt.Request {
	return o.req
}

func (o *Response) Env() librqt.Env {
	return o.req.Env
}

func (o *Response) Form() librqt.Form {
	return o.req.Form
}

func (o *Response) Session() libses.Session {
	return o.ses
}

// Debug reports whether traceback bodies are enabled.
func (o *Response) Debug() bool {
	return o.debug
}

// Status returns the emitted status code, 0 before emission.
func (o *Response) Status() int {
	return o.status
}

// Size returns the emitted body size.
func (o *Response) Size() int {
	return o.size
}

// HeadersSent reports whether the response head has been emitted.
func (o *Response) HeadersSent() bool {
	return o.sent
}

// StartResponse emits the response head.
func (o *Response) StartResponse(status int, headers Headers) liberr.Error {
	if o.sent {
		return ErrorHeadersSent.Error(nil)
	}

	text := http.StatusText(status)
	if text == "" {
		text = "Unknown"
	}

	var err error

	write := func(s string) {
		if err == nil {
			_, err = io.WriteString(o.w, s)
		}
	}

	write("HTTP/1.1 " + strconv.Itoa(status) + " " + text + "\r\n")
	write("Server: " + serverInfo + "\r\n")
	write("Connection: close\r\n")

	for _, h := range headers {
		write(h[0] + ": " + h[1] + "\r\n")
	}

	if o.fresh && o.ses != nil {
		write("Set-Cookie: " + o.cookie + "=" + o.ses.ID() + "; Path=/\r\n")
	}

	write("\r\n")

	if err != nil {
		return ErrorWrite.Error(err)
	}

	o.sent = true
	o.status = status

	return nil
}

// Respond emits a full response. A nil content on a non-304 status
// substitutes the default HTML status body; a 304 gets no default body
// (non-nil content is still written as given).
func (o *Response) Respond(status int, headers Headers, content []byte) liberr.Error {
	if o.sent {
		return ErrorHeadersSent.Error(nil)
	}

	if content == nil && status != http.StatusNotModified {
		content = DefaultStatusBody(status)

		if !hasHeader(headers, "Content-Type") {
			headers = append(headers, [2]string{"Content-Type", "text/html;charset=utf-8"})
		}
		headers = append(headers, [2]string{"Content-Length", strconv.Itoa(len(content))})
	}

	if err := o.StartResponse(status, headers); err != nil {
		return err
	}

	return o.Write(content)
}

// Redirect emits a 302 pointing at the given url on the request's host.
func (o *Response) Redirect(url string) liberr.Error {
	if url == "" {
		url = "/"
	}

	host := o.req.Env.Get("HTTP_HOST")
	if host == "" {
		host = o.req.Env.Get("SERVER_NAME") + ":" + o.req.Env.Get("SERVER_PORT")
	}

	status := http.StatusFound
	content := []byte(strconv.Itoa(status) + " " + http.StatusText(status))

	headers := Headers{
		{"Content-Type", "text/html;charset=utf-8"},
		{"Location", "http://" + host + url},
		{"Content-Length", strconv.Itoa(len(content))},
	}

	if err := o.StartResponse(status, headers); err != nil {
		return err
	}

	return o.Write(content)
}

// Write emits body bytes after the head.
func (o *Response) Write(content []byte) liberr.Error {
	if len(content) == 0 {
		return nil
	}

	n, e := o.w.Write(content)
	o.size += n

	return ErrorWrite.Iferror(e)
}
