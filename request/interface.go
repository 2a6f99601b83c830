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

// Package request parses one HTTP/1.1 request from a buffered stream
// into the request environment mapping, the decoded form and the
// multipart parts (posts and scoped temporary upload files).
package request

import (
	"os"

	liberr "github.com/nabbar/litefs/errors"
	libsio "github.com/nabbar/litefs/sockio"
)

// MaxLineSize bounds the request line and each header line.
const MaxLineSize = 8 * 1024

// DefaultContentType is the CONTENT_TYPE value when the request does
// not carry a content-type header.
const DefaultContentType = "text/plain; charset=utf-8"

// Env is the request environment mapping populated by the parser.
type Env map[string]string

// Get returns the value for the given key or an empty string.
func (e Env) Get(key string) string {
	return e[key]
}

// Request is one parsed request plus the resources it owns. The
// temporary upload files are owned by the request for its entire
// lifetime; Release must be called on every exit path.
type Request struct {
	// Env is the request environment mapping.
	Env Env

	// Form is the decoded form merged from query string then POST body.
	Form Form

	// Posts holds the non-file multipart parts, decoded as UTF-8.
	Posts map[string]string

	// Files holds the file multipart parts, spooled to scoped
	// temporary files.
	Files map[string]*os.File

	// rawQuery keeps the undecoded query string for form decoding.
	rawQuery string
}

// Parse reads one request from the stream. The server host and port
// fill SERVER_NAME/SERVER_PORT; defaultPage fills SCRIPT_NAME for the
// root path.
func Parse(s libsio.Stream, host string, port int, defaultPage string) (*Request, liberr.Error) {
	return parse(s, host, port, defaultPage)
}

// Release closes and removes every temporary upload file. It is safe
// to call more than once.
func (r *Request) Release() {
	for k, f := range r.Files {
		_ = DelTempFile(f)
		delete(r.Files, k)
	}
}
