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

// Package litefile precomputes a static asset at first serve: the
// identity body, a raw-DEFLATE body (no zlib framing) and a gzip body,
// each with its own strong validator. The record is immutable after
// construction and serves conditional GET from memory.
package litefile

import (
	liberr "github.com/nabbar/litefs/errors"
	librsp "github.com/nabbar/litefs/response"
)

// variant is one encoded body and its strong validator.
type variant struct {
	body []byte
	etag string
}

// LiteFile is the precomputed, three-variant static asset record.
type LiteFile struct {
	path string

	lastModified string
	contentType  string

	identity variant
	deflate  variant
	gzip     variant
}

// Load reads the file at realPath and builds the three encoded bodies
// and validators. The name drives the content-type guess.
func Load(realPath, name string) (*LiteFile, liberr.Error) {
	return load(realPath, name)
}

// Path returns the absolute filesystem path of the asset.
func (o *LiteFile) Path() string {
	return o.path
}

// Handle serves the asset: If-Modified-Since, then encoding selection
// from Accept-Encoding (gzip preferred over deflate over identity),
// then If-None-Match against the selected variant's validator.
func (o *LiteFile) Handle(rsp *librsp.Response) liberr.Error {
	return o.serve(rsp)
}

// ServeAs emits the identity body with the given status, bypassing
// conditional GET. Used for the configured not-found page.
func (o *LiteFile) ServeAs(rsp *librsp.Response, status int) liberr.Error {
	return o.serveAs(rsp, status)
}
