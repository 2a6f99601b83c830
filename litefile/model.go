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

package litefile

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/sha1"
	"encoding/hex"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	librsp "github.com/nabbar/litefs/response"

	liberr "github.com/nabbar/litefs/errors"
)

func load(realPath, name string) (*LiteFile, liberr.Error) {
	text, e := os.ReadFile(realPath)
	if e != nil {
		return nil, ErrorFileRead.Error(e)
	}

	st, e := os.Stat(realPath)
	if e != nil {
		return nil, ErrorFileRead.Error(e)
	}

	zl, err := deflateBytes(text)
	if err != nil {
		return nil, err
	}

	gz, err := gzipBytes(text)
	if err != nil {
		return nil, err
	}

	return &LiteFile{
		path:         realPath,
		lastModified: st.ModTime().UTC().Format(http.TimeFormat),
		contentType:  guessType(name, text),
		identity:     variant{body: text, etag: etag(text)},
		deflate:      variant{body: zl, etag: etag(zl)},
		gzip:         variant{body: gz, etag: etag(gz)},
	}, nil
}

func etag(body []byte) string {
	sum := sha1.Sum(body)
	return hex.EncodeToString(sum[:])
}

// deflateBytes produces a raw DEFLATE stream: Go's flate writer emits
// no zlib framing, matching a zlib stream with the two-byte header and
// the four-byte checksum stripped.
func deflateBytes(text []byte) ([]byte, liberr.Error) {
	var buf bytes.Buffer

	w, e := flate.NewWriter(&buf, flate.BestCompression)
	if e != nil {
		return nil, ErrorCompress.Error(e)
	}

	if _, e = w.Write(text); e != nil {
		_ = w.Close()
		return nil, ErrorCompress.Error(e)
	}

	if e = w.Close(); e != nil {
		return nil, ErrorCompress.Error(e)
	}

	return buf.Bytes(), nil
}

func gzipBytes(text []byte) ([]byte, liberr.Error) {
	var buf bytes.Buffer

	w, e := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if e != nil {
		return nil, ErrorCompress.Error(e)
	}

	if _, e = w.Write(text); e != nil {
		_ = w.Close()
		return nil, ErrorCompress.Error(e)
	}

	if e = w.Close(); e != nil {
		return nil, ErrorCompress.Error(e)
	}

	return buf.Bytes(), nil
}

// guessType resolves the content type from the extension, sniffing the
// content for unknown extensions.
func guessType(name string, text []byte) string {
	if m := mime.TypeByExtension(path.Ext(name)); m != "" {
		if mt, _, e := mime.ParseMediaType(m); e == nil {
			return mt + ";charset=utf-8"
		}
	} else if mt := mimetype.Detect(text); mt != nil {
		return mt.String()
	}

	return "text/html;charset=utf-8"
}

func (o *LiteFile) serve(rsp *librsp.Response) liberr.Error {
	env := rsp.Env()

	if env.Get("HTTP_IF_MODIFIED_SINCE") == o.lastModified {
		return rsp.Respond(http.StatusNotModified, nil, nil)
	}

	var (
		v   *variant
		enc string
	)

	accepted := acceptedEncodings(env.Get("HTTP_ACCEPT_ENCODING"))

	switch {
	case accepted["gzip"]:
		v, enc = &o.gzip, "gzip"
	case accepted["deflate"]:
		v, enc = &o.deflate, "deflate"
	default:
		v, enc = &o.identity, ""
	}

	if env.Get("HTTP_IF_NONE_MATCH") == v.etag {
		return rsp.Respond(http.StatusNotModified, nil, nil)
	}

	headers := librsp.Headers{
		{"Content-Type", o.contentType},
		{"Last-Modified", o.lastModified},
		{"Etag", v.etag},
	}

	if enc != "" {
		headers = append(headers, [2]string{"Content-Encoding", enc})
	}

	headers = append(headers, [2]string{"Content-Length", strconv.Itoa(len(v.body))})

	return rsp.Respond(http.StatusOK, headers, v.body)
}

func (o *LiteFile) serveAs(rsp *librsp.Response, status int) liberr.Error {
	headers := librsp.Headers{
		{"Content-Type", o.contentType},
		{"Last-Modified", o.lastModified},
		{"Content-Length", strconv.Itoa(len(o.identity.body))},
	}

	return rsp.Respond(status, headers, o.identity.body)
}

func acceptedEncodings(raw string) map[string]bool {
	res := make(map[string]bool)

	for _, s := range strings.Split(raw, ",") {
		enc, _, _ := strings.Cut(strings.TrimSpace(s), ";")
		if enc = strings.ToLower(strings.TrimSpace(enc)); enc != "" {
			res[enc] = true
		}
	}

	return res
}
