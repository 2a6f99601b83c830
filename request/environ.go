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

package request

import (
	"mime"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	liberr "github.com/nabbar/litefs/errors"
	libsio "github.com/nabbar/litefs/sockio"
)

func parse(s libsio.Stream, host string, port int, defaultPage string) (*Request, liberr.Error) {
	env := make(Env)

	env["SERVER_NAME"] = host
	env["SERVER_PORT"] = strconv.Itoa(port)
	env["REMOTE_ADDR"] = s.RemoteHost() + ":" + strconv.Itoa(s.RemotePort())
	env["REMOTE_HOST"] = s.RemoteHost()
	env["REMOTE_PORT"] = strconv.Itoa(s.RemotePort())

	r := &Request{
		Env:   env,
		Form:  make(Form),
		Posts: make(map[string]string),
		Files: make(map[string]*os.File),
	}

	if err := r.parseStartLine(s, defaultPage); err != nil {
		return nil, err
	}

	if err := r.parseHeaders(s); err != nil {
		r.Release()
		return nil, err
	}

	if err := r.parseBody(s); err != nil {
		r.Release()
		return nil, err
	}

	r.parseForm()

	return r, nil
}

func (r *Request) parseStartLine(s libsio.Stream, defaultPage string) liberr.Error {
	line, err := s.ReadLine(MaxLineSize)
	if err != nil {
		return ErrorHeadersIncomplete.Error(err)
	}

	str := strings.TrimSpace(string(line))
	if str == "" {
		return ErrorHeadersIncomplete.Error(nil)
	}

	tokens := strings.Fields(str)
	if len(tokens) != 3 {
		return ErrorMalformedRequest.Error(nil)
	}

	var (
		method = strings.ToUpper(tokens[0])
		target = tokens[1]
		proto  = tokens[2]
	)

	rawPath, rawQuery, _ := strings.Cut(target, "?")

	decPath, e := url.PathUnescape(rawPath)
	if e != nil {
		return ErrorMalformedRequest.Error(e)
	}

	decQuery, e := url.QueryUnescape(rawQuery)
	if e != nil {
		return ErrorMalformedRequest.Error(e)
	}

	_, name := path.Split(decPath)
	if name == "" {
		name = defaultPage
	}

	r.Env["REQUEST_METHOD"] = method
	r.Env["SERVER_PROTOCOL"] = proto
	r.Env["PATH_INFO"] = decPath
	r.Env["QUERY_STRING"] = decQuery
	r.Env["SCRIPT_NAME"] = name
	r.rawQuery = rawQuery

	return nil
}

func (r *Request) parseHeaders(s libsio.Stream) liberr.Error {
	for {
		line, err := s.ReadLine(MaxLineSize)
		if err != nil {
			return ErrorHeadersIncomplete.Error(err)
		}

		str := strings.TrimRight(string(line), "\r\n")
		if str == "" {
			break
		}

		k, v, ok := strings.Cut(str, ":")
		if !ok {
			return ErrorMalformedRequest.Error(nil)
		}

		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)

		key := "HTTP_" + strings.ReplaceAll(strings.ToUpper(k), "-", "_")

		// duplicate headers are comma-joined in received order
		if old, found := r.Env[key]; found {
			r.Env[key] = old + "," + v
		} else {
			r.Env[key] = v
		}
	}

	ct := r.Env["HTTP_CONTENT_TYPE"]
	if ct == "" {
		ct = DefaultContentType
	}
	r.Env["CONTENT_TYPE"] = ct

	r.Env["CHARSET"] = ""
	if _, params, e := mime.ParseMediaType(ct); e == nil {
		r.Env["CHARSET"] = params["charset"]
	}

	r.Env["CONTENT_LENGTH"] = "-1"
	if cl := r.Env["HTTP_CONTENT_LENGTH"]; cl != "" {
		n, e := strconv.Atoi(cl)
		if e != nil {
			return ErrorMalformedRequest.Error(e)
		}
		r.Env["CONTENT_LENGTH"] = strconv.Itoa(n)
	}

	return nil
}

func (r *Request) parseBody(s libsio.Stream) liberr.Error {
	size, _ := strconv.Atoi(r.Env["CONTENT_LENGTH"])
	if size <= 0 {
		return nil
	}

	ct := r.Env["CONTENT_TYPE"]

	if strings.HasPrefix(ct, "multipart/form-data") {
		_, params, e := mime.ParseMediaType(ct)
		if e != nil {
			return ErrorMalformedRequest.Error(e)
		}

		boundary := params["boundary"]
		if boundary == "" {
			return ErrorMalformedRequest.Error(nil)
		}

		return r.parseMultipart(s, size, boundary)
	}

	body, err := s.ReadExact(size)
	if err != nil {
		return ErrorBodyIncomplete.Error(err)
	}

	r.Env["POST_CONTENT"] = string(body)

	return nil
}
