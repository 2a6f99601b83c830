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

// Package cgi invokes an external interpreter on a script under the
// configured CGI directory and wraps its outcome as a handler. The
// resulting handler is never cached: the script runs again on every
// request.
package cgi

import (
	"bytes"
	"io"
	"net/http"
	"os/exec"
	"strconv"

	liberr "github.com/nabbar/litefs/errors"
	libhdl "github.com/nabbar/litefs/handler"
	liblog "github.com/nabbar/litefs/logger"
	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"
)

// Runners maps a script extension to its interpreter.
var Runners = map[string]string{
	".pl":  "/usr/bin/perl",
	".py":  "/usr/bin/python",
	".pyc": "/usr/bin/python",
	".pyo": "/usr/bin/python",
	".php": "/usr/bin/php",
}

// Run invokes the interpreter with the script path as sole argument,
// working directory set to the document root. Stdout is captured to a
// scoped temporary file and stderr to a pipe; the outcome is wrapped
// as a handler.
func Run(runner, scriptURI, webroot string, log liblog.Logger) libhdl.Handler {
	tmp, err := librqt.NewTempFile()
	if err != nil {
		log.LogError("cgi stdout spool", err)
		return newFailureHandler(nil)
	}

	defer func() {
		_ = librqt.DelTempFile(tmp)
	}()

	var stderr bytes.Buffer

	cmd := exec.Command(runner, scriptURI)
	cmd.Dir = webroot
	cmd.Stdout = tmp
	cmd.Stderr = &stderr

	e := cmd.Run()

	switch {
	case e != nil:
		log.LogError("cgi script", ErrorScriptExit.Error(e))
	case stderr.Len() > 0:
		log.Error("cgi script stderr: %s", stderr.String())
	default:
		log.Debug("cgi script exited ok")
	}

	if e != nil || stderr.Len() > 0 {
		return newFailureHandler(stderr.Bytes())
	}

	if _, e = tmp.Seek(0, io.SeekStart); e != nil {
		log.LogError("cgi stdout spool", ErrorStdoutRead.Error(e))
		return newFailureHandler(nil)
	}

	stdout, e := io.ReadAll(tmp)
	if e != nil {
		log.LogError("cgi stdout spool", ErrorStdoutRead.Error(e))
		return newFailureHandler(nil)
	}

	return libhdl.NewStatusHandler(http.StatusOK, "text/html;charset=utf-8", stdout)
}

// newFailureHandler wraps a CGI failure: stderr becomes the body only
// when debug is enabled on the response.
func newFailureHandler(stderr []byte) libhdl.Handler {
	return libhdl.HandlerFunc(func(rsp *librsp.Response) liberr.Error {
		if rsp.Debug() && len(stderr) > 0 {
			return rsp.Respond(http.StatusInternalServerError, librsp.Headers{
				{"Content-Type", "text/plain;charset=utf-8"},
				{"Content-Length", strconv.Itoa(len(stderr))},
			}, stderr)
		}

		return rsp.Respond(http.StatusInternalServerError, nil, nil)
	})
}
