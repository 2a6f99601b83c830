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

package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/sprig/v3"

	liberr "github.com/nabbar/litefs/errors"
	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"
	libses "github.com/nabbar/litefs/session"
)

// TemplateData is the render context handed to a template.
type TemplateData struct {
	Env     librqt.Env
	Form    librqt.Form
	Posts   map[string]string
	Session libses.Session
}

type tpl struct {
	t *template.Template
}

// LoadTemplate parses the template file at the given path under the
// document root and returns the handler rendering it per request.
// A parse failure is returned to the caller, which substitutes the
// failure handler.
func LoadTemplate(webroot, scriptURI string) (Handler, liberr.Error) {
	p := filepath.Join(webroot, scriptURI)

	t, e := template.New(filepath.Base(p)).Funcs(sprig.HtmlFuncMap()).ParseFiles(p)
	if e != nil {
		return nil, ErrorTemplateParse.Error(e)
	}

	return &tpl{t: t}, nil
}

func (o *tpl) Handle(rsp *librsp.Response) liberr.Error {
	var buf bytes.Buffer

	data := TemplateData{
		Env:     rsp.Env(),
		Form:    rsp.Form(),
		Posts:   rsp.Request().Posts,
		Session: rsp.Session(),
	}

	if e := o.t.Execute(&buf, data); e != nil {
		err := ErrorTemplateRender.Error(e)

		if rsp.Debug() {
			body := []byte(err.Error())
			return rsp.Respond(http.StatusInternalServerError, librsp.Headers{
				{"Content-Type", "text/plain;charset=utf-8"},
				{"Content-Length", strconv.Itoa(len(body))},
			}, body)
		}

		return rsp.Respond(http.StatusInternalServerError, nil, nil)
	}

	body := buf.Bytes()

	return rsp.Respond(http.StatusOK, librsp.Headers{
		{"Content-Type", "text/html;charset=utf-8"},
		{"Content-Length", strconv.Itoa(len(body))},
	}, body)
}
