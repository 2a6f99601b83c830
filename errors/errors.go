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

package errors

import (
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c CodeError
	e string
	p []Error
	t runtime.Frame
}

func newError(code CodeError, message string, parent ...error) Error {
	e := &ers{
		c: code,
		e: message,
		p: make([]Error, 0),
		t: getFrame(),
	}

	e.Add(parent...)
	return e
}

// getFrame captures the first caller frame outside of this package.
func getFrame() runtime.Frame {
	pc := make([]uintptr, 32)
	n := runtime.Callers(2, pc)

	if n == 0 {
		return runtime.Frame{}
	}

	frames := runtime.CallersFrames(pc[:n])
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "litefs/errors") {
			return f
		}
		if !more {
			return f
		}
	}
}

func (e *ers) Error() string {
	if len(e.p) < 1 {
		return e.e
	}

	var buf = make([]string, 0, len(e.p)+1)
	buf = append(buf, e.e)

	for _, p := range e.p {
		buf = append(buf, p.StringError())
	}

	return strings.Join(buf, ", ")
}

func (e *ers) StringError() string {
	return e.e
}

func (e *ers) StringErrorSlice() []string {
	res := []string{e.e}

	for _, p := range e.p {
		res = append(res, p.StringError())
	}

	return res
}

func (e *ers) GetErrorSlice() []error {
	res := []error{fmt.Errorf("%s", e.e)}

	for _, p := range e.p {
		res = append(res, p)
	}

	return res
}

func (e *ers) IsCode(code CodeError) bool {
	return e.c == code
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}

	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}

	return false
}

func (e *ers) GetCode() CodeError {
	return e.c
}

func (e *ers) GetParentCode() []CodeError {
	res := []CodeError{e.c}

	for _, p := range e.p {
		res = append(res, p.GetParentCode()...)
	}

	return res
}

func (e *ers) Code() uint16 {
	return e.c.Uint16()
}

func (e *ers) Is(err error) bool {
	if x, ok := err.(Error); ok {
		if x.GetCode() != UnknownError && x.GetCode() == e.c {
			return true
		}
	}

	return err != nil && e.e == err.Error()
}

func (e *ers) IsError(err error) bool {
	return err != nil && e.e == err.Error()
}

func (e *ers) HasError(err error) bool {
	if e.IsError(err) {
		return true
	}

	for _, p := range e.p {
		if p.HasError(err) {
			return true
		}
	}

	return false
}

func (e *ers) HasParent() bool {
	return len(e.p) > 0
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}

		if x, ok := v.(Error); ok {
			e.p = append(e.p, x)
		} else {
			e.p = append(e.p, newError(UnknownError, v.Error()).(*ers))
		}
	}
}

func (e *ers) SetParent(parent ...error) {
	e.p = make([]Error, 0)
	e.Add(parent...)
}

func (e *ers) GetParent(withMainError bool) []error {
	var res = make([]error, 0)

	if withMainError {
		res = append(res, fmt.Errorf("%s", e.e))
	}

	for _, p := range e.p {
		res = append(res, p.GetParent(true)...)
	}

	return res
}

func (e *ers) Map(fct FuncMap) bool {
	if !fct(e) {
		return false
	}

	for _, p := range e.p {
		if !p.Map(fct) {
			return false
		}
	}

	return true
}

func (e *ers) GetTrace() string {
	if e.t.File != "" {
		return fmt.Sprintf("%s:%d", e.t.File, e.t.Line)
	}

	return ""
}

func (e *ers) Unwrap() []error {
	res := make([]error, 0, len(e.p))

	for _, p := range e.p {
		res = append(res, p)
	}

	return res
}
