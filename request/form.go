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
	"net/url"
	"strings"
)

// Form is the decoded form content: each key maps to the values
// received for it, in query-then-body order.
type Form map[string][]string

// Get returns the first value for the given key or an empty string.
func (f Form) Get(key string) string {
	if v, ok := f[key]; ok && len(v) > 0 {
		return v[0]
	}

	return ""
}

// Values returns every value received for the given key.
func (f Form) Values(key string) []string {
	return f[key]
}

// Has returns true when at least one value was received for the key.
func (f Form) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// parseForm merges the query string then the POST body into the form.
func (r *Request) parseForm() {
	parseFormInto(r.Form, r.rawQuery)

	if pc := r.Env["POST_CONTENT"]; pc != "" {
		parseFormInto(r.Form, pc)
	}
}

// parseFormInto decodes one application/x-www-form-urlencoded string.
// Keys and values are percent-decoded with + as space; a trailing []
// on a key is stripped. Pairs that fail to decode are skipped.
func parseFormInto(f Form, raw string) {
	for _, s := range strings.Split(raw, "&") {
		if s == "" {
			continue
		}

		k, v, _ := strings.Cut(s, "=")

		dk, e := url.QueryUnescape(k)
		if e != nil {
			continue
		}

		dv, e := url.QueryUnescape(v)
		if e != nil {
			continue
		}

		dk = strings.TrimSuffix(dk, "[]")

		f[dk] = append(f[dk], dv)
	}
}
