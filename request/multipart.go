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
	"errors"
	"io"
	"mime/multipart"

	liberr "github.com/nabbar/litefs/errors"
	libsio "github.com/nabbar/litefs/sockio"
)

// parseMultipart streams the body parts: parts carrying a filename are
// spooled into scoped temporary files, the others are decoded in
// memory as UTF-8. The trailing CRLF preceding a boundary belongs to
// the boundary, not to the part body.
func (r *Request) parseMultipart(s libsio.Stream, size int, boundary string) liberr.Error {
	mr := multipart.NewReader(io.LimitReader(s, int64(size)), boundary)

	for {
		p, e := mr.NextPart()
		if errors.Is(e, io.EOF) {
			return nil
		}
		if e != nil {
			return ErrorMalformedRequest.Error(e)
		}

		name := p.FormName()
		if name == "" {
			_ = p.Close()
			continue
		}

		if p.FileName() != "" {
			f, err := NewTempFile()
			if err != nil {
				_ = p.Close()
				return err
			}

			if _, e = io.Copy(f, p); e != nil {
				_ = DelTempFile(f)
				_ = p.Close()
				return ErrorBodyIncomplete.Error(e)
			}

			if _, e = f.Seek(0, io.SeekStart); e != nil {
				_ = DelTempFile(f)
				_ = p.Close()
				return ErrorTempFile.Error(e)
			}

			if old, ok := r.Files[name]; ok {
				_ = DelTempFile(old)
			}
			r.Files[name] = f
		} else {
			b, e := io.ReadAll(p)
			if e != nil {
				_ = p.Close()
				return ErrorBodyIncomplete.Error(e)
			}
			r.Posts[name] = string(b)
		}

		_ = p.Close()
	}
}
