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

package litefile_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	dsflate "github.com/dsnet/compress/flate"

	librqt "github.com/nabbar/litefs/request"
	librsp "github.com/nabbar/litefs/response"

	. "github.com/nabbar/litefs/litefile"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var etagPattern = regexp.MustCompile(`Etag: ([0-9a-f]{40})`)

func writeAsset(name string, content []byte) string {
	dir := GinkgoT().TempDir()
	p := filepath.Join(dir, name)
	Expect(os.WriteFile(p, content, 0644)).To(Succeed())
	return p
}

func serve(lf *LiteFile, env map[string]string) string {
	var buf bytes.Buffer

	e := make(librqt.Env)
	for k, v := range env {
		e[k] = v
	}

	req := &librqt.Request{Env: e, Form: make(librqt.Form)}
	rsp := librsp.New(&buf, req, nil, false, "litefs.sid", false)

	Expect(lf.Handle(rsp)).To(BeNil())

	return buf.String()
}

func bodyOf(raw string) string {
	_, body, ok := strings.Cut(raw, "\r\n\r\n")
	Expect(ok).To(BeTrue())
	return body
}

var _ = Describe("LiteFile", func() {
	content := []byte("<h1>hi</h1>")

	It("serves the identity body with type, length and validator", func() {
		lf, err := Load(writeAsset("index.html", content), "index.html")
		Expect(err).To(BeNil())

		out := serve(lf, nil)

		Expect(out).To(ContainSubstring("HTTP/1.1 200 OK"))
		Expect(out).To(ContainSubstring("Content-Type: text/html;charset=utf-8"))
		Expect(out).To(ContainSubstring("Content-Length: 11"))
		Expect(out).To(ContainSubstring("Last-Modified: "))
		Expect(etagPattern.MatchString(out)).To(BeTrue())
		Expect(out).ToNot(ContainSubstring("Content-Encoding"))
		Expect(bodyOf(out)).To(Equal(string(content)))
	})

	It("serving twice yields byte-identical responses", func() {
		lf, err := Load(writeAsset("a.txt", content), "a.txt")
		Expect(err).To(BeNil())

		Expect(serve(lf, nil)).To(Equal(serve(lf, nil)))
	})

	It("the gzip variant decompresses to the on-disk bytes", func() {
		lf, err := Load(writeAsset("a.html", content), "a.html")
		Expect(err).To(BeNil())

		out := serve(lf, map[string]string{"HTTP_ACCEPT_ENCODING": "gzip, deflate"})
		Expect(out).To(ContainSubstring("Content-Encoding: gzip"))

		zr, e := gzip.NewReader(strings.NewReader(bodyOf(out)))
		Expect(e).ToNot(HaveOccurred())

		plain, e := io.ReadAll(zr)
		Expect(e).ToNot(HaveOccurred())
		Expect(plain).To(Equal(content))
	})

	It("the deflate variant is a raw stream decodable without zlib framing", func() {
		lf, err := Load(writeAsset("a.html", content), "a.html")
		Expect(err).To(BeNil())

		out := serve(lf, map[string]string{"HTTP_ACCEPT_ENCODING": "deflate"})
		Expect(out).To(ContainSubstring("Content-Encoding: deflate"))

		// independent decoder
		fr, e := dsflate.NewReader(strings.NewReader(bodyOf(out)), nil)
		Expect(e).ToNot(HaveOccurred())

		plain, e := io.ReadAll(fr)
		Expect(e).ToNot(HaveOccurred())
		Expect(plain).To(Equal(content))
	})

	It("each variant carries its own validator", func() {
		lf, err := Load(writeAsset("a.html", content), "a.html")
		Expect(err).To(BeNil())

		idn := etagPattern.FindStringSubmatch(serve(lf, nil))
		gz := etagPattern.FindStringSubmatch(serve(lf, map[string]string{"HTTP_ACCEPT_ENCODING": "gzip"}))
		df := etagPattern.FindStringSubmatch(serve(lf, map[string]string{"HTTP_ACCEPT_ENCODING": "deflate"}))

		Expect(idn).To(HaveLen(2))
		Expect(gz).To(HaveLen(2))
		Expect(df).To(HaveLen(2))
		Expect(idn[1]).ToNot(Equal(gz[1]))
		Expect(idn[1]).ToNot(Equal(df[1]))
		Expect(gz[1]).ToNot(Equal(df[1]))
	})

	It("If-None-Match on the selected validator returns 304", func() {
		lf, err := Load(writeAsset("a.html", content), "a.html")
		Expect(err).To(BeNil())

		first := serve(lf, map[string]string{"HTTP_ACCEPT_ENCODING": "gzip"})
		etag := etagPattern.FindStringSubmatch(first)[1]

		second := serve(lf, map[string]string{
			"HTTP_ACCEPT_ENCODING": "gzip",
			"HTTP_IF_NONE_MATCH":   etag,
		})

		Expect(second).To(ContainSubstring("HTTP/1.1 304 Not Modified"))
		Expect(second).ToNot(ContainSubstring("Content-Length"))
		Expect(bodyOf(second)).To(BeEmpty())
	})

	It("If-Modified-Since on the stored value returns 304", func() {
		lf, err := Load(writeAsset("a.html", content), "a.html")
		Expect(err).To(BeNil())

		first := serve(lf, nil)

		var lm string
		for _, line := range strings.Split(first, "\r\n") {
			if strings.HasPrefix(line, "Last-Modified: ") {
				lm = strings.TrimPrefix(line, "Last-Modified: ")
			}
		}
		Expect(lm).ToNot(BeEmpty())

		second := serve(lf, map[string]string{"HTTP_IF_MODIFIED_SINCE": lm})
		Expect(second).To(ContainSubstring("HTTP/1.1 304 Not Modified"))
	})

	It("ServeAs emits the identity body with the given status", func() {
		lf, err := Load(writeAsset("nf.html", content), "nf.html")
		Expect(err).To(BeNil())

		var buf bytes.Buffer
		req := &librqt.Request{Env: make(librqt.Env), Form: make(librqt.Form)}
		rsp := librsp.New(&buf, req, nil, false, "litefs.sid", false)

		Expect(lf.ServeAs(rsp, 404)).To(BeNil())
		Expect(buf.String()).To(ContainSubstring("HTTP/1.1 404 Not Found"))
		Expect(bodyOf(buf.String())).To(Equal(string(content)))
	})

	It("loading a missing file fails", func() {
		_, err := Load(filepath.Join(GinkgoT().TempDir(), "absent"), "absent")
		Expect(err).ToNot(BeNil())
	})
})
