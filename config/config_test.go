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

package config_test

import (
	"os"
	"path/filepath"

	cfg "github.com/nabbar/litefs/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("defaults match the CLI contract", func() {
		c := cfg.Default()

		Expect(c.Host).To(Equal("localhost"))
		Expect(c.Port).To(Equal(9090))
		Expect(c.WebRoot).To(Equal("./site"))
		Expect(c.Debug).To(BeFalse())
		Expect(c.NotFound).To(Equal("not_found"))
		Expect(c.DefaultPage).To(Equal("index.html"))
		Expect(c.CGIDir).To(Equal("/cgi-bin"))
		Expect(c.Listen).To(Equal(1024))
	})

	It("defaults validate after expansion", func() {
		c := cfg.Default()

		Expect(c.Expand()).To(BeNil())
		Expect(c.Validate()).To(BeNil())
	})

	It("Expand makes the webroot absolute", func() {
		c := cfg.Default()
		c.WebRoot = "./somewhere"

		Expect(c.Expand()).To(BeNil())
		Expect(filepath.IsAbs(c.WebRoot)).To(BeTrue())
	})

	It("an empty host is refused", func() {
		c := cfg.Default()
		c.Host = ""

		Expect(c.Validate()).ToNot(BeNil())
	})

	It("an out-of-range port is refused", func() {
		c := cfg.Default()
		c.Port = 70000

		Expect(c.Validate()).ToNot(BeNil())
	})

	It("a cgi dir without leading slash is refused", func() {
		c := cfg.Default()
		c.CGIDir = "cgi-bin"

		Expect(c.Validate()).ToNot(BeNil())
	})

	It("a config file overlays the model", func() {
		dir := GinkgoT().TempDir()
		p := filepath.Join(dir, "litefs.yaml")

		Expect(os.WriteFile(p, []byte("host: 0.0.0.0\nport: 8080\ndebug: true\n"), 0644)).To(Succeed())

		c := cfg.Default()
		Expect(cfg.Load(p, c)).To(BeNil())

		Expect(c.Host).To(Equal("0.0.0.0"))
		Expect(c.Port).To(Equal(8080))
		Expect(c.Debug).To(BeTrue())

		// untouched keys keep their defaults
		Expect(c.DefaultPage).To(Equal("index.html"))
	})

	It("a missing config file fails to load", func() {
		c := cfg.Default()
		Expect(cfg.Load(filepath.Join(GinkgoT().TempDir(), "absent.yaml"), c)).ToNot(BeNil())
	})
})
