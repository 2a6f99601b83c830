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

package memcache_test

import (
	"fmt"

	. "github.com/nabbar/litefs/memcache"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryCache", func() {
	const maxSize = 100

	It("Put up to capacity keeps every key", func() {
		c, err := New[string, string](maxSize)
		Expect(err).To(BeNil())

		for i := 0; i < maxSize; i++ {
			c.Put(fmt.Sprintf("test_key-%d", i), "test_val")
		}

		Expect(c.Len()).To(Equal(maxSize))
	})

	It("Delete removes the key from map and recency list", func() {
		c, err := New[string, string](maxSize)
		Expect(err).To(BeNil())

		size := c.Len()
		c.Put("test_key", "test_val")
		c.Delete("test_key")

		Expect(c.Len()).To(Equal(size))
		_, ok := c.Get("test_key")
		Expect(ok).To(BeFalse())
	})

	It("overflowing the capacity evicts the oldest keys", func() {
		c, err := New[string, string](maxSize)
		Expect(err).To(BeNil())

		for i := 0; i < 1000; i++ {
			c.Put(fmt.Sprintf("test_key-%d", i), "test_val")
		}

		Expect(c.Len()).To(Equal(maxSize))

		for i := 0; i < 900; i++ {
			_, ok := c.Get(fmt.Sprintf("test_key-%d", i))
			Expect(ok).To(BeFalse())
		}

		for i := 900; i < 1000; i++ {
			_, ok := c.Get(fmt.Sprintf("test_key-%d", i))
			Expect(ok).To(BeTrue())
		}
	})

	It("Get promotes the key to most recently used", func() {
		c, err := New[string, int](3)
		Expect(err).To(BeNil())

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		_, _ = c.Get("a")
		c.Put("d", 4) // evicts b, the least recently used

		_, ok := c.Get("b")
		Expect(ok).To(BeFalse())
		_, ok = c.Get("a")
		Expect(ok).To(BeTrue())
	})

	It("non-positive size selects the default bound", func() {
		c, err := New[string, int](0)
		Expect(err).To(BeNil())
		Expect(c).ToNot(BeNil())
	})
})
