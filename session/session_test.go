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

package session_test

import (
	"regexp"

	libmem "github.com/nabbar/litefs/memcache"
	librqt "github.com/nabbar/litefs/request"

	. "github.com/nabbar/litefs/session"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

func newManager() Manager {
	store, err := libmem.New[string, Session](100)
	Expect(err).To(BeNil())
	return New(store, "")
}

var _ = Describe("Session", func() {
	It("mints a 40-hex identifier for a cookie-less request", func() {
		m := newManager()

		s, fresh, err := m.Acquire(make(librqt.Env))
		Expect(err).To(BeNil())
		Expect(fresh).To(BeTrue())
		Expect(hexPattern.MatchString(s.ID())).To(BeTrue())
	})

	It("reuses the session resolved from the cookie", func() {
		m := newManager()

		s1, _, err := m.Acquire(make(librqt.Env))
		Expect(err).To(BeNil())

		env := librqt.Env{"HTTP_COOKIE": "other=1; " + m.CookieName() + "=" + s1.ID()}

		s2, fresh, err := m.Acquire(env)
		Expect(err).To(BeNil())
		Expect(fresh).To(BeFalse())
		Expect(s2.ID()).To(Equal(s1.ID()))
	})

	It("a stale cookie value mints a fresh session", func() {
		m := newManager()

		env := librqt.Env{"HTTP_COOKIE": m.CookieName() + "=deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"}

		s, fresh, err := m.Acquire(env)
		Expect(err).To(BeNil())
		Expect(fresh).To(BeTrue())
		Expect(s.ID()).ToNot(Equal("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"))
	})

	It("two mints never collide", func() {
		m := newManager()

		s1, _, _ := m.Acquire(make(librqt.Env))
		s2, _, _ := m.Acquire(make(librqt.Env))
		Expect(s1.ID()).ToNot(Equal(s2.ID()))
	})

	It("attributes live on the session", func() {
		m := newManager()

		s, _, _ := m.Acquire(make(librqt.Env))
		s.Set("user", "tom")

		v, ok := s.Get("user")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("tom"))

		s.Delete("user")
		_, ok = s.Get("user")
		Expect(ok).To(BeFalse())
	})

	It("the default cookie name is litefs.sid", func() {
		Expect(newManager().CookieName()).To(Equal(DefaultCookieName))
		Expect(DefaultCookieName).To(Equal("litefs.sid"))
	})
})
