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

package sockio_test

import (
	"context"
	"io"

	"golang.org/x/sys/unix"

	. "github.com/nabbar/litefs/sockio"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// noopPoller satisfies Poller for blocking test sockets, which never
// return EAGAIN.
type noopPoller struct{}

func (noopPoller) Wait(_ context.Context, _ int, _ bool) error {
	return nil
}

func pair() (int, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	Expect(err).ToNot(HaveOccurred())
	return fds[0], fds[1]
}

func feed(fd int, data string) {
	_, err := unix.Write(fd, []byte(data))
	Expect(err).ToNot(HaveOccurred())
}

var _ = Describe("SockIO", func() {
	It("ReadLine returns one line including the LF", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		feed(a, "GET / HTTP/1.1\r\nHost: x\r\n")

		line, err := s.ReadLine(DefaultBufferSize)
		Expect(err).To(BeNil())
		Expect(string(line)).To(Equal("GET / HTTP/1.1\r\n"))

		line, err = s.ReadLine(DefaultBufferSize)
		Expect(err).To(BeNil())
		Expect(string(line)).To(Equal("Host: x\r\n"))
	})

	It("ReadLine never exceeds the given bound", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		feed(a, "abcdefgh\n")

		line, err := s.ReadLine(4)
		Expect(err).To(BeNil())
		Expect(string(line)).To(Equal("abcd"))
	})

	It("ReadExact returns exactly the requested bytes", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		feed(a, "0123456789")

		body, err := s.ReadExact(6)
		Expect(err).To(BeNil())
		Expect(string(body)).To(Equal("012345"))

		rest, err := s.ReadExact(4)
		Expect(err).To(BeNil())
		Expect(string(rest)).To(Equal("6789"))
	})

	It("Read serves buffered bytes as an io.Reader", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		feed(a, "stream-data")
		_ = unix.Shutdown(a, unix.SHUT_WR)

		all, err := io.ReadAll(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(all)).To(Equal("stream-data"))
	})

	It("Write buffers until Flush pushes to the peer", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		n, err := s.Write([]byte("hello "))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(6))

		_, err = s.Write([]byte("world"))
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Flush()).To(BeNil())

		buf := make([]byte, 64)
		rn, rerr := unix.Read(a, buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:rn])).To(Equal("hello world"))
	})

	It("peer address accessors report the construction values", func() {
		_, b := pair()

		s := New(context.Background(), b, "10.0.0.9", 4242, noopPoller{})
		DeferCleanup(func() { _ = s.Close() })

		Expect(s.RemoteHost()).To(Equal("10.0.0.9"))
		Expect(s.RemotePort()).To(Equal(4242))
		Expect(s.Fd()).To(Equal(b))
	})

	It("Close shuts the socket down for the peer", func() {
		a, b := pair()
		DeferCleanup(func() { _ = unix.Close(a) })

		s := New(context.Background(), b, "127.0.0.1", 12345, noopPoller{})
		Expect(s.Close()).To(BeNil())

		buf := make([]byte, 8)
		n, _ := unix.Read(a, buf)
		Expect(n).To(Equal(0))
	})
})
