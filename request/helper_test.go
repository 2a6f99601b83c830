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

package request_test

import (
	"context"

	"golang.org/x/sys/unix"

	libsio "github.com/nabbar/litefs/sockio"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type noopPoller struct{}

func (noopPoller) Wait(_ context.Context, _ int, _ bool) error {
	return nil
}

// feedStream returns a stream delivering the given raw request bytes
// from a blocking socket pair.
func feedStream(raw string) libsio.Stream {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	Expect(err).ToNot(HaveOccurred())

	_, err = unix.Write(fds[0], []byte(raw))
	Expect(err).ToNot(HaveOccurred())
	Expect(unix.Shutdown(fds[0], unix.SHUT_WR)).To(Succeed())

	s := libsio.New(context.Background(), fds[1], "127.0.0.1", 54321, noopPoller{})

	DeferCleanup(func() {
		_ = unix.Close(fds[0])
		_ = s.Close()
	})

	return s
}
