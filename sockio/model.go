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

package sockio

import (
	"bytes"
	"context"
	"errors"
	"io"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/litefs/errors"
)

type sio struct {
	x  context.Context
	fd int
	h  string
	o  int
	p  Poller

	rb []byte
	rp int // read position into rb
	rl int // filled length of rb
	re bool

	wb []byte
}

func (o *sio) Fd() int {
	return o.fd
}

func (o *sio) RemoteHost() string {
	return o.h
}

func (o *sio) RemotePort() int {
	return o.o
}

// fill reads from the socket into the empty read buffer, suspending on
// would-block. Edge-triggered contract: suspension happens only once
// the socket returned EAGAIN.
func (o *sio) fill() liberr.Error {
	if o.re {
		return ErrorSocketEOF.Error(io.EOF)
	}

	for {
		n, e := unix.Read(o.fd, o.rb)

		if n > 0 {
			o.rp = 0
			o.rl = n
			return nil
		}

		if n == 0 && e == nil {
			o.re = true
			return ErrorSocketEOF.Error(io.EOF)
		}

		switch {
		case errors.Is(e, unix.EAGAIN) || errors.Is(e, unix.EWOULDBLOCK):
			if err := o.p.Wait(o.x, o.fd, false); err != nil {
				return ErrorSocketClosed.Error(err)
			}
		case errors.Is(e, unix.EINTR):
			// retry
		default:
			return ErrorSocketRead.Error(e)
		}
	}
}

func (o *sio) buffered() int {
	return o.rl - o.rp
}

func (o *sio) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if o.buffered() == 0 {
		if err := o.fill(); err != nil {
			if err.HasCode(ErrorSocketEOF) {
				return 0, io.EOF
			}
			return 0, err
		}
	}

	n := copy(p, o.rb[o.rp:o.rl])
	o.rp += n
	return n, nil
}

func (o *sio) ReadLine(max int) ([]byte, liberr.Error) {
	var buf bytes.Buffer

	for buf.Len() < max {
		if o.buffered() == 0 {
			if err := o.fill(); err != nil {
				if err.HasCode(ErrorSocketEOF) && buf.Len() > 0 {
					return buf.Bytes(), nil
				}
				return nil, err
			}
		}

		chunk := o.rb[o.rp:o.rl]
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			room := max - buf.Len()
			if i+1 <= room {
				buf.Write(chunk[:i+1])
				o.rp += i + 1
				return buf.Bytes(), nil
			}
			buf.Write(chunk[:room])
			o.rp += room
			return buf.Bytes(), nil
		}

		room := max - buf.Len()
		if len(chunk) > room {
			chunk = chunk[:room]
		}
		buf.Write(chunk)
		o.rp += len(chunk)
	}

	return buf.Bytes(), nil
}

func (o *sio) ReadExact(n int) ([]byte, liberr.Error) {
	res := make([]byte, 0, n)

	for len(res) < n {
		if o.buffered() == 0 {
			if err := o.fill(); err != nil {
				if err.HasCode(ErrorSocketEOF) {
					return nil, ErrorSocketEOF.Error(io.ErrUnexpectedEOF)
				}
				return nil, err
			}
		}

		chunk := o.rb[o.rp:o.rl]
		if len(chunk) > n-len(res) {
			chunk = chunk[:n-len(res)]
		}

		res = append(res, chunk...)
		o.rp += len(chunk)
	}

	return res, nil
}

func (o *sio) Write(p []byte) (int, error) {
	total := len(p)

	for len(p) > 0 {
		room := cap(o.wb) - len(o.wb)

		if room == 0 {
			if err := o.Flush(); err != nil {
				return total - len(p), err
			}
			continue
		}

		if room > len(p) {
			room = len(p)
		}

		o.wb = append(o.wb, p[:room]...)
		p = p[room:]
	}

	return total, nil
}

func (o *sio) Flush() liberr.Error {
	for len(o.wb) > 0 {
		n, e := unix.Write(o.fd, o.wb)

		if n > 0 {
			o.wb = o.wb[:copy(o.wb, o.wb[n:])]
			continue
		}

		switch {
		case errors.Is(e, unix.EAGAIN) || errors.Is(e, unix.EWOULDBLOCK):
			if err := o.p.Wait(o.x, o.fd, true); err != nil {
				return ErrorSocketClosed.Error(err)
			}
		case errors.Is(e, unix.EINTR):
			// retry
		default:
			return ErrorSocketWrite.Error(e)
		}
	}

	return nil
}

func (o *sio) Close() error {
	if e := unix.Shutdown(o.fd, unix.SHUT_RDWR); e != nil && !errors.Is(e, unix.ENOTCONN) {
		_ = unix.Close(o.fd)
		return ErrorSocketShutdown.Error(e)
	}

	if e := unix.Close(o.fd); e != nil {
		return ErrorSocketClose.Error(e)
	}

	return nil
}
