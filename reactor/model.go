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

package reactor

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/litefs/errors"
	liblog "github.com/nabbar/litefs/logger"
	libsio "github.com/nabbar/litefs/sockio"
)

// cnx is one reactor table entry: the waker pair of a connection task
// and its cancellation. Armed flags track which directions are
// currently registered with the kernel.
type cnx struct {
	rd chan struct{}
	wr chan struct{}

	cnl context.CancelFunc

	armR bool
	armW bool
}

type rtr struct {
	ep  int
	lfd int

	h string
	o int

	x context.Context
	n context.CancelFunc

	mu  sync.Mutex
	tbl map[int]*cnx

	hdl ConnHandler
	log liblog.Logger

	stp atomic.Bool
	wg  sync.WaitGroup
}

func newReactor(ctx context.Context, host string, port, backlog int, hdl ConnHandler, log liblog.Logger) (Reactor, liberr.Error) {
	if ctx == nil {
		ctx = context.Background()
	}

	lfd, h, o, err := listen(host, port, backlog)
	if err != nil {
		return nil, err
	}

	ep, e := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if e != nil {
		_ = unix.Close(lfd)
		return nil, ErrorEpollCreate.Error(e)
	}

	e = unix.EpollCtl(ep, unix.EPOLL_CTL_ADD, lfd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET,
		Fd:     int32(lfd),
	})
	if e != nil {
		_ = unix.Close(lfd)
		_ = unix.Close(ep)
		return nil, ErrorEpollRegister.Error(e)
	}

	x, n := context.WithCancel(ctx)

	return &rtr{
		ep:  ep,
		lfd: lfd,
		h:   h,
		o:   o,
		x:   x,
		n:   n,
		tbl: make(map[int]*cnx),
		hdl: hdl,
		log: log,
	}, nil
}

// listen opens the non-blocking listening socket.
func listen(host string, port, backlog int) (int, string, int, liberr.Error) {
	addr, e := net.ResolveTCPAddr("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if e != nil {
		return -1, "", 0, ErrorAddressResolve.Error(e)
	}

	var (
		fam int
		sa  unix.Sockaddr
	)

	if ip4 := addr.IP.To4(); ip4 != nil || addr.IP == nil {
		s := &unix.SockaddrInet4{Port: addr.Port}
		if ip4 != nil {
			copy(s.Addr[:], ip4)
		}
		fam, sa = unix.AF_INET, s
	} else {
		s := &unix.SockaddrInet6{Port: addr.Port}
		copy(s.Addr[:], addr.IP.To16())
		fam, sa = unix.AF_INET6, s
	}

	fd, e := unix.Socket(fam, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if e != nil {
		return -1, "", 0, ErrorSocketCreate.Error(e)
	}

	if e = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
		_ = unix.Close(fd)
		return -1, "", 0, ErrorSocketOption.Error(e)
	}

	if e = unix.Bind(fd, sa); e != nil {
		_ = unix.Close(fd)
		return -1, "", 0, ErrorSocketBind.Error(e)
	}

	if e = unix.Listen(fd, backlog); e != nil {
		_ = unix.Close(fd)
		return -1, "", 0, ErrorSocketListen.Error(e)
	}

	// the kernel picks the port when 0 is requested
	bound := addr.Port
	if sn, e := unix.Getsockname(fd); e == nil {
		switch a := sn.(type) {
		case *unix.SockaddrInet4:
			bound = a.Port
		case *unix.SockaddrInet6:
			bound = a.Port
		}
	}

	return fd, addr.IP.String(), bound, nil
}

func (r *rtr) Host() string {
	return r.h
}

func (r *rtr) Port() int {
	return r.o
}

func (r *rtr) Run(pollInterval time.Duration) liberr.Error {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	defer r.cleanup()

	events := make([]unix.EpollEvent, 128)

	for !r.stp.Load() {
		n, e := unix.EpollWait(r.ep, events, int(pollInterval.Milliseconds()))

		if e != nil {
			if errors.Is(e, unix.EINTR) {
				continue
			}
			if r.stp.Load() {
				return nil
			}
			return ErrorEpollWait.Error(e)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			if fd == r.lfd {
				if err := r.acceptDrain(); err != nil {
					return err
				}
				continue
			}

			r.dispatchEvent(fd, ev.Events)
		}
	}

	return nil
}

// acceptDrain accepts until would-block, as required by edge-triggered
// readiness on the listening descriptor.
func (r *rtr) acceptDrain() liberr.Error {
	for {
		nfd, sa, e := unix.Accept4(r.lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)

		if e != nil {
			switch {
			case errors.Is(e, unix.EAGAIN) || errors.Is(e, unix.EWOULDBLOCK):
				return nil
			case errors.Is(e, unix.EINTR):
				continue
			case errors.Is(e, unix.EMFILE) || errors.Is(e, unix.ENFILE):
				return ErrorDescriptorExhausted.Error(e)
			default:
				r.log.LogError("accept", e)
				return nil
			}
		}

		_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		r.spawn(nfd, sa)
	}
}

// spawn registers the accepted descriptor and starts its connection
// task.
func (r *rtr) spawn(fd int, sa unix.Sockaddr) {
	host, port := peerAddr(sa)

	ctx, cnl := context.WithCancel(r.x)

	c := &cnx{
		rd:  make(chan struct{}, 1),
		wr:  make(chan struct{}, 1),
		cnl: cnl,
	}

	if e := unix.EpollCtl(r.ep, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLET,
		Fd:     int32(fd),
	}); e != nil {
		r.log.LogError("epoll register", e)
		cnl()
		_ = unix.Close(fd)
		return
	}

	r.mu.Lock()
	r.tbl[fd] = c
	r.mu.Unlock()

	s := libsio.New(ctx, fd, host, port, r)

	r.wg.Add(1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("connection task panic: %v", rec)
			}
			r.done(fd, s)
			r.wg.Done()
		}()

		r.hdl(ctx, s)
	}()
}

// done removes the descriptor from the table and closes it once its
// task has returned.
func (r *rtr) done(fd int, s libsio.Stream) {
	r.mu.Lock()
	c := r.tbl[fd]
	delete(r.tbl, fd)
	r.mu.Unlock()

	if c != nil {
		c.cnl()
	}

	_ = unix.EpollCtl(r.ep, unix.EPOLL_CTL_DEL, fd, nil)

	if e := s.Close(); e != nil {
		r.log.LogError("close connection", e)
	}
}

// dispatchEvent resumes or cancels the task bound to the descriptor.
func (r *rtr) dispatchEvent(fd int, events uint32) {
	r.mu.Lock()
	c := r.tbl[fd]

	if c == nil {
		r.mu.Unlock()
		return
	}

	if events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		r.mu.Unlock()
		c.cnl()
		return
	}

	if events&unix.EPOLLIN != 0 {
		c.armR = false
		wake(c.rd)
	}

	if events&unix.EPOLLOUT != 0 {
		c.armW = false
		wake(c.wr)
	}

	r.mu.Unlock()
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Wait implements sockio.Poller. Arming a direction folds any already
// registered complementary direction into the same kernel
// modification; one-shot semantics clear the registration when the
// event fires.
func (r *rtr) Wait(ctx context.Context, fd int, write bool) error {
	r.mu.Lock()

	c := r.tbl[fd]
	if c == nil {
		r.mu.Unlock()
		return ErrorDescriptorUnknown.Error(nil)
	}

	if write {
		c.armW = true
	} else {
		c.armR = true
	}

	var ev uint32 = unix.EPOLLET | unix.EPOLLONESHOT
	if c.armR {
		ev |= unix.EPOLLIN
	}
	if c.armW {
		ev |= unix.EPOLLOUT
	}

	e := unix.EpollCtl(r.ep, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: ev,
		Fd:     int32(fd),
	})

	var ch chan struct{}
	if write {
		ch = c.wr
	} else {
		ch = c.rd
	}

	r.mu.Unlock()

	if e != nil {
		return ErrorEpollRegister.Error(e)
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *rtr) Shutdown() {
	r.stp.Store(true)
	r.n()
}

func (r *rtr) cleanup() {
	r.n()

	_ = unix.EpollCtl(r.ep, unix.EPOLL_CTL_DEL, r.lfd, nil)
	_ = unix.Close(r.lfd)

	r.wg.Wait()

	_ = unix.Close(r.ep)
}

func peerAddr(sa unix.Sockaddr) (string, int) {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String(), a.Port
	case *unix.SockaddrInet6:
		return net.IP(a.Addr[:]).String(), a.Port
	}

	return "", 0
}
