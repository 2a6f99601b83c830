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

import liberr "github.com/nabbar/litefs/errors"

const (
	ErrorAddressResolve liberr.CodeError = iota + liberr.MinPkgReactor
	ErrorSocketCreate
	ErrorSocketOption
	ErrorSocketBind
	ErrorSocketListen
	ErrorEpollCreate
	ErrorEpollRegister
	ErrorEpollWait
	ErrorDescriptorExhausted
	ErrorDescriptorUnknown
)

func init() {
	liberr.RegisterIdFctMessage(liberr.MinPkgReactor, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorAddressResolve:
		return "cannot resolve listen address"
	case ErrorSocketCreate:
		return "cannot create listen socket"
	case ErrorSocketOption:
		return "cannot set socket option"
	case ErrorSocketBind:
		return "cannot bind listen socket"
	case ErrorSocketListen:
		return "cannot listen on socket"
	case ErrorEpollCreate:
		return "cannot create epoll instance"
	case ErrorEpollRegister:
		return "cannot register descriptor on epoll instance"
	case ErrorEpollWait:
		return "cannot wait on epoll instance"
	case ErrorDescriptorExhausted:
		return "descriptor exhausted on accept"
	case ErrorDescriptorUnknown:
		return "descriptor not registered on reactor"
	}

	return ""
}
