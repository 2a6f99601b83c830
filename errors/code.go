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

package errors

import (
	"math"
	"strconv"
)

// idMsgFct stores the mapping between error codes and their message functions.
var idMsgFct = make(map[CodeError]Message)

// Message is a function type that generates error messages based on error codes.
// Each package registers one Message function covering its own code range.
type Message func(code CodeError) (message string)

// CodeError represents a numeric error code.
// It is a uint16 allowing codes from 0 to 65535, partitioned per
// package by the MinPkg constants defined in modules.go.
type CodeError uint16

const (
	// UnknownError represents an error with no specific code (0).
	UnknownError CodeError = 0

	// UnknownMessage is the default message for UnknownError.
	UnknownMessage = "unknown error"
)

// ParseCodeError returns a CodeError value based on the input int64 value,
// clamping negative values to UnknownError and overflowing values to the
// maximum uint16.
func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	} else {
		return CodeError(i)
	}
}

// Uint16 returns the CodeError value as a uint16.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Int returns the CodeError value as an int.
func (c CodeError) Int() int {
	return int(c)
}

// String returns the decimal string representation of the CodeError value.
func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the message string registered for the CodeError value.
// If the code is not registered, UnknownMessage is returned.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	for _, f := range idMsgFct {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// Error returns a new Error instance for the given code, chaining the
// given parent errors if any.
func (c CodeError) Error(p ...error) Error {
	return newError(c, c.Message(), p...)
}

// ErrorParent returns a new Error instance for the given code with the
// given parent errors. Kept distinct from Error for call sites that
// always carry a parent.
func (c CodeError) ErrorParent(p ...error) Error {
	return c.Error(p...)
}

// Iferror returns a new Error instance for the given code wrapping the
// given standard error, or nil if the given error is nil.
func (c CodeError) Iferror(e error) Error {
	if e == nil {
		return nil
	}

	return c.Error(e)
}

// IfError returns a new Error instance for the given code wrapping the
// given Error, or nil if the given Error is nil.
func (c CodeError) IfError(e Error) Error {
	if e == nil {
		return nil
	}

	return c.Error(e)
}

// RegisterIdFctMessage registers the message function for a package's
// base code. Calling it again for the same base code replaces the
// registered function.
func RegisterIdFctMessage(minPkg CodeError, fct Message) {
	idMsgFct[minPkg] = fct
}

// ExistInMapMessage checks if the given code resolves to a registered,
// non-empty message.
func ExistInMapMessage(code CodeError) bool {
	for _, f := range idMsgFct {
		if m := f(code); m != "" {
			return true
		}
	}

	return false
}
