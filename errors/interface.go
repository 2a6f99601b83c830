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

// Package errors provides error handling with error codes, caller tracing,
// and parent chaining.
//
// Each package of this module owns a slice of the code space (see
// modules.go) and registers the messages for its codes from an init()
// in its error.go file.
//
// Example usage:
//
//	import liberr "github.com/nabbar/litefs/errors"
//
//	const ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgConfig
//
//	err := ErrorParamEmpty.Error(nil)
//	if err.IsCode(ErrorParamEmpty) {
//	    ...
//	}
package errors

import "errors"

// FuncMap is a callback function type used for iterating over error
// hierarchies. Return false to stop the iteration.
type FuncMap func(e error) bool

// Error is the main interface extending Go's standard error with an
// error code, a parent chain and the caller trace captured at creation.
//
// Modification methods (Add, SetParent) are not safe for concurrent
// use; all read methods are.
type Error interface {
	error

	// IsCode checks if the error's own code matches the given code.
	// Parent errors are not checked.
	IsCode(code CodeError) bool
	// HasCode checks if the error or any parent carries the given code.
	HasCode(code CodeError) bool
	// GetCode returns the error's own code.
	GetCode() CodeError
	// GetParentCode returns the codes of the error and all its parents.
	GetParentCode() []CodeError

	// Is implements the interface checked by errors.Is.
	Is(e error) bool
	// IsError checks if the error's own message matches the given error's.
	IsError(e error) bool
	// HasError checks if the error or any parent matches the given error.
	HasError(err error) bool
	// HasParent returns true if at least one parent is chained.
	HasParent() bool

	// Add appends the given errors to the parent chain.
	Add(parent ...error)
	// SetParent replaces the parent chain with the given errors.
	SetParent(parent ...error)
	// GetParent returns the flattened parent chain, optionally
	// prepended with the error itself.
	GetParent(withMainError bool) []error
	// Map applies the given function to the error and each parent,
	// stopping on the first false return.
	Map(fct FuncMap) bool

	// Code returns the error's own code as a uint16.
	Code() uint16
	// StringError returns the message of the error alone.
	StringError() string
	// StringErrorSlice returns the messages of the error and each parent.
	StringErrorSlice() []string
	// GetErrorSlice returns the error and each parent as standard errors.
	GetErrorSlice() []error

	// GetTrace returns the "file:line" caller trace captured at creation.
	GetTrace() string

	// Unwrap implements the interface checked by errors.As over chains.
	Unwrap() []error
}

// Is reports whether any error in err's chain matches target,
// delegating to the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsCode reports whether the given error is an Error of this package
// carrying the given code, directly or in its parent chain.
func IsCode(err error, code CodeError) bool {
	var e Error
	if errors.As(err, &e) {
		return e.HasCode(code)
	}

	return false
}

// New returns a new Error without code, wrapping the given message.
func New(message string) Error {
	return newError(UnknownError, message)
}

// MakeErrorIfError combines the given Errors into one, skipping nils.
// The first non-nil Error carries the others as parents. Returns nil
// if all given Errors are nil.
func MakeErrorIfError(err ...Error) Error {
	var res Error

	for _, e := range err {
		if e == nil {
			continue
		}
		if res == nil {
			res = e
		} else {
			res.Add(e)
		}
	}

	return res
}
