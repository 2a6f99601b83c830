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

// Package logger provides the leveled logging used across the module,
// backed by logrus, with an optional log-file output and an access-line
// helper for the HTTP serving path.
package logger

import (
	"io"

	liberr "github.com/nabbar/litefs/errors"
)

// Level is the minimal severity a message must have to be emitted.
type Level uint8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	NilLevel
)

// Options configures a new Logger.
type Options struct {
	// Level is the minimal emitted severity.
	Level Level

	// LogFile, when not empty, routes the output to the given file
	// (append mode) instead of stderr.
	LogFile string

	// DisableColor disables terminal coloring of the output.
	DisableColor bool
}

// Logger is the logging surface used by the module.
type Logger interface {
	io.Closer

	SetLevel(lvl Level)
	GetLevel() Level

	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})

	// LogError logs the given error with its trace when the error
	// carries one. A nil error is ignored. Returns true if something
	// has been logged.
	LogError(msg string, err error) bool

	// Access emits one access line for a served request.
	Access(remote, method, path, proto string, status int, size int)
}

// New returns a new Logger for the given options.
func New(opt Options) (Logger, liberr.Error) {
	return newLogger(opt)
}
