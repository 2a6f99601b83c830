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

package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	liberr "github.com/nabbar/litefs/errors"
)

const timestampFormat = "2006/01/02 15:04:05"

type lgr struct {
	m sync.Mutex
	l *logrus.Logger
	f *os.File
	v Level
}

func newLogger(opt Options) (Logger, liberr.Error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  timestampFormat,
		DisableColors:    opt.DisableColor,
		DisableSorting:   true,
		QuoteEmptyFields: true,
	})

	o := &lgr{
		l: l,
		v: opt.Level,
	}

	o.SetLevel(opt.Level)

	if opt.LogFile != "" {
		f, e := os.OpenFile(opt.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if e != nil {
			return nil, ErrorFileOpen.Error(e)
		}

		o.f = f
		l.SetOutput(f)
	} else {
		l.SetOutput(os.Stderr)
	}

	return o, nil
}

func (o *lgr) SetLevel(lvl Level) {
	o.m.Lock()
	defer o.m.Unlock()

	o.v = lvl

	switch lvl {
	case DebugLevel:
		o.l.SetLevel(logrus.DebugLevel)
	case InfoLevel:
		o.l.SetLevel(logrus.InfoLevel)
	case WarnLevel:
		o.l.SetLevel(logrus.WarnLevel)
	case ErrorLevel:
		o.l.SetLevel(logrus.ErrorLevel)
	case NilLevel:
		o.l.SetLevel(logrus.PanicLevel)
	}
}

func (o *lgr) GetLevel() Level {
	o.m.Lock()
	defer o.m.Unlock()

	return o.v
}

func (o *lgr) Debug(format string, args ...interface{}) {
	o.l.Debugf(format, args...)
}

func (o *lgr) Info(format string, args ...interface{}) {
	o.l.Infof(format, args...)
}

func (o *lgr) Warning(format string, args ...interface{}) {
	o.l.Warnf(format, args...)
}

func (o *lgr) Error(format string, args ...interface{}) {
	o.l.Errorf(format, args...)
}

func (o *lgr) LogError(msg string, err error) bool {
	if err == nil {
		return false
	}

	if e, ok := err.(liberr.Error); ok && e.GetTrace() != "" {
		o.l.WithField("trace", e.GetTrace()).Errorf("%s: %v", msg, err)
	} else {
		o.l.Errorf("%s: %v", msg, err)
	}

	return true
}

func (o *lgr) Access(remote, method, path, proto string, status int, size int) {
	o.l.WithFields(logrus.Fields{
		"remote": remote,
		"status": status,
		"size":   size,
	}).Infof("\"%s %s %s\"", method, path, proto)
}

func (o *lgr) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.f != nil {
		f := o.f
		o.f = nil
		o.l.SetOutput(os.Stderr)
		return f.Close()
	}

	return nil
}
