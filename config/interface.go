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

// Package config holds the server configuration: defaults matching the
// CLI contract, optional file loading through viper, path expansion and
// struct validation.
package config

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/litefs/errors"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 9090
	DefaultWebRoot     = "./site"
	DefaultNotFound    = "not_found"
	DefaultPage        = "index.html"
	DefaultCGIDir      = "/cgi-bin"
	DefaultListen      = 1024
)

// Config is the server configuration model.
type Config struct {
	// Host is the bind address.
	Host string `mapstructure:"host" json:"host" yaml:"host" validate:"required"`

	// Port is the listen port; 0 binds an ephemeral port.
	Port int `mapstructure:"port" json:"port" yaml:"port" validate:"gte=0,lte=65535"`

	// WebRoot is the served document root; made absolute by Expand.
	WebRoot string `mapstructure:"webroot" json:"webroot" yaml:"webroot" validate:"required"`

	// Debug enables traceback bodies and debug logging.
	Debug bool `mapstructure:"debug" json:"debug" yaml:"debug"`

	// NotFound is the page served, when present, with status 404.
	NotFound string `mapstructure:"not_found" json:"not_found" yaml:"not_found"`

	// DefaultPage replaces an empty path leaf.
	DefaultPage string `mapstructure:"default_page" json:"default_page" yaml:"default_page" validate:"required"`

	// CGIDir is the web-rooted prefix under which scripts run as CGI.
	CGIDir string `mapstructure:"cgi_dir" json:"cgi_dir" yaml:"cgi_dir" validate:"required,startswith=/"`

	// LogFile routes the log output to a file when set.
	LogFile string `mapstructure:"log" json:"log" yaml:"log"`

	// Listen is the listen backlog.
	Listen int `mapstructure:"listen" json:"listen" yaml:"listen" validate:"gte=1"`
}

// Default returns a Config carrying the documented defaults.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		WebRoot:     DefaultWebRoot,
		Debug:       false,
		NotFound:    DefaultNotFound,
		DefaultPage: DefaultPage,
		CGIDir:      DefaultCGIDir,
		Listen:      DefaultListen,
	}
}

// Load overlays the config file at the given path onto the Config.
func Load(file string, cfg *Config) liberr.Error {
	v := viper.New()
	v.SetConfigFile(file)

	if e := v.ReadInConfig(); e != nil {
		return ErrorFileRead.Error(e)
	}

	if e := v.Unmarshal(cfg); e != nil {
		return ErrorFileUnmarshal.Error(e)
	}

	return nil
}

// Expand resolves ~ in paths and makes the webroot absolute.
func (c *Config) Expand() liberr.Error {
	w, e := homedir.Expand(c.WebRoot)
	if e != nil {
		return ErrorPathExpand.Error(e)
	}

	if w, e = filepath.Abs(w); e != nil {
		return ErrorPathExpand.Error(e)
	}

	c.WebRoot = w

	if c.LogFile != "" {
		if l, err := homedir.Expand(c.LogFile); err == nil {
			c.LogFile = l
		}
	}

	return nil
}

// Validate checks the Config model.
func (c *Config) Validate() liberr.Error {
	v := validator.New()

	if e := v.Struct(c); e != nil {
		err := ErrorValidate.Error(nil)

		if ve, ok := e.(validator.ValidationErrors); ok {
			for _, f := range ve {
				err.Add(ErrorValidateField.Error(f))
			}
		} else {
			err.Add(e)
		}

		return err
	}

	return nil
}
