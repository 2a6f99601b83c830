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

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	libcfg "github.com/nabbar/litefs/config"
	liberr "github.com/nabbar/litefs/errors"
	libhtp "github.com/nabbar/litefs/httpd"
	liblog "github.com/nabbar/litefs/logger"
)

var (
	cfgFile string
	cfg     = libcfg.Default()
)

var rootCmd = &cobra.Command{
	Use:           "litefs",
	Short:         "litefs serves a directory tree as a web application",
	Long:          "litefs is a single-threaded, event-driven HTTP/1.1 origin server\nserving static assets, templates, handler modules and CGI scripts\nfrom a document root, with in-memory caches invalidated by\nfilesystem change notifications.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&cfg.Host, "host", "H", cfg.Host, "bind address")
	f.IntVarP(&cfg.Port, "port", "P", cfg.Port, "listen port")
	f.StringVar(&cfg.WebRoot, "webroot", cfg.WebRoot, "served document root")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug mode")
	f.StringVar(&cfg.NotFound, "not-found", cfg.NotFound, "page served on not found")
	f.StringVar(&cfg.DefaultPage, "default-page", cfg.DefaultPage, "page served for a directory path")
	f.StringVar(&cfg.CGIDir, "cgi-dir", cfg.CGIDir, "web path prefix running scripts as CGI")
	f.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	f.IntVar(&cfg.Listen, "listen", cfg.Listen, "listen backlog")
	f.StringVar(&cfgFile, "config", "", "config file overlaying the defaults")
}

func run(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		fileCfg := libcfg.Default()

		if err := libcfg.Load(cfgFile, fileCfg); err != nil {
			return err
		}

		applyFile(cmd, fileCfg)
	}

	if err := cfg.Expand(); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl := liblog.InfoLevel
	if cfg.Debug {
		lvl = liblog.DebugLevel
	}

	log, err := liblog.New(liblog.Options{
		Level:   lvl,
		LogFile: cfg.LogFile,
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = log.Close()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := libhtp.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	color.New(color.FgGreen).Printf("server is running at %s:%d\n", srv.Host(), srv.Port())
	color.New(color.FgHiBlack).Printf("hit ctrl-c to quit.\n\n")

	return asStdError(srv.Run(0))
}

// applyFile overlays the config file under any explicitly given flag.
func applyFile(cmd *cobra.Command, fileCfg *libcfg.Config) {
	f := cmd.Flags()

	if !f.Changed("host") {
		cfg.Host = fileCfg.Host
	}
	if !f.Changed("port") {
		cfg.Port = fileCfg.Port
	}
	if !f.Changed("webroot") {
		cfg.WebRoot = fileCfg.WebRoot
	}
	if !f.Changed("debug") {
		cfg.Debug = fileCfg.Debug
	}
	if !f.Changed("not-found") {
		cfg.NotFound = fileCfg.NotFound
	}
	if !f.Changed("default-page") {
		cfg.DefaultPage = fileCfg.DefaultPage
	}
	if !f.Changed("cgi-dir") {
		cfg.CGIDir = fileCfg.CGIDir
	}
	if !f.Changed("log") {
		cfg.LogFile = fileCfg.LogFile
	}
	if !f.Changed("listen") {
		cfg.Listen = fileCfg.Listen
	}
}

// asStdError narrows a nil typed error into a plain nil for cobra.
func asStdError(err liberr.Error) error {
	if err == nil {
		return nil
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
