// Package compiler runs makensis on exported scripts.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	nsiderr "github.com/terassyi/nsid/internal/errors"
)

// Compiler invokes makensis.
type Compiler struct {
	path      string
	workDir   string
	verbosity int
	defines   map[string]string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithWorkDir sets the directory makensis runs in. Relative File sources
// in a script resolve against it, so callers pass the project directory.
func WithWorkDir(dir string) Option {
	return func(c *Compiler) {
		c.workDir = dir
	}
}

// WithVerbosity sets the makensis /V level (0-4).
func WithVerbosity(v int) Option {
	return func(c *Compiler) {
		c.verbosity = min(max(v, 0), 4)
	}
}

// WithDefine passes a /D symbol to the compiler.
func WithDefine(name, value string) Option {
	return func(c *Compiler) {
		c.defines[name] = value
	}
}

// NewCompiler creates a Compiler for the executable at path. A bare name
// is looked up in PATH when the compiler runs.
func NewCompiler(path string, opts ...Option) *Compiler {
	c := &Compiler{
		path:      path,
		verbosity: 2,
		defines:   map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a successful compiler run.
type Result struct {
	Script   string
	Output   string
	Duration time.Duration
}

// Args returns the makensis arguments used to compile script. makensis
// changes into the script's directory unless told not to, which would
// defeat WithWorkDir.
func (c *Compiler) Args(script string) []string {
	args := []string{fmt.Sprintf("-V%d", c.verbosity)}
	if c.workDir != "" {
		args = append(args, "-NOCD")
	}
	names := make([]string, 0, len(c.defines))
	for name := range c.defines {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		args = append(args, fmt.Sprintf("-D%s=%s", name, c.defines[name]))
	}
	return append(args, script)
}

// Compile runs makensis on the script file. The script path is made
// absolute so it does not depend on the working directory.
func (c *Compiler) Compile(ctx context.Context, script string) (*Result, error) {
	bin, err := exec.LookPath(c.path)
	if err != nil {
		return nil, nsiderr.NewCompileError(c.path, script, "", err)
	}
	abs, err := filepath.Abs(script)
	if err != nil {
		return nil, nsiderr.NewCompileError(bin, script, "", err)
	}

	args := c.Args(abs)
	slog.Debug("executing makensis", "compiler", bin, "args", args, "dir", c.workDir)

	cmd := exec.CommandContext(ctx, bin, args...)
	if c.workDir != "" {
		cmd.Dir = c.workDir
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		slog.Error("makensis failed", "script", abs, "error", err)
		return nil, nsiderr.NewCompileError(bin, abs, string(output), err)
	}

	res := &Result{Script: abs, Output: string(output), Duration: time.Since(start)}
	slog.Debug("makensis succeeded", "script", abs, "duration", res.Duration)
	return res, nil
}

// Version returns the compiler's version string, e.g. "v3.10".
func (c *Compiler) Version(ctx context.Context) (string, error) {
	bin, err := exec.LookPath(c.path)
	if err != nil {
		return "", nsiderr.NewCompileError(c.path, "", "", err)
	}
	out, err := exec.CommandContext(ctx, bin, "-VERSION").Output()
	if err != nil {
		return "", nsiderr.NewCompileError(bin, "", string(out), err)
	}
	return strings.TrimSpace(string(out)), nil
}
