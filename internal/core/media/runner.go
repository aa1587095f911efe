// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package media drives the external audio and video tools (ffmpeg, ffprobe
// and yt-dlp). Command lines are built as plain argument slices, filter
// graphs are described declaratively, and every invocation goes through a
// Runner so the logic can be exercised without the binaries installed.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxStderr bounds how much tool output is kept on a ToolError.
const maxStderr = 4000

// Runner executes an external tool and returns its standard output.
// A failed run returns a *ToolError carrying the tool's standard error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs tools as subprocesses.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running external tool", "tool", name, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &ToolError{Tool: name, Args: args, Stderr: tail(stderr.String(), maxStderr), Err: err}
	}
	return stdout.Bytes(), nil
}

// ToolError is a failed external tool invocation. A missing binary wraps
// exec.ErrNotFound.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", filepath.Base(e.Tool), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// PreconditionError reports an input that is missing or unusable before any
// tool is started.
type PreconditionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PreconditionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// checkReadable opens every path once so missing files fail fast.
func checkReadable(op string, paths ...string) error {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return &PreconditionError{Op: op, Path: p, Err: err}
		}
		_ = f.Close()
	}
	return nil
}

// removeQuietly deletes files, logging anything other than a missing file.
func removeQuietly(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove intermediate file", "path", p, "error", err)
		}
	}
}

// partialPath is the name a tool writes to before the result is renamed to
// dest. The extension is kept so the tool can infer the container.
func partialPath(dest string) string {
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(filepath.Base(dest), ext)
	return filepath.Join(filepath.Dir(dest), "."+base+".partial"+ext)
}

// tail keeps at most the last n bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}
