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

package cor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
)

// BaseContext is the default Context. It is not safe for concurrent use;
// commands that fan out must collect results before touching it.
type BaseContext struct {
	data      map[string]interface{}
	errors    map[string]error
	recorded  int
	tempFiles []string
	releases  []func() error
	context   context.Context
}

// NewBaseContext returns an empty context with a background Go context.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
		context:   context.Background(),
	}
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close runs deferred releases last-in first-out, then removes temp files.
// Files that are already gone are not reported.
func (c *BaseContext) Close() {
	for i := len(c.releases) - 1; i >= 0; i-- {
		if err := c.releases[i](); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
	c.releases = nil

	for _, file := range c.tempFiles {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove temporary file", "file", file, "error", err)
		}
	}
	c.tempFiles = c.tempFiles[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

func (c *BaseContext) Defer(release func() error) {
	c.releases = append(c.releases, release)
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
	c.recorded++
}

func (c *BaseContext) ErrorCount() int {
	return c.recorded
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Err joins the recorded errors ordered by command name so the message is
// stable across runs.
func (c *BaseContext) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.errors))
	for k := range c.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, c.errors[k])
	}
	return errors.Join(errs...)
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
