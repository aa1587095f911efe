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

package commands_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)

// newProject creates a project in a temporary store.
func newProject(t *testing.T, settings model.ProjectSettings) (*services.ProjectService, *model.Project) {
	t.Helper()
	store := services.NewProjectService(t.TempDir())
	store.Now = func() time.Time { return createdAt }
	p, err := store.Create("Roma antigua", settings)
	require.NoError(t, err)
	return store, p
}

func newContext(t *testing.T, p *model.Project) cor.Context {
	t.Helper()
	chCtx := cor.NewBaseContext()
	t.Cleanup(chCtx.Close)
	if p != nil {
		chCtx.Add(commands.ProjectParam, p)
	}
	return chCtx
}

// fakeStep runs a function as a command.
type fakeStep struct {
	cor.BaseCommand
	executable bool
	run        func(cor.Context) error
}

func newFakeStep(name string, run func(cor.Context) error) *fakeStep {
	return &fakeStep{BaseCommand: *cor.NewBaseCommand(name), executable: true, run: run}
}

func (f *fakeStep) IsExecutable(cor.Context) bool {
	return f.executable
}

func (f *fakeStep) Execute(context cor.Context) {
	if err := f.run(context); err != nil {
		f.Fail(context, err)
		return
	}
	f.Succeed(context)
}

var errBoom = errors.New("boom")

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
