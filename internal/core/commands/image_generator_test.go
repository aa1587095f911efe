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
	"context"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageModel struct {
	prompts []string
}

func (f *fakeImageModel) GenerateImage(_ context.Context, prompt string) ([]byte, error) {
	f.prompts = append(f.prompts, prompt)
	switch prompt {
	case "bad":
		return nil, errBoom
	case "text":
		return []byte("sorry, no image"), nil
	}
	return pngBytes, nil
}

func TestImageGeneratorSkipsFailures(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{})
	chCtx := newContext(t, p)
	chCtx.Add(commands.PromptsParam, []string{"a castle", "bad", "text", "a forum"})

	images := &fakeImageModel{}
	cmd := commands.NewImageGenerator("images", images)
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	assert.Equal(t, []string{"a castle", "bad", "text", "a forum"}, images.prompts)
	dir := filepath.Join(p.Dir, model.ImagesFolder)
	assert.Equal(t, []string{
		filepath.Join(dir, "imagen_01.png"),
		filepath.Join(dir, "imagen_04.png"),
	}, chCtx.Get(commands.ImagesParam))
	assert.FileExists(t, filepath.Join(dir, "imagen_01.png"))
	assert.NoFileExists(t, filepath.Join(dir, "imagen_02.png"))
}

func TestImageGeneratorFailsWithoutImages(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{})
	chCtx := newContext(t, p)
	chCtx.Add(commands.PromptsParam, []string{"bad", "text"})

	commands.NewImageGenerator("images", &fakeImageModel{}).Execute(chCtx)
	assert.ErrorIs(t, chCtx.Err(), commands.ErrNoImages)
	assert.Nil(t, chCtx.Get(commands.ImagesParam))
}
