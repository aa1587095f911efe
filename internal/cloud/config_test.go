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

package cloud_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	test "github.com/jaycherian/gcp-go-video-studio/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaultsAreValid(t *testing.T) {
	config := cloud.NewConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 7000, config.Audio.MaxChars)
	assert.Equal(t, 24000, config.Audio.SampleRate)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", config.Speech.Model)
	assert.Equal(t, "imagen-4.0-generate-001", config.Images.Model)
	assert.Equal(t, "22", config.YouTube.CategoryID)
	assert.Equal(t, model.VerticalBlur, config.Shorts.Method)
	assert.Len(t, config.Script.Sections, 5)
	assert.Equal(t, 1920, config.Video.Encode.Width)
	assert.Equal(t, model.VoiceCharon, config.Style("terror").Voice)
	assert.Equal(t, config.Styles[model.DefaultStyleKey], config.Style("no-such-style"))
}

func TestLoadConfigLayersRuntimeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(`
[application]
google_project_id = "base-project"
thread_pool_size = 8

[audio]
max_chars = 5000
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(`
[application]
google_project_id = "test-project"

[styles.whisper]
name = "Whisper"
instructions = "[Whisper every line.]"
voice = "Kore"
`), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "test")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
	assert.Equal(t, 8, config.Application.ThreadPoolSize)
	assert.Equal(t, 5000, config.Audio.MaxChars)
	assert.Equal(t, 24000, config.Audio.SampleRate)
	assert.Equal(t, "[Whisper every line.]", config.Style("whisper").Instructions)
	assert.Contains(t, config.Styles, "terror")
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\n"), 0o644))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "")

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestLoadConfigDefaultsRuntimeToLocal(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, "configs")
	t.Setenv(cloud.EnvConfigRuntime, "")
	base, runtime := cloud.ConfigFiles()
	assert.Equal(t, filepath.Join("configs", ".env.toml"), base)
	assert.Equal(t, filepath.Join("configs", ".env.local.toml"), runtime)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	config := cloud.NewConfig()
	config.Application.Backend = cloud.BackendVertex
	config.Audio.Channels = 6
	config.Speech.Provider = "festival"
	config.PromptTemplates.Script = "{{ .Topic "
	delete(config.AgentModels, cloud.ModelVision)

	err := config.Validate()
	require.Error(t, err)
	for _, want := range []string{"google_project_id", "audio.channels", "speech.provider", "prompt_templates.script", `"vision"`} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestRepositoryTestConfig(t *testing.T) {
	config := test.GetConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, cloud.ConcatNative, config.Audio.Concat)
	assert.False(t, config.YouTube.Enabled)
	assert.False(t, config.Shorts.KeepClips)
	assert.Equal(t, 2, config.Application.ThreadPoolSize)
	assert.Contains(t, config.Video.Categories, "historia")
	assert.Contains(t, config.Video.Categories, "paisaje")
}
