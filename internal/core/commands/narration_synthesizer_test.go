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
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNarrator struct {
	sections []string
	style    string
	voice    string
	out      string
	err      error
}

func (f *fakeNarrator) Narrate(_ context.Context, sections []string, style string, voice string, outPath string) (*narration.Result, error) {
	f.sections, f.style, f.voice, f.out = sections, style, voice, outPath
	if f.err != nil {
		return nil, f.err
	}
	return &narration.Result{Path: outPath, Chunks: len(sections), Duration: 30 * time.Second}, nil
}

func TestVoice(t *testing.T) {
	style := model.NarrationStyle{Voice: model.VoiceCharon}
	assert.Equal(t, model.VoicePuck, commands.Voice(&model.Project{Settings: model.ProjectSettings{Voice: model.VoicePuck}}, style))
	assert.Equal(t, model.VoiceCharon, commands.Voice(&model.Project{}, style))
	assert.Equal(t, model.VoiceKore, commands.Voice(&model.Project{}, model.NarrationStyle{}))
}

func TestNarrationSynthesizer(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{Style: "misterio"})
	chCtx := newContext(t, p)
	chCtx.Add(commands.ScriptParam, model.GetExampleScript())

	styles := map[string]model.NarrationStyle{
		"misterio": {Name: "Misterio", Instructions: "Read slowly", Voice: model.VoiceCharon},
	}
	narrator := &fakeNarrator{}
	cmd := commands.NewNarrationSynthesizer("audio", narrator, styles)
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	assert.Len(t, narrator.sections, 3)
	assert.Equal(t, "Read slowly", narrator.style)
	assert.Equal(t, model.VoiceCharon, narrator.voice)
	result := chCtx.Get(commands.NarrationParam).(*narration.Result)
	assert.Equal(t, narrator.out, result.Path)

	patch, err := commands.AudioArtifacts(chCtx, p)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"archivos": map[string]any{"audio": "audio/narracion.wav"}}, patch)
}

func TestNarrationSynthesizerFailure(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{})
	chCtx := newContext(t, p)
	chCtx.Add(commands.ScriptParam, model.GetExampleScript())

	cmd := commands.NewNarrationSynthesizer("audio", &fakeNarrator{err: narration.ErrEmptyNarration}, model.DefaultStyles())
	cmd.Execute(chCtx)
	assert.ErrorIs(t, chCtx.Err(), narration.ErrEmptyNarration)
	assert.Nil(t, chCtx.Get(commands.NarrationParam))
}
