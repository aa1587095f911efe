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
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionRequestSettings(t *testing.T) {
	settings, err := commands.ProductionRequest{
		Topic:     "Roma",
		WordCount: 50,
		Style:     " Documental ",
		Voice:     model.VoiceCharon,
		Privacy:   "unlisted",
		Mode:      "loop",
		Category:  "terror",
	}.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.MinWordCount, settings.WordCount)
	assert.Equal(t, "documental", settings.Style)
	assert.Equal(t, model.PrivacyUnlisted, settings.Privacy)
	assert.Equal(t, model.VideoModeLoop, settings.VideoMode)
	assert.Equal(t, "terror", settings.BaseCategory)

	empty, err := commands.ProductionRequest{Topic: "Roma"}.Settings()
	require.NoError(t, err)
	assert.Zero(t, empty.WordCount)
	assert.Empty(t, empty.VideoMode)

	_, err = commands.ProductionRequest{Voice: "Robot"}.Settings()
	assert.Error(t, err)
	_, err = commands.ProductionRequest{Privacy: "friends"}.Settings()
	assert.Error(t, err)
	_, err = commands.ProductionRequest{Mode: "3d"}.Settings()
	assert.Error(t, err)
}

func TestProductionRequestReaderCreatesProject(t *testing.T) {
	store, _ := newProject(t, model.ProjectSettings{})
	chCtx := newContext(t, nil)
	chCtx.Add(cor.CtxIn, `{"topic": "  Piratas  ", "word_count": 900, "voice": "Puck"}`)

	cmd := commands.NewProductionRequestReader("request", store)
	require.True(t, cmd.IsExecutable(chCtx))
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	p := chCtx.Get(commands.ProjectParam).(*model.Project)
	assert.Equal(t, "Piratas", p.Topic)
	assert.Equal(t, 900, p.Settings.WordCount)
	assert.Equal(t, model.StatusInitiated, p.Status)
}

func TestProductionRequestReaderRejectsBadMessages(t *testing.T) {
	store, _ := newProject(t, model.ProjectSettings{})
	for _, body := range []string{`not json`, `{"topic": "  "}`, `{"topic": "x", "mode": "3d"}`} {
		chCtx := newContext(t, nil)
		chCtx.Add(cor.CtxIn, body)
		commands.NewProductionRequestReader("request", store).Execute(chCtx)
		assert.True(t, chCtx.HasErrors(), body)
		assert.Nil(t, chCtx.Get(commands.ProjectParam), body)
	}
}
