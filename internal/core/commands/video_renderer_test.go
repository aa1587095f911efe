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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEncoder struct {
	images []string
	base   string
	audio  string
	out    string
}

func (f *fakeEncoder) Slideshow(_ context.Context, images []string, audio string, out string) error {
	f.images, f.audio, f.out = images, audio, out
	return nil
}

func (f *fakeEncoder) Loop(_ context.Context, base string, audio string, out string) error {
	f.base, f.audio, f.out = base, audio, out
	return nil
}

func narrationContext(t *testing.T, p *model.Project) *narration.Result {
	t.Helper()
	return &narration.Result{Path: filepath.Join(p.Dir, model.AudioFolder, model.NarrationFileName), Duration: time.Minute}
}

func TestVideoRendererSlideshow(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{})
	chCtx := newContext(t, p)
	track := narrationContext(t, p)
	chCtx.Add(commands.NarrationParam, track)
	chCtx.Add(commands.ImagesParam, []string{"a.png", "b.png"})

	encoder := &fakeEncoder{}
	cmd := commands.NewVideoRenderer("video", encoder, cloud.VideoSettings{Mode: model.VideoModeSlideshow}, nil)
	cmd.Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	out := filepath.Join(p.Dir, model.VideoFolder, model.VideoFileName)
	assert.Equal(t, []string{"a.png", "b.png"}, encoder.images)
	assert.Equal(t, track.Path, encoder.audio)
	assert.Equal(t, out, encoder.out)
	assert.Equal(t, out, chCtx.Get(commands.VideoParam))
}

func TestVideoRendererLoopPicksFirstBaseVideo(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{VideoMode: model.VideoModeLoop, BaseCategory: "terror"})
	chCtx := newContext(t, p)
	chCtx.Add(commands.NarrationParam, narrationContext(t, p))

	bases := t.TempDir()
	for _, name := range []string{"niebla.mp4", "bosque.mp4"} {
		require.NoError(t, os.WriteFile(filepath.Join(bases, name), []byte("mp4"), 0o644))
	}
	settings := cloud.VideoSettings{
		Mode:          model.VideoModeSlideshow,
		Selection:     cloud.SelectFirst,
		BaseVideosDir: bases,
		Categories: map[string]cloud.BaseVideoCategory{
			"terror": {Files: []string{"niebla.mp4", "bosque.mp4"}},
		},
	}
	encoder := &fakeEncoder{}
	commands.NewVideoRenderer("video", encoder, settings, nil).Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	assert.Equal(t, filepath.Join(bases, "niebla.mp4"), encoder.base)
	assert.Nil(t, encoder.images)
}

func TestVideoRendererBaseVideos(t *testing.T) {
	bases := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MP4", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(bases, name), nil, 0o644))
	}
	settings := cloud.VideoSettings{
		BaseVideosDir:   bases,
		DefaultCategory: "paisaje",
		Categories: map[string]cloud.BaseVideoCategory{
			"paisaje": {Files: []string{"gs://bucket/base/mar.mp4", "lago.mp4"}},
		},
	}
	cmd := commands.NewVideoRenderer("video", &fakeEncoder{}, settings, nil)

	videos, err := cmd.BaseVideos("")
	require.NoError(t, err)
	assert.Equal(t, []string{"gs://bucket/base/mar.mp4", filepath.Join(bases, "lago.mp4")}, videos)

	videos, err = cmd.BaseVideos("desconocida")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(bases, "a.MP4"), filepath.Join(bases, "b.mp4")}, videos)
}

func TestVideoRendererFetchesRemoteBaseVideo(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{VideoMode: model.VideoModeLoop})
	chCtx := newContext(t, p)
	chCtx.Add(commands.NarrationParam, narrationContext(t, p))

	local := filepath.Join(t.TempDir(), "mar.mp4")
	require.NoError(t, os.WriteFile(local, []byte("mp4"), 0o644))
	var fetched cloud.GCSObject
	fetch := func(_ context.Context, obj cloud.GCSObject) (string, error) {
		fetched = obj
		return local, nil
	}
	settings := cloud.VideoSettings{
		Selection:       cloud.SelectFirst,
		DefaultCategory: "paisaje",
		Categories: map[string]cloud.BaseVideoCategory{
			"paisaje": {Files: []string{"gs://bucket/base/mar.mp4"}},
		},
	}
	encoder := &fakeEncoder{}
	commands.NewVideoRenderer("video", encoder, settings, fetch).Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	assert.Equal(t, cloud.GCSObject{Bucket: "bucket", Name: "base/mar.mp4"}, fetched)
	assert.Equal(t, local, encoder.base)
	assert.Contains(t, chCtx.GetTempFiles(), local)
}

func TestVideoRendererWithoutBaseVideo(t *testing.T) {
	_, p := newProject(t, model.ProjectSettings{VideoMode: model.VideoModeLoop})
	chCtx := newContext(t, p)
	chCtx.Add(commands.NarrationParam, narrationContext(t, p))

	settings := cloud.VideoSettings{BaseVideosDir: filepath.Join(t.TempDir(), "none")}
	commands.NewVideoRenderer("video", &fakeEncoder{}, settings, nil).Execute(chCtx)
	assert.ErrorIs(t, chCtx.Err(), commands.ErrNoBaseVideo)
}
