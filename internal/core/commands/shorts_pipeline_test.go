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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipSource struct {
	clips [][2]int
}

func (f *fakeClipSource) Subtitles(context.Context, string, []string, string) (string, error) {
	return "", errBoom
}

func (f *fakeClipSource) DownloadClip(_ context.Context, _ string, start, end int, out string) error {
	f.clips = append(f.clips, [2]int{start, end})
	return os.WriteFile(out, []byte("clip"), 0o644)
}

type fakeVertical struct {
	methods []model.VerticalMethod
}

func (f *fakeVertical) ToVertical(_ context.Context, _, out string, method model.VerticalMethod, _ model.HorizontalPosition) error {
	f.methods = append(f.methods, method)
	return os.WriteFile(out, []byte("short"), 0o644)
}

func (f *fakeVertical) ExtractFrames(context.Context, string, string, int) ([]string, error) {
	return nil, errBoom
}

func TestShortsPipeline(t *testing.T) {
	job, err := commands.NewShortsJob(t.TempDir(), "dQw4w9WgXcQ", 3, model.VerticalBlur)
	require.NoError(t, err)
	require.NoError(t, job.Prepare())

	chCtx := newContext(t, nil)
	chCtx.Add(commands.ShortsJobParam, job)
	chCtx.Add(commands.MomentsParam, []*model.ViralMoment{
		{Number: 1, Start: "00:10", End: "00:40", Title: "El comienzo"},
		{Number: 2, Start: "01:00", End: "00:30", Title: "Al revés"},
		{Number: 3, Start: "01:00:00", End: "01:00:45", Title: "¿El final?"},
	})

	source := &fakeClipSource{}
	encoder := &fakeVertical{}
	chain := cor.NewBaseChain("shorts")
	chain.AddCommand(commands.NewClipDownloader("clips", source))
	chain.AddCommand(commands.NewVerticalConverter("vertical", encoder, nil, "", 3))
	chain.AddCommand(commands.NewShortsMetadataWriter("metadata"))
	chain.AddCommand(commands.NewClipCleanup("cleanup"))
	chain.Execute(chCtx)

	require.False(t, chCtx.HasErrors(), "%v", chCtx.Err())
	assert.Equal(t, [][2]int{{10, 40}, {3600, 3645}}, source.clips)
	assert.Equal(t, []model.VerticalMethod{model.VerticalBlur, model.VerticalBlur}, encoder.methods)

	shorts := chCtx.Get(commands.ShortsParam).([]*model.ShortClip)
	require.Len(t, shorts, 2)
	assert.Equal(t, filepath.Join(job.ShortsDir(), "short_01_El comienzo.mp4"), shorts[0].File)
	assert.Equal(t, filepath.Join(job.ShortsDir(), "short_03_El final.mp4"), shorts[1].File)
	assert.NoFileExists(t, filepath.Join(job.ClipsDir(), "clip_01_original.mp4"))

	data, err := os.ReadFile(filepath.Join(job.Dir, commands.MetadataFileName))
	require.NoError(t, err)
	var doc model.ShortsMetadata
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "dQw4w9WgXcQ", doc.VideoID)
	assert.Len(t, doc.Moments, 3)
	assert.Len(t, doc.Shorts, 2)
}

func TestClipDownloaderWithoutClips(t *testing.T) {
	job, err := commands.NewShortsJob(t.TempDir(), "dQw4w9WgXcQ", 1, model.VerticalCrop)
	require.NoError(t, err)
	require.NoError(t, job.Prepare())

	chCtx := newContext(t, nil)
	chCtx.Add(commands.ShortsJobParam, job)
	chCtx.Add(commands.MomentsParam, []*model.ViralMoment{{Start: "bad", End: "00:10"}})
	commands.NewClipDownloader("clips", &fakeClipSource{}).Execute(chCtx)
	assert.ErrorIs(t, chCtx.Err(), commands.ErrNoClips)
}
