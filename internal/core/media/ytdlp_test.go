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

package media_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:03.500 align:start position:0%
welcome<00:00:01.500><c> back</c><00:00:02.000><c> everyone</c>

00:00:03.500 --> 00:00:03.510 align:start position:0%
welcome back everyone

00:00:03.510 --> 00:00:06.000 align:start position:0%
welcome back everyone
today we climb the lighthouse

01:02.000 --> 01:04.250
the end
`

func TestParseVTT(t *testing.T) {
	segments, err := media.ParseVTT(strings.NewReader(sampleVTT))
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, time.Second, segments[0].Start)
	assert.Equal(t, 2500*time.Millisecond, segments[0].Duration)
	assert.Equal(t, "welcome back everyone", segments[0].Text)
	assert.Equal(t, "today we climb the lighthouse", segments[1].Text)
	assert.Equal(t, 62*time.Second, segments[2].Start)
	assert.Equal(t, "the end", segments[2].Text)
}

func TestClipArgs(t *testing.T) {
	d := media.NewDownloader(&fakeRunner{}, "")
	assert.Equal(t, []string{
		"--download-sections", "*60-105",
		"-f", "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
		"--merge-output-format", "mp4",
		"-o", "clip_01_original.mp4",
		"--no-playlist",
		"https://youtu.be/dQw4w9WgXcQ",
	}, d.ClipArgs("https://youtu.be/dQw4w9WgXcQ", 60, 105, "clip_01_original.mp4"))
}

func TestSubtitlesPrefersRequestedLanguage(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{handle: func(_ string, _ []string) ([]byte, error) {
		for _, name := range []string{"abc.en.vtt", "abc.es.vtt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("WEBVTT\n"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}}

	path, err := media.NewDownloader(runner, "yt-dlp").Subtitles(context.Background(), "https://youtu.be/abc", []string{"es", "en"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.es.vtt"), path)
	assert.Equal(t, "es,en", argAfter(runner.calls[0][1:], "--sub-lang"))
}

func TestSubtitlesErrors(t *testing.T) {
	runner := &fakeRunner{handle: func(_ string, _ []string) ([]byte, error) { return nil, nil }}
	_, err := media.NewDownloader(runner, "").Subtitles(context.Background(), "u", []string{"es"}, t.TempDir())
	assert.ErrorIs(t, err, media.ErrNoTranscript)

	runner.handle = func(name string, args []string) ([]byte, error) {
		return nil, &media.ToolError{Tool: name, Args: args, Stderr: "ERROR: [youtube] abc: Subtitles are disabled for this video", Err: errors.New("exit status 1")}
	}
	_, err = media.NewDownloader(runner, "").Subtitles(context.Background(), "u", []string{"es"}, t.TempDir())
	assert.ErrorIs(t, err, media.ErrTranscriptsDisabled)
}

func TestDownloadClipRejectsEmptyRange(t *testing.T) {
	runner := &fakeRunner{}
	err := media.NewDownloader(runner, "").DownloadClip(context.Background(), "u", 30, 30, "out.mp4")
	var pre *media.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Empty(t, runner.calls)
}
