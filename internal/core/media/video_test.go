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
	"path/filepath"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterGraphSerialization(t *testing.T) {
	g := (&media.FilterGraph{}).
		Chain(media.Labels("0:v"), media.Labels("a", "b"), media.Split()).
		Chain(media.Labels("a", "b"), nil, media.OverlayCentered())
	assert.Equal(t, "[0:v]split[a][b];[a][b]overlay=(W-w)/2:(H-h)/2", g.String())
	assert.Equal(t, "fade=t=out:st=4.333:d=0.5", media.FadeOut(13.0/3, 0.5).String())
}

func TestSlideshowGraph(t *testing.T) {
	g := media.SlideshowGraph(2, 5, media.VideoOptions{})
	step := "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2,setsar=1,fade=t=in:st=0:d=0.5,fade=t=out:st=4.5:d=0.5"
	assert.Equal(t, "[0:v]"+step+"[v0];[1:v]"+step+"[v1];[v0][v1]concat=n=2:v=1:a=0[outv]", g.String())
}

func TestVerticalGraph(t *testing.T) {
	assert.Equal(t,
		"scale=1920:1080:force_original_aspect_ratio=increase,crop=607:1080:(in_w-607)/2:0,scale=1080:1920",
		media.VerticalGraph(model.VerticalCrop, model.PositionLeft).String())
	assert.Equal(t,
		"scale=1920:1080:force_original_aspect_ratio=increase,crop=607:1080:0:0,scale=1080:1920",
		media.VerticalGraph(model.VerticalSmart, model.PositionLeft).String())
	assert.Equal(t,
		"scale=1920:1080:force_original_aspect_ratio=increase,crop=607:1080:in_w-607:0,scale=1080:1920",
		media.VerticalGraph(model.VerticalSmart, model.PositionRight).String())
	assert.Equal(t,
		"[0:v]split[bg][fg];"+
			"[bg]scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920,boxblur=20:20[blurred];"+
			"[fg]scale=1080:1920:force_original_aspect_ratio=decrease[front];"+
			"[blurred][front]overlay=(W-w)/2:(H-h)/2",
		media.VerticalGraph(model.VerticalBlur, model.PositionCenter).String())
}

func TestSlideshowSplitsAudioDuration(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"imagen_01.png": "1", "imagen_02.png": "2", "narracion.wav": "audio"})
	runner := &fakeRunner{probe: `{"format": {"duration": "10.000000"}}`}
	out := filepath.Join(dir, "video_final.mp4")

	err := newEncoder(runner).Slideshow(context.Background(),
		[]string{filepath.Join(dir, "imagen_01.png"), filepath.Join(dir, "imagen_02.png")},
		filepath.Join(dir, "narracion.wav"), out)
	require.NoError(t, err)
	assert.FileExists(t, out)

	calls := runner.callsTo("ffmpeg")
	require.Len(t, calls, 1)
	args := calls[0]
	assert.Equal(t, "5", argAfter(args, "-t"))
	assert.Equal(t, "[outv]", argAfter(args, "-map"))
	assert.Contains(t, args, "2:a")
	assert.Contains(t, args, "-shortest")
	assert.Equal(t, "libx264", argAfter(args, "-c:v"))
}

func TestSlideshowWithoutImages(t *testing.T) {
	runner := &fakeRunner{}
	err := newEncoder(runner).Slideshow(context.Background(), nil, "narracion.wav", "out.mp4")
	var pre *media.PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Empty(t, runner.calls)
}

func TestLoopArgs(t *testing.T) {
	args := newEncoder(&fakeRunner{}).LoopArgs("base.mp4", "narracion.wav", "out.mp4")
	assert.Equal(t, []string{"-y", "-stream_loop", "-1", "-i", "base.mp4", "-i", "narracion.wav", "-map", "0:v", "-map", "1:a"}, args[:11])
	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Contains(t, args, "-shortest")
}

func TestDurationParsesProbeOutput(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.wav": "x"})
	runner := &fakeRunner{probe: `{"format": {"filename": "a.wav", "duration": "12.500000"}}`}

	d, err := newEncoder(runner).Duration(context.Background(), filepath.Join(dir, "a.wav"))
	require.NoError(t, err)
	assert.Equal(t, 12500*time.Millisecond, d)

	runner.probe = `{"format": {}}`
	_, err = newEncoder(runner).Duration(context.Background(), filepath.Join(dir, "a.wav"))
	assert.Error(t, err)
}

func TestExtractFramesSpreadsOffsets(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"clip.mp4": "video"})
	runner := &fakeRunner{probe: `{"format": {"duration": "8.0"}}`}

	frames, err := newEncoder(runner).ExtractFrames(context.Background(), filepath.Join(dir, "clip.mp4"), dir, 3)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, filepath.Join(dir, "frame_01.jpg"), frames[0])
	for _, f := range frames {
		assert.FileExists(t, f)
	}

	calls := runner.callsTo("ffmpeg")
	require.Len(t, calls, 3)
	assert.Equal(t, "2", argAfter(calls[0], "-ss"))
	assert.Equal(t, "4", argAfter(calls[1], "-ss"))
	assert.Equal(t, "6", argAfter(calls[2], "-ss"))
}
