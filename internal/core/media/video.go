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

package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
)

// VideoOptions controls the final H.264/AAC encode.
type VideoOptions struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	Fade         float64 `toml:"fade_seconds"`
	Preset       string  `toml:"preset"`
	CRF          int     `toml:"crf"`
	AudioBitrate string  `toml:"audio_bitrate"`
}

func (o VideoOptions) withDefaults() VideoOptions {
	if o.Width == 0 || o.Height == 0 {
		o.Width, o.Height = 1920, 1080
	}
	if o.Fade == 0 {
		o.Fade = 0.5
	}
	if o.Preset == "" {
		o.Preset = "medium"
	}
	if o.CRF == 0 {
		o.CRF = 23
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = "192k"
	}
	return o
}

func (o VideoOptions) encodeArgs() []string {
	return []string{
		"-c:v", "libx264", "-preset", o.Preset, "-crf", strconv.Itoa(o.CRF),
		"-c:a", "aac", "-b:a", o.AudioBitrate,
		"-shortest", "-movflags", "+faststart", "-pix_fmt", "yuv420p",
	}
}

// SlideshowGraph scales, pads and fades every still and concatenates them
// into [outv].
func SlideshowGraph(images int, perImage float64, o VideoOptions) *FilterGraph {
	o = o.withDefaults()
	g := &FilterGraph{}
	labels := make([]string, images)
	for i := 0; i < images; i++ {
		labels[i] = fmt.Sprintf("v%d", i)
		g.Chain(Labels(fmt.Sprintf("%d:v", i)), Labels(labels[i]),
			Scale(o.Width, o.Height, "decrease"),
			PadCentered(o.Width, o.Height, ""),
			SetSAR(1),
			FadeIn(0, o.Fade),
			FadeOut(perImage-o.Fade, o.Fade),
		)
	}
	return g.Chain(labels, Labels("outv"), Concat(images, 1, 0))
}

// SlideshowArgs builds the ffmpeg command for a still-image slideshow over
// the narration track. Each image is shown for perImage seconds.
func (e *Encoder) SlideshowArgs(images []string, audio string, perImage float64, out string) []string {
	args := []string{"-y"}
	for _, img := range images {
		args = append(args, "-loop", "1", "-t", Seconds(perImage), "-i", img)
	}
	args = append(args, "-i", audio,
		"-filter_complex", SlideshowGraph(len(images), perImage, e.cfg.Video).String(),
		"-map", "[outv]", "-map", fmt.Sprintf("%d:a", len(images)),
	)
	args = append(args, e.cfg.Video.encodeArgs()...)
	return append(args, out)
}

// Slideshow renders images over audio into out, splitting the narration's
// duration evenly between the images.
func (e *Encoder) Slideshow(ctx context.Context, images []string, audio string, out string) error {
	const op = "slideshow"
	if len(images) == 0 {
		return &PreconditionError{Op: op, Err: errors.New("no images to render")}
	}
	if err := checkReadable(op, append([]string{audio}, images...)...); err != nil {
		return err
	}
	d, err := e.Duration(ctx, audio)
	if err != nil {
		return err
	}
	perImage := d.Seconds() / float64(len(images))
	slog.Info("rendering slideshow", "images", len(images), "audio_seconds", d.Seconds(), "seconds_per_image", perImage)

	return e.render(ctx, out, func(partial string) []string {
		return e.SlideshowArgs(images, audio, perImage, partial)
	})
}

// LoopArgs repeats base for as long as the narration lasts.
func (e *Encoder) LoopArgs(base, audio, out string) []string {
	args := []string{"-y", "-stream_loop", "-1", "-i", base, "-i", audio, "-map", "0:v", "-map", "1:a"}
	args = append(args, e.cfg.Video.encodeArgs()...)
	return append(args, out)
}

// Loop renders a looping base video under the narration into out.
func (e *Encoder) Loop(ctx context.Context, base string, audio string, out string) error {
	if err := checkReadable("loop video", base, audio); err != nil {
		return err
	}
	return e.render(ctx, out, func(partial string) []string {
		return e.LoopArgs(base, audio, partial)
	})
}
