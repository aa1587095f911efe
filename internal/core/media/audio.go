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
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// EncoderConfig holds the tool paths and canonical formats.
type EncoderConfig struct {
	FFmpegPath  string
	FFprobePath string
	SampleRate  int
	Channels    int
	Video       VideoOptions
}

// Encoder wraps ffmpeg and ffprobe.
type Encoder struct {
	runner Runner
	cfg    EncoderConfig
}

// NewEncoder fills unset fields with the defaults used by the studio:
// binaries from PATH, mono 24 kHz audio and 1080p video.
func NewEncoder(runner Runner, cfg EncoderConfig) *Encoder {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 24000
	}
	if cfg.Channels == 0 {
		cfg.Channels = 1
	}
	cfg.Video = cfg.Video.withDefaults()
	return &Encoder{runner: runner, cfg: cfg}
}

func (e *Encoder) pcmArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{"acodec": "pcm_s16le", "ar": e.cfg.SampleRate, "ac": e.cfg.Channels}
}

// NormalizeArgs re-encodes in to the canonical PCM format at out.
func (e *Encoder) NormalizeArgs(in, out string) []string {
	return ffmpeg.Input(in).Output(out, e.pcmArgs()).OverWriteOutput().GetArgs()
}

// ConcatArgs joins the files named in a concat list into out.
func (e *Encoder) ConcatArgs(list, out string) []string {
	return ffmpeg.Input(list, ffmpeg.KwArgs{"f": "concat", "safe": 0}).
		Output(out, e.pcmArgs()).OverWriteOutput().GetArgs()
}

// ConcatList renders the ffmpeg concat demuxer list for paths.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '" + strings.ReplaceAll(p, "'", `'\''`) + "'\n")
	}
	return b.String()
}

// ConcatAudio normalizes every input, concatenates them in order into dest
// and removes the inputs. Normalized intermediates and the list file are
// removed whatever the outcome; dest is only ever replaced by a complete
// file.
func (e *Encoder) ConcatAudio(ctx context.Context, inputs []string, dest string) error {
	const op = "concat audio"
	if len(inputs) == 0 {
		return &PreconditionError{Op: op, Err: errors.New("no input files")}
	}
	if err := checkReadable(op, inputs...); err != nil {
		return err
	}

	listPath := filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".list.txt")
	normalized := make([]string, 0, len(inputs))
	defer func() {
		removeQuietly(append(normalized, listPath)...)
	}()

	for _, in := range inputs {
		norm := strings.TrimSuffix(in, filepath.Ext(in)) + "_norm.wav"
		normalized = append(normalized, norm)
		if _, err := e.runner.Run(ctx, e.cfg.FFmpegPath, e.NormalizeArgs(in, norm)...); err != nil {
			return fmt.Errorf("failed to normalize %s: %w", in, err)
		}
	}

	abs := make([]string, len(normalized))
	for i, p := range normalized {
		a, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		abs[i] = a
	}
	if err := os.WriteFile(listPath, []byte(ConcatList(abs)), 0o644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	if err := e.render(ctx, dest, func(out string) []string { return e.ConcatArgs(listPath, out) }); err != nil {
		return err
	}
	slog.Debug("concatenated audio", "inputs", len(inputs), "dest", dest)

	removeQuietly(inputs...)
	return nil
}

// render runs ffmpeg with the arguments produced for a partial output path
// and moves the result to dest on success. The partial file never survives
// a failure.
func (e *Encoder) render(ctx context.Context, dest string, args func(out string) []string) error {
	partial := partialPath(dest)
	if _, err := e.runner.Run(ctx, e.cfg.FFmpegPath, args(partial)...); err != nil {
		removeQuietly(partial)
		return err
	}
	if err := os.Rename(partial, dest); err != nil {
		removeQuietly(partial)
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}
	return nil
}
