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

package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Synthesizer turns text into raw 16-bit little endian PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
}

// Concatenator merges WAV files, in the given order, into dest.
type Concatenator interface {
	ConcatAudio(ctx context.Context, inputs []string, dest string) error
}

// Result describes a finished narration track.
type Result struct {
	Path     string
	Chunks   int
	Direct   bool
	Duration time.Duration
}

// Narrator synthesizes a script's sections into a single WAV file.
type Narrator struct {
	synth    Synthesizer
	concat   Concatenator
	maxChars int
	format   Format
}

// NewNarrator builds a Narrator. A non-positive maxChars falls back to
// DefaultMaxChars and a zero format to DefaultFormat.
func NewNarrator(synth Synthesizer, concat Concatenator, maxChars int, format Format) *Narrator {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if format.SampleRate == 0 || format.Channels == 0 {
		format = DefaultFormat
	}
	return &Narrator{synth: synth, concat: concat, maxChars: maxChars, format: format}
}

// Narrate synthesizes sections with the given style instructions and voice
// and writes the finished track to outPath. Chunk files live next to outPath
// and are removed before Narrate returns, whatever the outcome.
func (n *Narrator) Narrate(ctx context.Context, sections []string, style string, voice string, outPath string) (*Result, error) {
	plan := BuildPlan(sections, style, n.maxChars)
	if len(plan.Items) == 0 {
		return nil, ErrEmptyNarration
	}

	if plan.Direct {
		item := plan.Items[0]
		if err := n.synthesizeTo(ctx, item, voice, outPath); err != nil {
			return nil, &SynthesisError{Index: 0, Total: 1, Label: item.Label(), File: outPath, Err: err}
		}
		return n.result(outPath, 1, true)
	}

	dir := filepath.Dir(outPath)
	written := make([]string, 0, len(plan.Items))
	defer func() {
		for _, path := range written {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("failed to remove audio segment", "path", path, "error", err)
			}
		}
	}()

	for i, item := range plan.Items {
		path := filepath.Join(dir, item.File)
		if err := ctx.Err(); err != nil {
			return nil, &SynthesisError{Index: i, Total: len(plan.Items), Label: item.Label(), File: path, Err: err}
		}
		slog.Debug("synthesizing narration chunk", "chunk", item.Label(), "index", i+1, "total", len(plan.Items), "chars", len([]rune(item.Text)))
		if err := n.synthesizeTo(ctx, item, voice, path); err != nil {
			return nil, &SynthesisError{Index: i, Total: len(plan.Items), Label: item.Label(), File: path, Err: err}
		}
		written = append(written, path)
	}

	if err := n.concat.ConcatAudio(ctx, written, outPath); err != nil {
		return nil, fmt.Errorf("failed to concatenate %d audio segments: %w", len(written), err)
	}
	return n.result(outPath, len(written), false)
}

func (n *Narrator) synthesizeTo(ctx context.Context, item PlanItem, voice string, path string) error {
	pcm, err := n.synth.Synthesize(ctx, item.Text, voice)
	if err != nil {
		return err
	}
	return WriteWAV(path, pcm, n.format)
}

func (n *Narrator) result(path string, chunks int, direct bool) (*Result, error) {
	d, err := Duration(path)
	if err != nil {
		return nil, err
	}
	return &Result{Path: path, Chunks: chunks, Direct: direct, Duration: d}, nil
}
