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

// This file defines the command that turns landscape clips into 9:16 shorts.
//
// Logic Flow:
//  1. For the blur and crop methods the clip is converted directly.
//  2. For the smart method a few frames of the clip are sent to the vision
//     model, which answers where the subject stands. The crop window follows
//     the answer; any failure falls back to the center.
//  3. Every short is named after its moment's title. A clip that fails to
//     convert is logged and skipped.
package commands

import (
	goctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ErrNoShorts is returned when no clip could be converted.
var ErrNoShorts = errors.New("no shorts were generated")

// VerticalConverter is a command that converts the downloaded clips.
type VerticalConverter struct {
	cor.BaseCommand
	encoder                  VerticalEncoder
	vision                   *cloud.QuotaAwareGenerativeAIModel
	subjectPrompt            string
	frames                   int
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
}

// NewVerticalConverter builds the command. vision and subjectPrompt are only
// used by the smart method.
func NewVerticalConverter(name string, encoder VerticalEncoder, vision *cloud.QuotaAwareGenerativeAIModel, subjectPrompt string, frames int) *VerticalConverter {
	out := &VerticalConverter{
		BaseCommand:   *cor.NewBaseCommand(name),
		encoder:       encoder,
		vision:        vision,
		subjectPrompt: subjectPrompt,
		frames:        max(1, frames),
	}
	out.InputParamName = ClipsParam
	out.OutputParamName = ShortsParam

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	return out
}

func (v *VerticalConverter) IsExecutable(context cor.Context) bool {
	return v.BaseCommand.IsExecutable(context) && hasJob(context)
}

func (v *VerticalConverter) Execute(context cor.Context) {
	job, err := getJob(context)
	if err != nil {
		v.Fail(context, err)
		return
	}
	clips, _ := context.Get(v.GetInputParam()).([]*Clip)

	ctx := context.GetContext()
	shorts := make([]*model.ShortClip, 0, len(clips))
	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			v.Fail(context, err)
			return
		}
		pos := model.PositionCenter
		if job.Method == model.VerticalSmart {
			pos = v.SubjectPosition(ctx, clip.Path, job.Dir)
		}
		out := filepath.Join(job.ShortsDir(), ShortFileName(clip.Number, clip.Moment.Title))
		if err := v.encoder.ToVertical(ctx, clip.Path, out, job.Method, pos); err != nil {
			slog.WarnContext(ctx, "vertical conversion failed", "clip", clip.Path, "error", err)
			continue
		}
		slog.InfoContext(ctx, "short ready", "path", out, "method", job.Method, "position", pos)
		shorts = append(shorts, &model.ShortClip{File: out, Title: clip.Moment.Title, Description: clip.Moment.Description})
	}
	if len(shorts) == 0 {
		v.Fail(context, ErrNoShorts)
		return
	}

	v.Succeed(context)
	context.Add(v.GetOutputParam(), shorts)
	context.Add(cor.CtxOut, shorts)
}

// SubjectPosition asks the vision model where the subject of clip stands.
// Every failure yields model.PositionCenter.
func (v *VerticalConverter) SubjectPosition(ctx goctx.Context, clip string, workDir string) model.HorizontalPosition {
	if v.vision == nil {
		return model.PositionCenter
	}
	dir, err := os.MkdirTemp(workDir, "frames-")
	if err != nil {
		slog.WarnContext(ctx, "subject detection skipped", "error", err)
		return model.PositionCenter
	}
	defer os.RemoveAll(dir)

	frames, err := v.encoder.ExtractFrames(ctx, clip, dir, v.frames)
	if err != nil || len(frames) == 0 {
		slog.WarnContext(ctx, "subject detection skipped", "clip", clip, "error", err)
		return model.PositionCenter
	}

	parts := []*genai.Part{genai.NewPartFromText(v.subjectPrompt)}
	for _, frame := range frames {
		data, err := os.ReadFile(frame)
		if err != nil {
			continue
		}
		parts = append(parts, cloud.NewImagePart(data, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	out, err := cloud.GenerateMultiModalResponse(ctx, v.geminiInputTokenCounter, v.geminiOutputTokenCounter, v.vision, contents)
	if err != nil {
		slog.WarnContext(ctx, "subject detection failed", "clip", clip, "error", err)
		return model.PositionCenter
	}
	return ParseSubjectPosition(out)
}

// ParseSubjectPosition reads the vision model's answer, which may be an
// object or a list of objects. Anything unusable is the center.
func ParseSubjectPosition(raw string) model.HorizontalPosition {
	cleaned := []byte(CleanJSON(raw))
	var single model.SubjectPosition
	if err := json.Unmarshal(cleaned, &single); err == nil {
		return model.ParsePosition(single.Horizontal)
	}
	var list []model.SubjectPosition
	if err := json.Unmarshal(cleaned, &list); err == nil && len(list) > 0 {
		return model.ParsePosition(list[0].Horizontal)
	}
	return model.PositionCenter
}
