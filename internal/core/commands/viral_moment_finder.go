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

// This file defines the command that asks the text model which moments of a
// transcript would make good shorts.
package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// MomentsPromptData is the data the moments prompt template is rendered with.
type MomentsPromptData struct {
	Count      int
	Transcript string
	Example    string
}

// ViralMomentFinder is a command that selects the moments to cut.
type ViralMomentFinder struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
}

func NewViralMomentFinder(name string, generativeAIModel *cloud.QuotaAwareGenerativeAIModel, template *template.Template) *ViralMomentFinder {
	out := &ViralMomentFinder{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template,
	}
	out.InputParamName = TranscriptParam
	out.OutputParamName = MomentsParam

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	return out
}

func (f *ViralMomentFinder) IsExecutable(context cor.Context) bool {
	return f.BaseCommand.IsExecutable(context) && hasJob(context)
}

func (f *ViralMomentFinder) Execute(context cor.Context) {
	job, err := getJob(context)
	if err != nil {
		f.Fail(context, err)
		return
	}
	segments, _ := context.Get(f.GetInputParam()).([]model.TranscriptSegment)

	example, _ := json.MarshalIndent(model.GetExampleMoments(), "", "  ")
	var buffer bytes.Buffer
	err = f.template.Execute(&buffer, MomentsPromptData{
		Count:      job.Count,
		Transcript: model.FormatTranscript(segments),
		Example:    string(example),
	})
	if err != nil {
		f.Fail(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), f.geminiInputTokenCounter, f.geminiOutputTokenCounter,
		f.generativeAIModel, cloud.NewTextPart(buffer.String()))
	if err != nil {
		f.Fail(context, fmt.Errorf("moment selection failed: %w", err))
		return
	}
	moments, err := ParseMoments(out)
	if err != nil {
		f.Fail(context, err)
		return
	}
	for _, m := range moments {
		slog.InfoContext(context.GetContext(), "moment selected",
			"number", m.Number, "start", m.Start, "end", m.End, "title", m.Title)
	}

	f.Succeed(context)
	context.Add(f.GetOutputParam(), moments)
	context.Add(cor.CtxOut, moments)
}

// ParseMoments parses the model's answer. Failures are *model.ResponseError.
func ParseMoments(raw string) ([]*model.ViralMoment, error) {
	doc := &model.ViralMoments{}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), doc); err != nil {
		return nil, model.NewResponseError("viral moments", raw, err)
	}
	if len(doc.Shorts) == 0 {
		return nil, model.NewResponseError("viral moments", raw, errors.New("no moments in shorts"))
	}
	for i, m := range doc.Shorts {
		if m.Number == 0 {
			m.Number = i + 1
		}
	}
	return doc.Shorts, nil
}
