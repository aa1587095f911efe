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

// This file defines the command that writes one image prompt per stretch of
// narration.
//
// Logic Flow:
//  1. The narration is divided into ceil(duration / seconds_per_image)
//     segments of consecutive words; the last segment takes the remainder.
//  2. Worker Pool Pattern: a jobs channel feeds a fixed number of workers,
//     each of which renders the prompt template for its segment and asks the
//     text model for an image prompt. Results come back on a results channel.
//  3. Results arrive out of order and are placed by segment index. A segment
//     whose prompt could not be generated gets FallbackPrompt.
//  4. The ordered prompts are placed under PromptsParam.
package commands

import (
	"bytes"
	goctx "context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// Bounds on the seconds of narration covered by one image.
const (
	MinSecondsPerImage = 10
	MaxSecondsPerImage = 120
)

// ImagePromptData is the data the image prompt template is rendered with.
type ImagePromptData struct {
	Topic   string
	Segment string
	Index   int // 1-based.
	Start   int // Seconds.
	End     int // Seconds.
}

// NarrationSegment is the stretch of narration one image illustrates.
type NarrationSegment struct {
	Index int
	Start int
	End   int
	Text  string
}

// FallbackPrompt is used for a segment whose prompt generation failed.
func FallbackPrompt(topic string) string {
	return fmt.Sprintf("Cinematic scene, dramatic lighting, %s, mysterious atmosphere, 4K quality, film still", topic)
}

// ClampSecondsPerImage keeps n within MinSecondsPerImage and MaxSecondsPerImage.
func ClampSecondsPerImage(n int) int {
	return max(MinSecondsPerImage, min(MaxSecondsPerImage, n))
}

// SegmentNarration splits text into ceil(duration / secondsPerImage) runs of
// words. There are never more segments than words.
func SegmentNarration(text string, duration float64, secondsPerImage int) []NarrationSegment {
	words := strings.Fields(text)
	if len(words) == 0 || secondsPerImage <= 0 {
		return nil
	}
	n := max(1, int(math.Ceil(duration/float64(secondsPerImage))))
	n = min(n, len(words))
	perSegment := len(words) / n

	out := make([]NarrationSegment, n)
	for i := range out {
		from, to := i*perSegment, (i+1)*perSegment
		if i == n-1 {
			to = len(words)
		}
		out[i] = NarrationSegment{
			Index: i,
			Start: i * secondsPerImage,
			End:   int(math.Round(math.Min(float64((i+1)*secondsPerImage), duration))),
			Text:  strings.Join(words[from:to], " "),
		}
	}
	return out
}

// ImagePromptBuilder is a command that generates image prompts in parallel.
type ImagePromptBuilder struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel
	promptTemplate           *template.Template
	numberOfWorkers          int
	secondsPerImage          int
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
}

// NewImagePromptBuilder is the constructor for the ImagePromptBuilder
// command. secondsPerImage is used when the project does not set one.
func NewImagePromptBuilder(
	name string,
	model *cloud.QuotaAwareGenerativeAIModel,
	prompt *template.Template,
	numberOfWorkers int,
	secondsPerImage int) *ImagePromptBuilder {
	out := &ImagePromptBuilder{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
		numberOfWorkers:   max(1, numberOfWorkers),
		secondsPerImage:   secondsPerImage,
	}
	out.OutputParamName = PromptsParam

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	return out
}

func (s *ImagePromptBuilder) IsExecutable(context cor.Context) bool {
	return hasProject(context) && context.Get(ScriptParam) != nil
}

// SecondsPerImage returns the project's setting or the command default,
// clamped.
func (s *ImagePromptBuilder) SecondsPerImage(project *model.Project) int {
	if project.Settings.SecondsPerImage > 0 {
		return ClampSecondsPerImage(project.Settings.SecondsPerImage)
	}
	return ClampSecondsPerImage(s.secondsPerImage)
}

func (s *ImagePromptBuilder) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		s.Fail(context, err)
		return
	}
	script, err := getScript(context)
	if err != nil {
		s.Fail(context, err)
		return
	}
	track, err := getNarration(context, project)
	if err != nil {
		s.Fail(context, err)
		return
	}

	segments := SegmentNarration(script.FullNarration(), track.Duration.Seconds(), s.SecondsPerImage(project))
	if len(segments) == 0 {
		s.Fail(context, fmt.Errorf("%w: narration text", ErrMissingArtifact))
		return
	}

	var wg sync.WaitGroup
	jobs := make(chan *PromptJob, len(segments))
	results := make(chan *PromptResponse, len(segments))

	for w := 1; w <= min(s.numberOfWorkers, len(segments)); w++ {
		wg.Add(1)
		go s.promptWorker(jobs, results, &wg)
	}
	for _, segment := range segments {
		jobs <- s.createJob(context.GetContext(), project.Topic, segment)
	}
	close(jobs)
	wg.Wait()
	close(results)

	prompts := make([]string, len(segments))
	for r := range results {
		if r.err != nil {
			s.Fail(context, r.err)
			continue
		}
		prompts[r.index] = r.value
	}
	if context.HasErrors() {
		return
	}

	s.Succeed(context)
	context.Add(s.GetOutputParam(), prompts)
	context.Add(cor.CtxOut, prompts)
}

// PromptResponse passes a worker's result back to Execute.
type PromptResponse struct {
	index int
	value string
	err   error
}

// PromptJob carries everything a worker needs for one segment.
type PromptJob struct {
	ctx      goctx.Context
	span     trace.Span
	segment  NarrationSegment
	topic    string
	contents string
	err      error
}

// Close ends the span of the job.
func (j *PromptJob) Close(status codes.Code, description string) {
	j.span.SetStatus(status, description)
	j.span.End()
}

func (s *ImagePromptBuilder) createJob(ctx goctx.Context, topic string, segment NarrationSegment) *PromptJob {
	jobCtx, span := s.Tracer.Start(ctx, fmt.Sprintf("%s_image_prompt_%d", s.GetName(), segment.Index))
	span.SetAttributes(
		attribute.Int("sequence", segment.Index),
		attribute.Int("start", segment.Start),
		attribute.Int("end", segment.End),
	)

	job := &PromptJob{ctx: jobCtx, span: span, segment: segment, topic: topic}
	var doc bytes.Buffer
	job.err = s.promptTemplate.Execute(&doc, ImagePromptData{
		Topic:   topic,
		Segment: segment.Text,
		Index:   segment.Index + 1,
		Start:   segment.Start,
		End:     segment.End,
	})
	job.contents = doc.String()
	return job
}

func (s *ImagePromptBuilder) promptWorker(jobs <-chan *PromptJob, results chan<- *PromptResponse, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		if j.err != nil {
			j.Close(codes.Error, "prompt template failed")
			results <- &PromptResponse{index: j.segment.Index, err: fmt.Errorf("image prompt template: %w", j.err)}
			continue
		}

		out, err := cloud.GenerateMultiModalResponse(j.ctx, s.geminiInputTokenCounter, s.geminiOutputTokenCounter,
			s.generativeAIModel, cloud.NewTextPart(j.contents))
		out = strings.Trim(strings.TrimSpace(out), `"`)
		if err != nil || out == "" {
			slog.WarnContext(j.ctx, "image prompt failed, using fallback", "segment", j.segment.Index, "error", err)
			j.Close(codes.Error, "image prompt failed")
			results <- &PromptResponse{index: j.segment.Index, value: FallbackPrompt(j.topic)}
			continue
		}

		results <- &PromptResponse{index: j.segment.Index, value: out}
		j.Close(codes.Ok, "completed image prompt")
	}
}
