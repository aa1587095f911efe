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

// This file defines the command that asks the text model for a script.
//
// Logic Flow:
//  1. The project descriptor supplies the topic, the requested word count
//     and the narration style.
//  2. The prompt template is rendered with ScriptPromptData. The section
//     layout comes from configuration and a finished example is embedded
//     as few-shot guidance.
//  3. The rendered prompt is sent through the quota aware model, which
//     retries on quota errors.
//  4. The raw JSON answer is placed under CtxOut for ScriptJsonToStruct.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ScriptPromptData is the data the script prompt template is rendered with.
type ScriptPromptData struct {
	Topic     string
	WordCount int
	Language  string
	Style     model.NarrationStyle
	Sections  []model.SectionTemplate
	Example   string
}

// ScriptGenerator is a command that uses a generative model to write the
// script for the project in the context.
type ScriptGenerator struct {
	cor.BaseCommand
	config                   *cloud.Config
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel
	template                 *template.Template
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
}

// NewScriptGenerator is the constructor for the ScriptGenerator command.
func NewScriptGenerator(
	name string,
	config *cloud.Config,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *ScriptGenerator {

	out := &ScriptGenerator{
		BaseCommand:       *cor.NewBaseCommand(name),
		config:            config,
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	return out
}

func (t *ScriptGenerator) IsExecutable(context cor.Context) bool {
	return hasProject(context)
}

// GenerateParams builds the template data for project.
func (t *ScriptGenerator) GenerateParams(project *model.Project) ScriptPromptData {
	wordCount := project.Settings.WordCount
	if wordCount == 0 {
		wordCount = t.config.Script.WordCount
	}
	example, _ := json.MarshalIndent(model.GetExampleScript(), "", "  ")
	return ScriptPromptData{
		Topic:     project.Topic,
		WordCount: model.ClampWordCount(wordCount),
		Language:  t.config.Script.Language,
		Style:     t.config.Style(project.Settings.Style),
		Sections:  t.config.Script.Sections,
		Example:   string(example),
	}
}

func (t *ScriptGenerator) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		t.Fail(context, err)
		return
	}

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, t.GenerateParams(project)); err != nil {
		t.Fail(context, fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	out, err := cloud.GenerateMultiModalResponse(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter,
		t.generativeAIModel, cloud.NewTextPart(buffer.String()))
	if err != nil {
		t.Fail(context, fmt.Errorf("script generation failed: %w", err))
		return
	}

	t.Succeed(context)
	context.Add(t.GetOutputParam(), out)
}
