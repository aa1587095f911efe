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

// This file defines the command that reads the script aloud.
//
// Logic Flow:
//  1. The section narrations of the script are handed to the narrator
//     together with the instructions of the project's style.
//  2. The narrator splits long text into chunks, synthesizes each one and
//     joins them into audio/narracion.wav. Chunk files never outlive the
//     call.
//  3. The narration result is placed under NarrationParam.
package commands

import (
	goctx "context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
)

// SectionNarrator is satisfied by *narration.Narrator.
type SectionNarrator interface {
	Narrate(ctx goctx.Context, sections []string, style string, voice string, outPath string) (*narration.Result, error)
}

// NarrationSynthesizer is a command that produces the narration track.
type NarrationSynthesizer struct {
	cor.BaseCommand
	narrator SectionNarrator
	styles   map[string]model.NarrationStyle
}

func NewNarrationSynthesizer(name string, narrator SectionNarrator, styles map[string]model.NarrationStyle) *NarrationSynthesizer {
	out := &NarrationSynthesizer{BaseCommand: *cor.NewBaseCommand(name), narrator: narrator, styles: styles}
	out.OutputParamName = NarrationParam
	return out
}

func (n *NarrationSynthesizer) IsExecutable(context cor.Context) bool {
	return hasProject(context) && context.Get(ScriptParam) != nil
}

// Voice picks the project's voice, then the style's, then the default.
func Voice(project *model.Project, style model.NarrationStyle) string {
	switch {
	case project.Settings.Voice != "":
		return project.Settings.Voice
	case style.Voice != "":
		return style.Voice
	}
	return model.VoiceKore
}

func (n *NarrationSynthesizer) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		n.Fail(context, err)
		return
	}
	script, err := getScript(context)
	if err != nil {
		n.Fail(context, err)
		return
	}

	style := model.LookupStyle(n.styles, project.Settings.Style)
	voice := Voice(project, style)
	out := narrationFile(project)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		n.Fail(context, err)
		return
	}

	slog.InfoContext(context.GetContext(), "synthesizing narration",
		"project", project.Name, "sections", len(script.Sections), "style", style.Name, "voice", voice)
	result, err := n.narrator.Narrate(context.GetContext(), script.Narrations(), style.Instructions, voice, out)
	if err != nil {
		n.Fail(context, fmt.Errorf("narration for %s: %w", project.Name, err))
		return
	}
	slog.InfoContext(context.GetContext(), "narration ready",
		"path", result.Path, "chunks", result.Chunks, "direct", result.Direct, "duration", result.Duration)

	n.Succeed(context)
	context.Add(n.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}

// getNarration returns the narration of this run, or the stored track of a
// resumed project.
func getNarration(context cor.Context, project *model.Project) (*narration.Result, error) {
	if r, ok := context.Get(NarrationParam).(*narration.Result); ok && r != nil {
		return r, nil
	}
	path := narrationFile(project)
	if project.Files.Audio != "" {
		path = project.Path(project.Files.Audio)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: narration %s", ErrMissingArtifact, path)
	}
	d, err := narration.Duration(path)
	if err != nil {
		return nil, err
	}
	r := &narration.Result{Path: path, Duration: d}
	context.Add(NarrationParam, r)
	return r, nil
}
