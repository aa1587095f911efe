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

// Package workflow assembles the commands into the studio's pipelines: the
// topic to video production, its resume, the remote trigger listener and the
// shorts extraction.
package workflow

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ProductionSteps holds the command that performs each production step.
// A nil Upload completes the project without publishing; a nil Archive
// skips archiving and analytics.
type ProductionSteps struct {
	Script  cor.Command
	Audio   cor.Command
	Images  cor.Command
	Video   cor.Command
	Upload  cor.Command
	Archive cor.Command
}

// stepOrder is the order in which production steps run.
var stepOrder = []model.Step{model.StepScript, model.StepAudio, model.StepImages, model.StepVideo, model.StepUpload}

// ProductionWorkflow runs a project from its current status to completed.
// Every step is wrapped in a commands.StatusUpdate, so the descriptor always
// records the last completed or failed step and a later run resumes there.
type ProductionWorkflow struct {
	cor.BaseCommand
	store       commands.ProjectStore
	steps       map[model.Step]*commands.StatusUpdate
	archive     cor.Command
	defaultMode model.VideoMode
}

// NewProductionWorkflow wraps steps for the project store. defaultMode
// applies to projects that do not choose a video mode.
func NewProductionWorkflow(name string, store commands.ProjectStore, steps ProductionSteps, defaultMode model.VideoMode) *ProductionWorkflow {
	upload := steps.Upload
	if upload == nil {
		upload = cor.NewBaseChain("publish-disabled")
	}
	return &ProductionWorkflow{
		BaseCommand: *cor.NewBaseCommand(name),
		store:       store,
		steps: map[model.Step]*commands.StatusUpdate{
			model.StepScript: commands.NewStatusUpdate(model.StepScript, store, steps.Script, commands.ScriptArtifacts),
			model.StepAudio:  commands.NewStatusUpdate(model.StepAudio, store, steps.Audio, commands.AudioArtifacts),
			model.StepImages: commands.NewStatusUpdate(model.StepImages, store, steps.Images, commands.ImagesArtifacts),
			model.StepVideo:  commands.NewStatusUpdate(model.StepVideo, store, steps.Video, commands.VideoArtifacts),
			model.StepUpload: commands.NewStatusUpdate(model.StepUpload, store, upload, commands.UploadArtifacts),
		},
		archive:     steps.Archive,
		defaultMode: defaultMode,
	}
}

func (w *ProductionWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(commands.ProjectParam) != nil
}

// Plan returns the steps a project still needs, in order. Loop videos skip
// the images step.
func (w *ProductionWorkflow) Plan(project *model.Project) []model.Step {
	next := project.Status.NextStep()
	if next == model.StepNone {
		return nil
	}
	mode := project.Settings.VideoMode
	if mode == "" {
		mode = w.defaultMode
	}

	out := make([]model.Step, 0, len(stepOrder))
	started := false
	for _, step := range stepOrder {
		if step == next {
			started = true
		}
		if !started || (step == model.StepImages && mode == model.VideoModeLoop) {
			continue
		}
		out = append(out, step)
	}
	return out
}

func (w *ProductionWorkflow) Execute(context cor.Context) {
	project, ok := context.Get(commands.ProjectParam).(*model.Project)
	if !ok || project == nil {
		w.Fail(context, fmt.Errorf("%w: project descriptor", commands.ErrMissingArtifact))
		return
	}
	plan := w.Plan(project)
	if len(plan) == 0 {
		slog.InfoContext(context.GetContext(), "project already completed", "project", project.Name)
		return
	}
	slog.InfoContext(context.GetContext(), "production started",
		"project", project.Name, "status", project.Status, "steps", plan)

	chain := cor.NewBaseChain(w.GetName())
	for _, step := range plan {
		chain.AddCommand(w.steps[step])
	}
	chain.Execute(context)

	if context.HasErrors() {
		w.GetErrorCounter().Add(context.GetContext(), 1)
		return
	}
	w.Succeed(context)
	w.runArchive(context)
}

// runArchive copies the finished production to Cloud Storage and records
// it in BigQuery. Failures are logged; the project stays completed.
func (w *ProductionWorkflow) runArchive(context cor.Context) {
	if w.archive == nil {
		return
	}
	archiveCtx := cor.NewBaseContext()
	defer archiveCtx.Close()
	archiveCtx.SetContext(context.GetContext())
	for _, key := range []string{commands.ProjectParam, commands.ScriptParam, commands.NarrationParam} {
		if v := context.Get(key); v != nil {
			archiveCtx.Add(key, v)
		}
	}
	if !w.archive.IsExecutable(archiveCtx) {
		return
	}
	w.archive.Execute(archiveCtx)
	for name, err := range archiveCtx.GetErrors() {
		slog.WarnContext(context.GetContext(), "archiving failed", "command", name, "error", err)
	}
	if objects := archiveCtx.Get(commands.ArchiveParam); objects != nil {
		context.Add(commands.ArchiveParam, objects)
	}
}
