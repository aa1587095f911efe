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

// This file defines the decorator that keeps the project descriptor in step
// with the workflow.
//
// Logic Flow:
//  1. The wrapped command (usually the sub-chain of one production step)
//     runs. If it cannot run because its inputs are missing, that is
//     recorded as ErrMissingArtifact rather than silently skipped.
//  2. If the wrapped command recorded an error, the descriptor moves to the
//     step's error status and the error stays in the context, which stops
//     the enclosing chain.
//  3. Otherwise the step's artifacts are collected from the context and
//     merged into the descriptor together with the step's done status.
//  4. The updated descriptor replaces ProjectParam.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ArtifactFunc returns the descriptor patch describing what a step produced.
type ArtifactFunc func(context cor.Context, project *model.Project) (map[string]any, error)

// StatusUpdate wraps the command of one production step.
type StatusUpdate struct {
	cor.BaseCommand
	store     ProjectStore
	step      model.Step
	inner     cor.Command
	artifacts ArtifactFunc
}

// NewStatusUpdate wraps inner as the given step. artifacts may be nil.
func NewStatusUpdate(step model.Step, store ProjectStore, inner cor.Command, artifacts ArtifactFunc) *StatusUpdate {
	return &StatusUpdate{
		BaseCommand: *cor.NewBaseCommand(fmt.Sprintf("%s-status", step)),
		store:       store,
		step:        step,
		inner:       inner,
		artifacts:   artifacts,
	}
}

// Step returns the wrapped production step.
func (s *StatusUpdate) Step() model.Step {
	return s.step
}

func (s *StatusUpdate) IsExecutable(context cor.Context) bool {
	return hasProject(context)
}

func (s *StatusUpdate) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		s.Fail(context, err)
		return
	}

	before := context.ErrorCount()
	if s.inner.IsExecutable(context) {
		s.inner.Execute(context)
	} else {
		context.AddError(s.inner.GetName(), fmt.Errorf("%w: %s cannot run", ErrMissingArtifact, s.inner.GetName()))
	}

	if context.ErrorCount() > before {
		s.markFailed(context, project)
		return
	}

	patch := map[string]any{}
	if s.artifacts != nil {
		if patch, err = s.artifacts(context, project); err != nil {
			context.AddError(s.GetName(), err)
			s.markFailed(context, project)
			return
		}
	}
	patch["estado"] = s.step.Done().String()

	updated, err := s.store.Update(project.Name, patch)
	if err != nil {
		s.Fail(context, fmt.Errorf("recording %s: %w", s.step.Done(), err))
		return
	}
	slog.InfoContext(context.GetContext(), "step completed", "project", project.Name, "step", s.step, "status", updated.Status)
	s.Succeed(context)
	context.Add(ProjectParam, updated)
}

func (s *StatusUpdate) markFailed(context cor.Context, project *model.Project) {
	s.GetErrorCounter().Add(context.GetContext(), 1)
	status := s.step.Failed()
	updated, err := s.store.Update(project.Name, map[string]any{"estado": status.String()})
	if err != nil {
		slog.WarnContext(context.GetContext(), "failed to record error status", "project", project.Name, "status", status, "error", err)
		return
	}
	slog.WarnContext(context.GetContext(), "step failed", "project", project.Name, "step", s.step, "error", context.Err())
	context.Add(ProjectParam, updated)
}

func files(patch map[string]any) map[string]any {
	return map[string]any{"archivos": patch}
}

// ScriptArtifacts records guion.json.
func ScriptArtifacts(context cor.Context, project *model.Project) (map[string]any, error) {
	if _, err := getScript(context); err != nil {
		return nil, err
	}
	return files(map[string]any{"guion": project.Rel(scriptFile(project))}), nil
}

// AudioArtifacts records the narration track produced by this run.
func AudioArtifacts(context cor.Context, project *model.Project) (map[string]any, error) {
	if context.Get(NarrationParam) == nil {
		return nil, fmt.Errorf("%w: narration", ErrMissingArtifact)
	}
	return files(map[string]any{"audio": project.Rel(narrationFile(project))}), nil
}

// ImagesArtifacts records the generated images.
func ImagesArtifacts(context cor.Context, project *model.Project) (map[string]any, error) {
	images, ok := context.Get(ImagesParam).([]string)
	if !ok {
		return nil, fmt.Errorf("%w: images", ErrMissingArtifact)
	}
	rel := make([]string, 0, len(images))
	for _, img := range images {
		rel = append(rel, project.Rel(img))
	}
	return files(map[string]any{"imagenes": rel}), nil
}

// VideoArtifacts records the final video.
func VideoArtifacts(context cor.Context, project *model.Project) (map[string]any, error) {
	path, _ := context.Get(VideoParam).(string)
	if path == "" {
		return nil, fmt.Errorf("%w: video", ErrMissingArtifact)
	}
	return files(map[string]any{"video": project.Rel(path)}), nil
}

// UploadArtifacts records the published video, if there is one. Without an
// upload the project is still completed.
func UploadArtifacts(context cor.Context, _ *model.Project) (map[string]any, error) {
	result, ok := context.Get(UploadParam).(*model.YouTubeResult)
	if !ok || result == nil {
		return map[string]any{}, nil
	}
	return map[string]any{"youtube": map[string]any{
		"subido":     result.Uploaded,
		"url":        result.URL,
		"privacidad": string(result.Privacy),
	}}, nil
}
