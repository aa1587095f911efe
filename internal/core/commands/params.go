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


// Package commands implements the cor.Command steps of the studio's
// workflows: script generation, narration, image prompts and images, video
// rendering, publishing, archiving, and the shorts pipeline.
//
// Commands share state through well known context keys. The project
// descriptor under ProjectParam is the source of truth for artifact paths;
// StatusUpdate refreshes it after every step.
package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"google.golang.org/api/googleapi"
)

// Context keys shared by the production and shorts commands.
const (
	ProjectParam    = "__PROJECT__"    // *model.Project
	ScriptParam     = "__SCRIPT__"     // *model.Script
	NarrationParam  = "__NARRATION__"  // *narration.Result
	PromptsParam    = "__PROMPTS__"    // []string
	ImagesParam     = "__IMAGES__"     // []string
	VideoParam      = "__VIDEO__"      // string
	UploadParam     = "__UPLOAD__"     // *model.YouTubeResult
	ArchiveParam    = "__ARCHIVE__"    // []cloud.GCSObject
	ShortsJobParam  = "__SHORTS_JOB__" // *ShortsJob
	TranscriptParam = "__TRANSCRIPT__" // []model.TranscriptSegment
	MomentsParam    = "__MOMENTS__"    // []*model.ViralMoment
	ClipsParam      = "__CLIPS__"      // []*Clip
	ShortsParam     = "__SHORTS__"     // []*model.ShortClip
)

// ErrMissingArtifact is returned when a step's input is not available, for
// example when resuming a project whose earlier artifacts were deleted.
var ErrMissingArtifact = errors.New("missing artifact")

// ProjectStore is the part of the project service the commands use.
type ProjectStore interface {
	Create(topic string, settings model.ProjectSettings) (*model.Project, error)
	Update(name string, patch map[string]any) (*model.Project, error)
}

// ImageModel generates one image for a prompt.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// VideoEncoder renders the final video.
type VideoEncoder interface {
	Slideshow(ctx context.Context, images []string, audio string, out string) error
	Loop(ctx context.Context, base string, audio string, out string) error
}

// Uploader publishes a video.
type Uploader interface {
	Upload(ctx context.Context, req cloud.UploadRequest, progress googleapi.ProgressUpdater) (string, error)
}

// getProject returns the project descriptor from the context.
func getProject(context cor.Context) (*model.Project, error) {
	p, ok := context.Get(ProjectParam).(*model.Project)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: project descriptor", ErrMissingArtifact)
	}
	return p, nil
}

// getScript returns the parsed script from the context.
func getScript(context cor.Context) (*model.Script, error) {
	s, ok := context.Get(ScriptParam).(*model.Script)
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: script", ErrMissingArtifact)
	}
	return s, nil
}

// hasProject is the common precondition of the production commands.
func hasProject(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ProjectParam) != nil
}

// Artifact locations inside a project folder.
func scriptFile(p *model.Project) string {
	return filepath.Join(p.Dir, model.ScriptFolder, model.ScriptFileName)
}

func narrationFile(p *model.Project) string {
	return filepath.Join(p.Dir, model.AudioFolder, model.NarrationFileName)
}

func videoFile(p *model.Project) string {
	return filepath.Join(p.Dir, model.VideoFolder, model.VideoFileName)
}
