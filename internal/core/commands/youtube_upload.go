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

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/schollz/progressbar/v3"
	"google.golang.org/api/googleapi"
)

// YouTubeUpload is a command that publishes the final video with the
// script's title, description and tags.
type YouTubeUpload struct {
	cor.BaseCommand
	uploader Uploader
	privacy  model.Privacy
	progress io.Writer
}

// NewYouTubeUpload builds the command. Upload progress is drawn on progress;
// privacy applies when the project does not choose one.
func NewYouTubeUpload(name string, uploader Uploader, privacy model.Privacy, progress io.Writer) *YouTubeUpload {
	if progress == nil {
		progress = io.Discard
	}
	out := &YouTubeUpload{BaseCommand: *cor.NewBaseCommand(name), uploader: uploader, privacy: privacy, progress: progress}
	out.OutputParamName = UploadParam
	return out
}

func (v *YouTubeUpload) IsExecutable(context cor.Context) bool {
	return hasProject(context)
}

// Request builds the upload metadata for project. The script is optional;
// without one the topic is used as the title.
func (v *YouTubeUpload) Request(project *model.Project, script *model.Script, path string) cloud.UploadRequest {
	req := cloud.UploadRequest{Path: path, Title: project.Topic, Privacy: project.Settings.Privacy}
	if req.Privacy == "" {
		req.Privacy = v.privacy
	}
	if script != nil {
		if script.Title != "" {
			req.Title = script.Title
		}
		req.Description = script.Description
		req.Tags = script.Tags
	}
	return req
}

func (v *YouTubeUpload) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		v.Fail(context, err)
		return
	}
	path, _ := context.Get(VideoParam).(string)
	if path == "" {
		path = videoFile(project)
		if project.Files.Video != "" {
			path = project.Path(project.Files.Video)
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		v.Fail(context, fmt.Errorf("%w: video %s", ErrMissingArtifact, path))
		return
	}

	script, _ := context.Get(ScriptParam).(*model.Script)
	if script == nil {
		if script, err = LoadScript(scriptFile(project)); err != nil {
			slog.WarnContext(context.GetContext(), "uploading without script metadata", "project", project.Name, "error", err)
		}
	}
	req := v.Request(project, script, path)

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(v.progress),
		progressbar.OptionSetDescription("Uploading to YouTube"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	url, err := v.uploader.Upload(context.GetContext(), req, googleapi.ProgressUpdater(func(current, _ int64) {
		_ = bar.Set64(current)
	}))
	_ = bar.Finish()
	if err != nil {
		v.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "video published", "project", project.Name, "url", url, "privacy", req.Privacy)

	result := &model.YouTubeResult{Uploaded: true, URL: url, Privacy: req.Privacy}
	v.Succeed(context)
	context.Add(v.GetOutputParam(), result)
	context.Add(cor.CtxOut, result)
}
