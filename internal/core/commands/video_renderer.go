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

// This file defines the command that assembles the final video.
//
// Logic Flow:
//  1. The narration track is taken from this run or, on resume, from the
//     project folder.
//  2. In slideshow mode the generated images are shown in order, each for
//     an equal share of the narration, with fades between them.
//  3. In loop mode a base video is picked from the project's category and
//     repeated under the narration. Base videos may live in Cloud Storage;
//     those are downloaded to a temporary file released with the context.
//  4. The path of video/video_final.mp4 is placed under VideoParam.
package commands

import (
	goctx "context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ErrNoBaseVideo is returned when loop mode has no video to loop.
var ErrNoBaseVideo = errors.New("no base video available")

// ObjectFetcher downloads a gs:// object to a local file and returns its
// path.
type ObjectFetcher func(ctx goctx.Context, obj cloud.GCSObject) (string, error)

// VideoRenderer is a command that renders the final video of a project.
type VideoRenderer struct {
	cor.BaseCommand
	encoder  VideoEncoder
	settings cloud.VideoSettings
	fetch    ObjectFetcher
	pick     func(n int) int
}

// NewVideoRenderer builds the command. fetch may be nil when no base video
// lives in Cloud Storage.
func NewVideoRenderer(name string, encoder VideoEncoder, settings cloud.VideoSettings, fetch ObjectFetcher) *VideoRenderer {
	out := &VideoRenderer{
		BaseCommand: *cor.NewBaseCommand(name),
		encoder:     encoder,
		settings:    settings,
		fetch:       fetch,
		pick:        rand.IntN,
	}
	out.OutputParamName = VideoParam
	return out
}

func (c *VideoRenderer) IsExecutable(context cor.Context) bool {
	return hasProject(context)
}

// Mode returns the project's video mode or the configured one.
func (c *VideoRenderer) Mode(project *model.Project) model.VideoMode {
	if project.Settings.VideoMode != "" {
		return project.Settings.VideoMode
	}
	return c.settings.Mode
}

func (c *VideoRenderer) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		c.Fail(context, err)
		return
	}
	track, err := getNarration(context, project)
	if err != nil {
		c.Fail(context, err)
		return
	}
	out := videoFile(project)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		c.Fail(context, err)
		return
	}

	ctx := context.GetContext()
	switch mode := c.Mode(project); mode {
	case model.VideoModeLoop:
		base, err := c.baseVideo(context, project.Settings.BaseCategory)
		if err != nil {
			c.Fail(context, err)
			return
		}
		slog.InfoContext(ctx, "rendering looped video", "project", project.Name, "base", base)
		err = c.encoder.Loop(ctx, base, track.Path, out)
		if err != nil {
			c.Fail(context, fmt.Errorf("rendering video: %w", err))
			return
		}
	case model.VideoModeSlideshow:
		images := projectImages(context, project)
		slog.InfoContext(ctx, "rendering slideshow", "project", project.Name, "images", len(images))
		if err := c.encoder.Slideshow(ctx, images, track.Path, out); err != nil {
			c.Fail(context, fmt.Errorf("rendering video: %w", err))
			return
		}
	default:
		c.Fail(context, fmt.Errorf("unknown video mode %q", mode))
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), out)
	context.Add(cor.CtxOut, out)
}

// projectImages returns this run's images or the project's stored ones.
func projectImages(context cor.Context, project *model.Project) []string {
	if images, ok := context.Get(ImagesParam).([]string); ok {
		return images
	}
	images := make([]string, 0, len(project.Files.Images))
	for _, rel := range project.Files.Images {
		images = append(images, project.Path(rel))
	}
	return images
}

// BaseVideos lists the candidate base videos of a category. An unknown
// category falls back to every mp4 in the base videos folder.
func (c *VideoRenderer) BaseVideos(category string) ([]string, error) {
	if category == "" {
		category = c.settings.DefaultCategory
	}
	var files []string
	if cat, ok := c.settings.Categories[category]; ok {
		files = cat.Files
	} else {
		entries, err := os.ReadDir(c.settings.BaseVideosDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".mp4") {
				files = append(files, e.Name())
			}
		}
		sort.Strings(files)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in category %q", ErrNoBaseVideo, category)
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasPrefix(f, "gs://") || filepath.IsAbs(f) {
			out = append(out, f)
		} else {
			out = append(out, filepath.Join(c.settings.BaseVideosDir, f))
		}
	}
	return out, nil
}

func (c *VideoRenderer) baseVideo(context cor.Context, category string) (string, error) {
	candidates, err := c.BaseVideos(category)
	if err != nil {
		return "", err
	}
	chosen := candidates[0]
	if c.settings.Selection == cloud.SelectRandom {
		chosen = candidates[c.pick(len(candidates))]
	}

	if !strings.HasPrefix(chosen, "gs://") {
		if _, err := os.Stat(chosen); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNoBaseVideo, chosen)
		}
		return chosen, nil
	}
	if c.fetch == nil {
		return "", fmt.Errorf("%w: %s needs a storage client", ErrNoBaseVideo, chosen)
	}
	obj, err := cloud.ParseGCSURI(chosen)
	if err != nil {
		return "", err
	}
	local, err := c.fetch(context.GetContext(), obj)
	if err != nil {
		return "", err
	}
	context.AddTempFile(local)
	return local, nil
}
