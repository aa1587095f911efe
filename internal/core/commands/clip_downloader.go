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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ErrNoClips is returned when no moment could be downloaded.
var ErrNoClips = errors.New("no clips were downloaded")

// ClipDownloader is a command that downloads the landscape clip of every
// selected moment. A moment that cannot be downloaded is logged and skipped.
type ClipDownloader struct {
	cor.BaseCommand
	source ClipSource
}

func NewClipDownloader(name string, source ClipSource) *ClipDownloader {
	out := &ClipDownloader{BaseCommand: *cor.NewBaseCommand(name), source: source}
	out.InputParamName = MomentsParam
	out.OutputParamName = ClipsParam
	return out
}

func (c *ClipDownloader) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && hasJob(context)
}

func (c *ClipDownloader) Execute(context cor.Context) {
	job, err := getJob(context)
	if err != nil {
		c.Fail(context, err)
		return
	}
	moments, _ := context.Get(c.GetInputParam()).([]*model.ViralMoment)

	ctx := context.GetContext()
	clips := make([]*Clip, 0, len(moments))
	for i, m := range moments {
		if err := ctx.Err(); err != nil {
			c.Fail(context, err)
			return
		}
		n := i + 1
		start, end, err := m.Bounds()
		if err != nil {
			slog.WarnContext(ctx, "moment skipped", "number", n, "error", err)
			continue
		}
		out := filepath.Join(job.ClipsDir(), fmt.Sprintf("clip_%02d_original.mp4", n))
		if err := c.source.DownloadClip(ctx, job.URL, start, end, out); err != nil {
			slog.WarnContext(ctx, "clip download failed", "number", n, "start", m.Start, "end", m.End, "error", err)
			continue
		}
		clips = append(clips, &Clip{Number: n, Moment: m, Path: out})
	}
	if len(clips) == 0 {
		c.Fail(context, ErrNoClips)
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), clips)
	context.Add(cor.CtxOut, clips)
}
