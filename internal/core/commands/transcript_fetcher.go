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
	"log/slog"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
)

// TranscriptFetcher is a command that downloads and parses the subtitles of
// the job's video. The subtitle file is released with the context.
type TranscriptFetcher struct {
	cor.BaseCommand
	source    ClipSource
	languages []string
}

func NewTranscriptFetcher(name string, source ClipSource, languages []string) *TranscriptFetcher {
	out := &TranscriptFetcher{BaseCommand: *cor.NewBaseCommand(name), source: source, languages: languages}
	out.OutputParamName = TranscriptParam
	return out
}

func (c *TranscriptFetcher) IsExecutable(context cor.Context) bool {
	return hasJob(context)
}

func (c *TranscriptFetcher) Execute(context cor.Context) {
	job, err := getJob(context)
	if err != nil {
		c.Fail(context, err)
		return
	}

	file, err := c.source.Subtitles(context.GetContext(), job.URL, c.languages, job.Dir)
	if err != nil {
		c.Fail(context, fmt.Errorf("transcript for %s: %w", job.VideoID, err))
		return
	}
	context.AddTempFile(file)

	segments, err := media.ParseVTTFile(file)
	if err != nil {
		c.Fail(context, err)
		return
	}
	if len(segments) == 0 {
		c.Fail(context, fmt.Errorf("transcript for %s: %w", job.VideoID, media.ErrNoTranscript))
		return
	}
	slog.InfoContext(context.GetContext(), "transcript ready", "video", job.VideoID, "segments", len(segments))

	c.Succeed(context)
	context.Add(c.GetOutputParam(), segments)
	context.Add(cor.CtxOut, segments)
}
