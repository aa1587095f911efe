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
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ShortsMetadataWriter is a command that records the job's moments and
// finished shorts in metadata.json inside the job folder.
type ShortsMetadataWriter struct {
	cor.BaseCommand
	now func() time.Time
}

func NewShortsMetadataWriter(name string) *ShortsMetadataWriter {
	out := &ShortsMetadataWriter{BaseCommand: *cor.NewBaseCommand(name), now: time.Now}
	out.InputParamName = ShortsParam
	return out
}

func (w *ShortsMetadataWriter) IsExecutable(context cor.Context) bool {
	return w.BaseCommand.IsExecutable(context) && hasJob(context)
}

func (w *ShortsMetadataWriter) Execute(context cor.Context) {
	job, err := getJob(context)
	if err != nil {
		w.Fail(context, err)
		return
	}
	moments, _ := context.Get(MomentsParam).([]*model.ViralMoment)
	shorts, _ := context.Get(w.GetInputParam()).([]*model.ShortClip)

	doc := &model.ShortsMetadata{
		VideoID:   job.VideoID,
		SourceURL: job.URL,
		Method:    job.Method,
		Moments:   moments,
		Shorts:    shorts,
		CreatedAt: w.now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		w.Fail(context, err)
		return
	}
	path := filepath.Join(job.Dir, MetadataFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.Fail(context, err)
		return
	}

	w.Succeed(context)
	context.Add(cor.CtxOut, path)
}
