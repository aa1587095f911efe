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
	goctx "context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// Folders of a shorts job.
const (
	ClipsFolder        = "clips_originales"
	ShortsFolder       = "shorts"
	MetadataFileName   = "metadata.json"
	maxShortTitleRunes = 30
)

var unsafeTitle = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// ClipSource fetches subtitles and clips of a YouTube video. It is
// satisfied by *media.Downloader.
type ClipSource interface {
	Subtitles(ctx goctx.Context, url string, langs []string, dir string) (string, error)
	DownloadClip(ctx goctx.Context, url string, start, end int, out string) error
}

// VerticalEncoder converts clips to 9:16. It is satisfied by *media.Encoder.
type VerticalEncoder interface {
	ToVertical(ctx goctx.Context, in, out string, method model.VerticalMethod, pos model.HorizontalPosition) error
	ExtractFrames(ctx goctx.Context, video string, dir string, n int) ([]string, error)
}

// ShortsJob describes one run of the shorts pipeline.
type ShortsJob struct {
	URL     string
	VideoID string
	Count   int
	Method  model.VerticalMethod
	Dir     string // <output>/shorts_<id>
}

// Clip is a downloaded landscape clip of one moment.
type Clip struct {
	Number int
	Moment *model.ViralMoment
	Path   string
}

// NewShortsJob resolves the video id of url and lays out the job folders
// under outputDir.
func NewShortsJob(outputDir, url string, count int, method model.VerticalMethod) (*ShortsJob, error) {
	id, err := model.ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("shorts count must be positive, got %d", count)
	}
	return &ShortsJob{
		URL:     model.WatchURL(id),
		VideoID: id,
		Count:   count,
		Method:  method,
		Dir:     filepath.Join(outputDir, "shorts_"+id),
	}, nil
}

// ClipsDir holds the downloaded landscape clips.
func (j *ShortsJob) ClipsDir() string {
	return filepath.Join(j.Dir, ClipsFolder)
}

// ShortsDir holds the finished vertical shorts.
func (j *ShortsJob) ShortsDir() string {
	return filepath.Join(j.Dir, ShortsFolder)
}

// Prepare creates the job folders.
func (j *ShortsJob) Prepare() error {
	for _, dir := range []string{j.ClipsDir(), j.ShortsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// ShortFileName names the short of moment n after its suggested title.
func ShortFileName(n int, title string) string {
	safe := model.Snippet(unsafeTitle.ReplaceAllString(title, ""), maxShortTitleRunes)
	return fmt.Sprintf("short_%02d_%s.mp4", n, safe)
}

func getJob(context cor.Context) (*ShortsJob, error) {
	job, ok := context.Get(ShortsJobParam).(*ShortsJob)
	if !ok || job == nil {
		return nil, fmt.Errorf("%w: shorts job", ErrMissingArtifact)
	}
	return job, nil
}

func hasJob(context cor.Context) bool {
	return context != nil && context.GetContext() != nil && context.Get(ShortsJobParam) != nil
}
