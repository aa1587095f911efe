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

package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNoTranscript means the video has no subtitles in any requested language.
	ErrNoTranscript = errors.New("no transcript available for this video")
	// ErrTranscriptsDisabled means the uploader turned subtitles off.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
)

const clipFormat = "bestvideo[height<=1080]+bestaudio/best[height<=1080]"

// Downloader wraps yt-dlp.
type Downloader struct {
	runner Runner
	path   string
}

func NewDownloader(runner Runner, path string) *Downloader {
	if path == "" {
		path = "yt-dlp"
	}
	return &Downloader{runner: runner, path: path}
}

// ClipArgs downloads only the [start, end] second range of url.
func (d *Downloader) ClipArgs(url string, start, end int, out string) []string {
	return []string{
		"--download-sections", fmt.Sprintf("*%d-%d", start, end),
		"-f", clipFormat,
		"--merge-output-format", "mp4",
		"-o", out,
		"--no-playlist",
		url,
	}
}

// DownloadClip saves the [start, end] second range of url as an mp4 at out.
func (d *Downloader) DownloadClip(ctx context.Context, url string, start, end int, out string) error {
	if end <= start {
		return &PreconditionError{Op: "download clip", Err: fmt.Errorf("empty range %d-%d", start, end)}
	}
	if _, err := d.runner.Run(ctx, d.path, d.ClipArgs(url, start, end, out)...); err != nil {
		return err
	}
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("yt-dlp finished without writing %s: %w", out, err)
	}
	return nil
}

// SubtitleArgs fetches manual and automatic WebVTT subtitles without the video.
func (d *Downloader) SubtitleArgs(url string, langs []string, dir string) []string {
	return []string{
		"--skip-download",
		"--write-auto-sub", "--write-sub",
		"--sub-lang", strings.Join(langs, ","),
		"--sub-format", "vtt",
		"--no-playlist",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		url,
	}
}

// Subtitles downloads the subtitles of url into dir and returns the file for
// the first language in langs that is available.
func (d *Downloader) Subtitles(ctx context.Context, url string, langs []string, dir string) (string, error) {
	out, err := d.runner.Run(ctx, d.path, d.SubtitleArgs(url, langs, dir)...)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) && subtitlesDisabled(toolErr.Stderr) {
			return "", ErrTranscriptsDisabled
		}
		return "", err
	}
	if subtitlesDisabled(string(out)) {
		return "", ErrTranscriptsDisabled
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoTranscript
	}
	sort.Strings(files)
	for _, lang := range langs {
		for _, f := range files {
			if strings.HasSuffix(f, "."+lang+".vtt") {
				return f, nil
			}
		}
	}
	return files[0], nil
}

func subtitlesDisabled(output string) bool {
	return strings.Contains(strings.ToLower(output), "subtitles are disabled")
}
