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
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration asks ffprobe for the container duration of path.
func (e *Encoder) Duration(ctx context.Context, path string) (time.Duration, error) {
	if err := checkReadable("probe", path); err != nil {
		return 0, err
	}
	out, err := e.runner.Run(ctx, e.cfg.FFprobePath, "-v", "quiet", "-print_format", "json", "-show_format", path)
	if err != nil {
		return 0, err
	}
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("unreadable ffprobe output for %s: %w", path, err)
	}
	secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || secs <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// FrameArgs grabs the frame at offset from video into out as a JPEG.
func (e *Encoder) FrameArgs(video string, offset time.Duration, out string) []string {
	return ffmpeg.Input(video, ffmpeg.KwArgs{"ss": Seconds(offset.Seconds())}).
		Output(out, ffmpeg.KwArgs{"vframes": 1, "q:v": 2}).OverWriteOutput().GetArgs()
}

// ExtractFrames writes n frames spread evenly over the video into dir and
// returns their paths in time order.
func (e *Encoder) ExtractFrames(ctx context.Context, video string, dir string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	d, err := e.Duration(ctx, video)
	if err != nil {
		return nil, err
	}
	interval := d / time.Duration(n+1)

	frames := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out := filepath.Join(dir, fmt.Sprintf("frame_%02d.jpg", i))
		if _, err := e.runner.Run(ctx, e.cfg.FFmpegPath, e.FrameArgs(video, interval*time.Duration(i), out)...); err != nil {
			removeQuietly(frames...)
			return nil, err
		}
		frames = append(frames, out)
	}
	return frames, nil
}
