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
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

var (
	cueTiming = regexp.MustCompile(`((?:\d+:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d+:)?\d{2}:\d{2}\.\d{3})`)
	cueTags   = regexp.MustCompile(`<[^>]*>`)
)

// ParseVTTFile reads a WebVTT subtitle file.
func ParseVTTFile(path string) ([]model.TranscriptSegment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseVTT(f)
}

// ParseVTT turns WebVTT cues into transcript segments. Inline timing and
// styling tags are dropped, and lines repeated from the previous cue (the
// rolling captions YouTube generates) are skipped.
func ParseVTT(r io.Reader) ([]model.TranscriptSegment, error) {
	var segments []model.TranscriptSegment
	var previous map[string]bool

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := cueTiming.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		start, err := parseCueTime(m[1])
		if err != nil {
			return nil, err
		}
		end, err := parseCueTime(m[2])
		if err != nil {
			return nil, err
		}

		current := map[string]bool{}
		var lines []string
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				break
			}
			line = strings.TrimSpace(cueTags.ReplaceAllString(line, ""))
			if line == "" {
				continue
			}
			current[line] = true
			if !previous[line] {
				lines = append(lines, line)
			}
		}
		previous = current
		if len(lines) == 0 {
			continue
		}
		segments = append(segments, model.TranscriptSegment{
			Start:    start,
			Duration: end - start,
			Text:     strings.Join(lines, " "),
		})
	}
	return segments, scanner.Err()
}

// parseCueTime reads HH:MM:SS.mmm or MM:SS.mmm.
func parseCueTime(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid cue time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid cue time %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid cue time %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cue time %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec*float64(time.Second)).Round(time.Millisecond), nil
}
