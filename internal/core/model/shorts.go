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

package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	videoIDFromURL = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
	bareVideoID    = regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`)
)

// ExtractVideoID returns the 11 character YouTube id in a URL or bare id.
func ExtractVideoID(in string) (string, error) {
	in = strings.TrimSpace(in)
	if m := videoIDFromURL.FindStringSubmatch(in); m != nil {
		return m[1], nil
	}
	if m := bareVideoID.FindStringSubmatch(in); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("could not extract a video id from %q", in)
}

// WatchURL is the canonical watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// TranscriptSegment is one timed line of a transcript.
type TranscriptSegment struct {
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
	Text     string        `json:"text"`
}

// FormatTranscript renders segments as "[MM:SS] text" lines.
func FormatTranscript(segments []TranscriptSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		total := int(seg.Start / time.Second)
		fmt.Fprintf(&b, "[%02d:%02d] %s", total/60, total%60, seg.Text)
	}
	return b.String()
}

// ViralMoment is a clip suggested by the language model.
type ViralMoment struct {
	Number      int    `json:"numero"`
	Start       string `json:"timestamp_inicio"`
	End         string `json:"timestamp_fin"`
	Title       string `json:"titulo_sugerido"`
	Description string `json:"descripcion"`
	Hook        string `json:"gancho"`
	WhyViral    string `json:"porque_es_viral"`
}

// Bounds converts the moment's timestamps to seconds.
func (m *ViralMoment) Bounds() (start, end int, err error) {
	if start, err = TimestampSeconds(m.Start); err != nil {
		return 0, 0, err
	}
	if end, err = TimestampSeconds(m.End); err != nil {
		return 0, 0, err
	}
	if end <= start {
		return 0, 0, fmt.Errorf("moment %d ends (%s) before it starts (%s)", m.Number, m.End, m.Start)
	}
	return start, end, nil
}

// ViralMoments is the envelope the model answers with.
type ViralMoments struct {
	Shorts []*ViralMoment `json:"shorts"`
}

// TimestampSeconds parses MM:SS or HH:MM:SS.
func TimestampSeconds(ts string) (int, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", ts)
		}
		total = total*60 + n
	}
	return total, nil
}

// VerticalMethod selects how a landscape clip becomes 9:16.
type VerticalMethod string

const (
	VerticalBlur  VerticalMethod = "blur"
	VerticalCrop  VerticalMethod = "crop"
	VerticalSmart VerticalMethod = "smart"
)

// ParseVerticalMethod validates a conversion method name.
func ParseVerticalMethod(in string) (VerticalMethod, error) {
	switch m := VerticalMethod(in); m {
	case VerticalBlur, VerticalCrop, VerticalSmart:
		return m, nil
	}
	return "", fmt.Errorf("invalid vertical method %q, expected blur, crop or smart", in)
}

// HorizontalPosition is where the subject sits in a landscape frame.
type HorizontalPosition string

const (
	PositionLeft   HorizontalPosition = "left"
	PositionCenter HorizontalPosition = "center"
	PositionRight  HorizontalPosition = "right"
)

// ParsePosition maps model answers (including Spanish ones) to a position,
// defaulting to center.
func ParsePosition(in string) HorizontalPosition {
	switch strings.ToLower(strings.TrimSpace(in)) {
	case "left", "izquierda":
		return PositionLeft
	case "right", "derecha":
		return PositionRight
	}
	return PositionCenter
}

// SubjectPosition is the model's answer for smart cropping.
type SubjectPosition struct {
	Horizontal  string `json:"posicion_horizontal"`
	HasPerson   bool   `json:"hay_persona"`
	Description string `json:"descripcion"`
}

// ShortClip is one finished vertical short.
type ShortClip struct {
	File        string `json:"archivo"`
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
}

// ShortsMetadata is written to metadata.json at the end of a shorts run.
type ShortsMetadata struct {
	VideoID   string         `json:"video_id"`
	SourceURL string         `json:"url_original"`
	Method    VerticalMethod `json:"metodo"`
	Moments   []*ViralMoment `json:"momentos_detectados"`
	Shorts    []*ShortClip   `json:"shorts_generados"`
	CreatedAt string         `json:"fecha"`
}
