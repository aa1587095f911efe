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

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	shortWidth  = 1080
	shortHeight = 1920
	// A 9:16 window over a 1920x1080 frame.
	cropWidth = 607
)

// cropX is the left edge of the crop window for a subject position.
func cropX(pos model.HorizontalPosition) string {
	switch pos {
	case model.PositionLeft:
		return "0"
	case model.PositionRight:
		return "in_w-607"
	default:
		return "(in_w-607)/2"
	}
}

// VerticalGraph converts a landscape clip to 1080x1920. Blur fills the frame
// with a blurred copy behind the scaled original; crop and smart cut a 9:16
// window, smart placing it at pos.
func VerticalGraph(method model.VerticalMethod, pos model.HorizontalPosition) *FilterGraph {
	g := &FilterGraph{}
	if method == model.VerticalBlur {
		return g.
			Chain(Labels("0:v"), Labels("bg", "fg"), Split()).
			Chain(Labels("bg"), Labels("blurred"),
				Scale(shortWidth, shortHeight, "increase"),
				Crop(shortWidth, shortHeight, "", ""),
				BoxBlur(20, 20)).
			Chain(Labels("fg"), Labels("front"), Scale(shortWidth, shortHeight, "decrease")).
			Chain(Labels("blurred", "front"), nil, OverlayCentered())
	}
	if method != model.VerticalSmart {
		pos = model.PositionCenter
	}
	return g.Chain(nil, nil,
		Scale(1920, 1080, "increase"),
		Crop(cropWidth, 1080, cropX(pos), "0"),
		Scale(shortWidth, shortHeight, ""),
	)
}

// VerticalArgs builds the ffmpeg command for a vertical conversion.
func (e *Encoder) VerticalArgs(in, out string, method model.VerticalMethod, pos model.HorizontalPosition) []string {
	return ffmpeg.Input(in).Output(out, ffmpeg.KwArgs{
		"filter_complex": VerticalGraph(method, pos).String(),
		"c:v":            "libx264",
		"preset":         e.cfg.Video.Preset,
		"crf":            e.cfg.Video.CRF,
		"c:a":            "aac",
		"b:a":            "128k",
	}).OverWriteOutput().GetArgs()
}

// ToVertical converts a landscape clip into a 9:16 short at out.
func (e *Encoder) ToVertical(ctx context.Context, in, out string, method model.VerticalMethod, pos model.HorizontalPosition) error {
	if err := checkReadable("vertical", in); err != nil {
		return err
	}
	return e.render(ctx, out, func(partial string) []string {
		return e.VerticalArgs(in, partial, method, pos)
	})
}
