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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Filter is one ffmpeg filter with its positional or key=value arguments.
type Filter struct {
	Name string
	Args []string
}

func (f Filter) String() string {
	if len(f.Args) == 0 {
		return f.Name
	}
	return f.Name + "=" + strings.Join(f.Args, ":")
}

// Step is a filter chain reading the labelled inputs and writing the
// labelled outputs. Labels are given without brackets.
type Step struct {
	Inputs  []string
	Filters []Filter
	Outputs []string
}

func (s Step) String() string {
	var b strings.Builder
	for _, in := range s.Inputs {
		b.WriteString("[" + in + "]")
	}
	for i, f := range s.Filters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	for _, out := range s.Outputs {
		b.WriteString("[" + out + "]")
	}
	return b.String()
}

// FilterGraph is an ordered list of steps, serialized with String for
// -filter_complex.
type FilterGraph struct {
	Steps []Step
}

// Chain appends a step and returns the graph.
func (g *FilterGraph) Chain(inputs []string, outputs []string, filters ...Filter) *FilterGraph {
	g.Steps = append(g.Steps, Step{Inputs: inputs, Filters: filters, Outputs: outputs})
	return g
}

func (g *FilterGraph) String() string {
	parts := make([]string, len(g.Steps))
	for i, s := range g.Steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

// Labels is a small helper for building label lists.
func Labels(labels ...string) []string {
	return labels
}

func Scale(w, h int, fit string) Filter {
	args := []string{strconv.Itoa(w), strconv.Itoa(h)}
	if fit != "" {
		args = append(args, "force_original_aspect_ratio="+fit)
	}
	return Filter{Name: "scale", Args: args}
}

// PadCentered pads to w x h keeping the picture centered.
func PadCentered(w, h int, color string) Filter {
	args := []string{strconv.Itoa(w), strconv.Itoa(h), "(ow-iw)/2", "(oh-ih)/2"}
	if color != "" {
		args = append(args, color)
	}
	return Filter{Name: "pad", Args: args}
}

func Crop(w, h int, x, y string) Filter {
	args := []string{strconv.Itoa(w), strconv.Itoa(h)}
	if x != "" || y != "" {
		args = append(args, x, y)
	}
	return Filter{Name: "crop", Args: args}
}

func SetSAR(v int) Filter {
	return Filter{Name: "setsar", Args: []string{strconv.Itoa(v)}}
}

func FadeIn(start, d float64) Filter {
	return Filter{Name: "fade", Args: []string{"t=in", "st=" + Seconds(start), "d=" + Seconds(d)}}
}

func FadeOut(start, d float64) Filter {
	return Filter{Name: "fade", Args: []string{"t=out", "st=" + Seconds(start), "d=" + Seconds(d)}}
}

func Concat(n int, video, audio int) Filter {
	return Filter{Name: "concat", Args: []string{
		fmt.Sprintf("n=%d", n), fmt.Sprintf("v=%d", video), fmt.Sprintf("a=%d", audio),
	}}
}

func BoxBlur(radius, power int) Filter {
	return Filter{Name: "boxblur", Args: []string{strconv.Itoa(radius), strconv.Itoa(power)}}
}

func Split() Filter {
	return Filter{Name: "split"}
}

func OverlayCentered() Filter {
	return Filter{Name: "overlay", Args: []string{"(W-w)/2", "(H-h)/2"}}
}

// Seconds formats a duration in seconds with at most millisecond precision.
func Seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
