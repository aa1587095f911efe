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

// Package model holds the studio's data types: the generated script, the
// project descriptor and its status machine, narration styles, and the
// shorts pipeline's moments and transcripts.
//
// JSON field names follow the descriptor and script files already on disk,
// so projects created by earlier versions keep loading.
package model

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSectionSeconds is used when a section's duration cannot be parsed.
const DefaultSectionSeconds = 30

// SectionSeparator joins section narrations into the full narration text.
const SectionSeparator = "\n\n"

var firstNumber = regexp.MustCompile(`\d+`)

// Script is the structured output of the text generator. Section order is
// both narration order and placement order in the final video.
type Script struct {
	Title       string     `json:"titulo_sugerido"`
	Description string     `json:"descripcion_sugerida"`
	Tags        Tags       `json:"etiquetas_sugeridas"`
	Sections    []*Section `json:"estructura_guion"`
}

// Section is one structural unit of a script.
type Section struct {
	Name      string  `json:"seccion"`
	Duration  Seconds `json:"duracion_aprox_segundos"`
	Narration string  `json:"audio_narracion"`
	Visuals   string  `json:"instrucciones_visuales"`
}

// Narrations returns the narration text of every section, in order.
func (s *Script) Narrations() []string {
	out := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		out = append(out, section.Narration)
	}
	return out
}

// FullNarration joins all section narrations with a blank line.
func (s *Script) FullNarration() string {
	return strings.Join(s.Narrations(), SectionSeparator)
}

// TotalDuration is the sum of the approximate section durations in seconds.
func (s *Script) TotalDuration() int {
	total := 0
	for _, section := range s.Sections {
		total += int(section.Duration)
	}
	return total
}

// WordCount counts whitespace separated words across all narrations.
func (s *Script) WordCount() int {
	return len(strings.Fields(s.FullNarration()))
}

// Seconds is a duration in whole seconds that tolerates the loose values a
// language model produces: integers, floats and strings such as "45 seconds".
type Seconds int

func (d *Seconds) UnmarshalJSON(data []byte) error {
	*d = Seconds(ParseSeconds(data))
	return nil
}

// ParseSeconds extracts a whole number of seconds from a raw JSON value.
// Anything unusable yields DefaultSectionSeconds.
func ParseSeconds(raw json.RawMessage) int {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return DefaultSectionSeconds
	}
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return DefaultSectionSeconds
		}
		return int(t)
	case string:
		if m := firstNumber.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}
	return DefaultSectionSeconds
}

// Tags are stored on disk as one comma separated string. Arrays are accepted
// on input as well.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = cleanTags(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	*t = SplitTags(joined)
	return nil
}

func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(t, ","))
}

// SplitTags splits a comma separated list and drops empty entries.
func SplitTags(in string) Tags {
	return cleanTags(strings.Split(in, ","))
}

func cleanTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	for _, tag := range in {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// SectionTemplate describes a section the script prompt asks for.
type SectionTemplate struct {
	Name      string `toml:"name" json:"seccion"`
	Duration  int    `toml:"duration" json:"duracion_aprox_segundos"`
	Narration string `toml:"narration" json:"audio_narracion"`
	Visuals   string `toml:"visuals" json:"instrucciones_visuales"`
}
