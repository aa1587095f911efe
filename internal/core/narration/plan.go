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

package narration

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the largest text sent to the speech service in one call.
const DefaultMaxChars = 7000

const sectionSeparator = "\n\n"

// Plan is the ordered list of synthesis calls for one narration.
type Plan struct {
	// Direct is set when the whole narration fits in one call. The single
	// item is then written straight to the destination file.
	Direct bool
	Items  []PlanItem
}

// PlanItem is one synthesis call.
type PlanItem struct {
	Section int    // Index of the source section, -1 for a direct plan.
	Part    int    // Index of the sub-chunk, -1 when the section was not split.
	Text    string // Style-prefixed text sent to the synthesizer.
	File    string // Temporary file name, empty for a direct plan.
}

// Label identifies the item in errors and logs.
func (p PlanItem) Label() string {
	switch {
	case p.Section < 0:
		return "full narration"
	case p.Part < 0:
		return fmt.Sprintf("section %d", p.Section+1)
	default:
		return fmt.Sprintf("section %d part %d", p.Section+1, p.Part+1)
	}
}

// BuildPlan decides how a narration is synthesized.
//
// If all sections joined by blank lines fit within limit, the plan is one
// direct call for the style-prefixed whole. Otherwise every section gets its
// own call with the style prefixed, and a section that is still too long is
// segmented further. Blank sections are skipped. Every item carries the style
// prefix, so sub-chunks of a split section are cut to leave room for it.
// Segmentation runs on the bare section text, never on the prefixed text, so
// the prefix is not read as the first paragraph of the first sub-chunk.
func BuildPlan(sections []string, style string, limit int) Plan {
	kept := make([]int, 0, len(sections))
	for i, s := range sections {
		if strings.TrimSpace(s) != "" {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return Plan{}
	}

	texts := make([]string, 0, len(kept))
	for _, i := range kept {
		texts = append(texts, sections[i])
	}
	total := strings.Join(texts, sectionSeparator)
	if limit <= 0 || utf8.RuneCountInString(total) <= limit {
		return Plan{Direct: true, Items: []PlanItem{{Section: -1, Part: -1, Text: applyStyle(style, total)}}}
	}

	budget := limit - utf8.RuneCountInString(applyStyle(style, ""))
	if budget <= 0 {
		budget = limit
	}

	plan := Plan{}
	for _, i := range kept {
		text := applyStyle(style, sections[i])
		if utf8.RuneCountInString(text) <= limit {
			plan.Items = append(plan.Items, PlanItem{Section: i, Part: -1, Text: text, File: fmt.Sprintf("temp_%d.wav", i)})
			continue
		}
		for j, c := range Segment(sections[i], budget) {
			plan.Items = append(plan.Items, PlanItem{Section: i, Part: j, Text: applyStyle(style, c.Text), File: fmt.Sprintf("temp_%d_%d.wav", i, j)})
		}
	}
	return plan
}

func applyStyle(style, text string) string {
	if style == "" {
		return text
	}
	return style + sectionSeparator + text
}
