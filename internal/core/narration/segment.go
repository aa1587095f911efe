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

// Package narration turns a script's narration into one continuous waveform.
// Text longer than a single synthesis call allows is cut into chunks at
// paragraph (or sentence) boundaries, each chunk is synthesized into its own
// temporary WAV file, and the files are concatenated back in order.
package narration

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// A blank line, possibly holding spaces or tabs, plus any blank lines
	// that follow it.
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)*`)
	// Sentence punctuation followed by whitespace. The punctuation stays
	// with the sentence.
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
)

// Chunk is a bounded piece of narration. Separator is the original text that
// stood between this chunk and the next one. For the last chunk it holds any
// separator the text ends with.
type Chunk struct {
	Text      string
	Separator string
}

// Len is the chunk length in code points.
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

type unit struct {
	text string
	sep  string
}

// Segment splits text into chunks of at most limit code points.
//
// Paragraphs are the preferred unit; when the text is a single paragraph,
// sentences are used instead. Units are packed greedily. A unit that is longer
// than limit on its own becomes a chunk of its own and is never cut. Empty
// text yields no chunks and a non-positive limit disables splitting.
func Segment(text string, limit int) []Chunk {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []Chunk{{Text: text}}
	}

	units := splitOn(text, paragraphBreak, 0)
	if len(units) == 1 {
		units = splitOn(text, sentenceBreak, 1)
	}

	chunks := make([]Chunk, 0, len(units))
	var current strings.Builder
	currentLen := 0
	pendingSep := ""

	for i, u := range units {
		unitLen := utf8.RuneCountInString(u.text)
		sepLen := utf8.RuneCountInString(pendingSep)

		// A trailing separator stays outside the last chunk's text.
		if i > 0 && i == len(units)-1 && unitLen == 0 && currentLen > 0 {
			return append(chunks, Chunk{Text: current.String(), Separator: pendingSep})
		}

		switch {
		case i == 0:
			current.WriteString(u.text)
			currentLen = unitLen
		case currentLen == 0 || unitLen == 0 || currentLen+sepLen+unitLen <= limit:
			// An empty unit (text opening with a separator) is absorbed so
			// that no chunk is ever empty.
			current.WriteString(pendingSep)
			current.WriteString(u.text)
			currentLen += sepLen + unitLen
		default:
			chunks = append(chunks, Chunk{Text: current.String(), Separator: pendingSep})
			current.Reset()
			current.WriteString(u.text)
			currentLen = unitLen
		}
		pendingSep = u.sep
	}

	return append(chunks, Chunk{Text: current.String()})
}

// Join reassembles chunks into the text they were cut from.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Text)
		b.WriteString(c.Separator)
	}
	return b.String()
}

// splitOn cuts text at every match of re. The first keep bytes of each match
// stay with the preceding unit, the rest becomes its separator.
func splitOn(text string, re *regexp.Regexp, keep int) []unit {
	matches := re.FindAllStringIndex(text, -1)
	out := make([]unit, 0, len(matches)+1)
	start := 0
	for _, m := range matches {
		end := m[0] + keep
		out = append(out, unit{text: text[start:end], sep: text[end:m[1]]})
		start = m[1]
	}
	return append(out, unit{text: text[start:]})
}
