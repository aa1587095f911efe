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

package narration_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hasParagraphBreak = regexp.MustCompile(`\n[ \t]*\n`)
	hasSentenceBreak  = regexp.MustCompile(`[.!?]\s+`)
)

func paragraph(words int, word string) string {
	return strings.Repeat(word+" ", words-1) + word + "."
}

var segmentSamples = []string{
	"Short text.",
	"One. Two. Three. Four! Five? Six.",
	"First paragraph here.\n\nSecond paragraph, a bit longer than the first.\n\n\nThird.",
	"Tabs and spaces.\n \t\nStill separate.\n\nAnd one more. With two sentences.",
	"Mañana será otro día. ¿Verdad? Sí, claro. Años después, el faro seguía encendido.",
	"No punctuation at all in this single long line of narration text",
	"Trailing separator.\n\n",
	"Ends mid. Sentence and then some",
}

func TestSegmentReconstructsInput(t *testing.T) {
	for _, text := range segmentSamples {
		for limit := 1; limit <= 90; limit++ {
			chunks := narration.Segment(text, limit)
			assert.Equal(t, text, narration.Join(chunks), "limit %d", limit)
			for _, c := range chunks {
				assert.NotEmpty(t, c.Text, "limit %d", limit)
			}
		}
	}
}

func TestSegmentRespectsLimit(t *testing.T) {
	for _, text := range segmentSamples {
		multiParagraph := hasParagraphBreak.MatchString(strings.TrimRight(text, "\n"))
		for limit := 1; limit <= 90; limit++ {
			for _, c := range narration.Segment(text, limit) {
				if c.Len() <= limit {
					continue
				}
				// Only a single indivisible unit may exceed the limit.
				if multiParagraph {
					assert.False(t, hasParagraphBreak.MatchString(c.Text), "limit %d chunk %q", limit, c.Text)
				} else {
					assert.False(t, hasSentenceBreak.MatchString(c.Text), "limit %d chunk %q", limit, c.Text)
				}
			}
		}
	}
}

func TestSegmentTrailingSeparatorStaysOutOfText(t *testing.T) {
	for _, tc := range []struct {
		text string
		last narration.Chunk
	}{
		{"aaa. bbb. ", narration.Chunk{Text: "bbb.", Separator: " "}},
		{"aaaa\n\nbbbb\n\n", narration.Chunk{Text: "bbbb", Separator: "\n\n"}},
	} {
		chunks := narration.Segment(tc.text, 4)
		require.Len(t, chunks, 2, tc.text)
		assert.Equal(t, tc.last, chunks[1], tc.text)
		for _, c := range chunks {
			assert.LessOrEqual(t, c.Len(), 4, tc.text)
		}
		assert.Equal(t, tc.text, narration.Join(chunks))
	}
}

func TestSegmentShortTextIsOneChunk(t *testing.T) {
	chunks := narration.Segment("Short text.", 7000)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Short text.", chunks[0].Text)
	assert.Empty(t, chunks[0].Separator)

	assert.Len(t, narration.Segment("Short text.", 0), 1)
	assert.Empty(t, narration.Segment("", 7000))
}

func TestSegmentTwoParagraphsOverLimit(t *testing.T) {
	p1 := paragraph(900, "word")
	p2 := paragraph(900, "more")
	require.Len(t, p1, 4500)
	text := p1 + "\n\n" + p2

	chunks := narration.Segment(text, 7000)
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0].Text)
	assert.Equal(t, "\n\n", chunks[0].Separator)
	assert.Equal(t, p2, chunks[1].Text)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Len(), 7000)
	}
}

func TestSegmentFallsBackToSentences(t *testing.T) {
	first := strings.Repeat("a", 4999) + "."
	second := strings.Repeat("b", 2999) + "."
	chunks := narration.Segment(first+" "+second, 7000)
	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0].Text)
	assert.Equal(t, " ", chunks[0].Separator)
	assert.Equal(t, second, chunks[1].Text)
}

func TestSegmentKeepsOversizedSentence(t *testing.T) {
	huge := strings.Repeat("x", 7999) + "."
	chunks := narration.Segment(huge+" Short one.", 7000)
	require.Len(t, chunks, 2)
	assert.Equal(t, 8000, chunks[0].Len())
	assert.Equal(t, "Short one.", chunks[1].Text)

	chunks = narration.Segment(huge, 7000)
	require.Len(t, chunks, 1)
	assert.Equal(t, huge, chunks[0].Text)
}

func TestSegmentCountsCodePoints(t *testing.T) {
	text := "ñññ. ééé."
	chunks := narration.Segment(text, 9)
	require.Len(t, chunks, 1)

	chunks = narration.Segment(text, 8)
	require.Len(t, chunks, 2)
	assert.Equal(t, "ñññ.", chunks[0].Text)
}
