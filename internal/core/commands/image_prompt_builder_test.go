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

package commands_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentNarration(t *testing.T) {
	segments := commands.SegmentNarration("a b c d e f g h i j", 35, 10)
	require.Len(t, segments, 4)
	assert.Equal(t, commands.NarrationSegment{Index: 0, Start: 0, End: 10, Text: "a b"}, segments[0])
	assert.Equal(t, commands.NarrationSegment{Index: 2, Start: 20, End: 30, Text: "e f"}, segments[2])
	assert.Equal(t, commands.NarrationSegment{Index: 3, Start: 30, End: 35, Text: "g h i j"}, segments[3])
}

func TestSegmentNarrationNeverExceedsWords(t *testing.T) {
	segments := commands.SegmentNarration("uno dos", 100, 10)
	require.Len(t, segments, 2)
	assert.Equal(t, "uno", segments[0].Text)
	assert.Equal(t, "dos", segments[1].Text)
}

func TestSegmentNarrationShortTrack(t *testing.T) {
	segments := commands.SegmentNarration("uno dos tres", 4, 30)
	require.Len(t, segments, 1)
	assert.Equal(t, "uno dos tres", segments[0].Text)
	assert.Equal(t, 4, segments[0].End)

	assert.Empty(t, commands.SegmentNarration("   ", 60, 10))
}

func TestClampSecondsPerImage(t *testing.T) {
	assert.Equal(t, commands.MinSecondsPerImage, commands.ClampSecondsPerImage(5))
	assert.Equal(t, commands.MaxSecondsPerImage, commands.ClampSecondsPerImage(500))
	assert.Equal(t, 30, commands.ClampSecondsPerImage(30))
}
