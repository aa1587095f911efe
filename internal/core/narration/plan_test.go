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
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanDirect(t *testing.T) {
	plan := narration.BuildPlan([]string{"Short text."}, "Whisper.", 7000)
	require.True(t, plan.Direct)
	require.Len(t, plan.Items, 1)
	assert.Equal(t, "Whisper.\n\nShort text.", plan.Items[0].Text)
	assert.Empty(t, plan.Items[0].File)

	plan = narration.BuildPlan([]string{"One.", "Two."}, "", 7000)
	require.True(t, plan.Direct)
	assert.Equal(t, "One.\n\nTwo.", plan.Items[0].Text)
}

func TestBuildPlanEmpty(t *testing.T) {
	plan := narration.BuildPlan([]string{"", " \n "}, "style", 7000)
	assert.False(t, plan.Direct)
	assert.Empty(t, plan.Items)
}

func TestBuildPlanPerSection(t *testing.T) {
	a := strings.Repeat("a", 4000)
	b := strings.Repeat("b", 4000)

	plan := narration.BuildPlan([]string{a, "   ", b}, "", 7000)
	require.False(t, plan.Direct)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, "temp_0.wav", plan.Items[0].File)
	assert.Equal(t, a, plan.Items[0].Text)
	assert.Equal(t, "temp_2.wav", plan.Items[1].File)
	assert.Equal(t, "section 3", plan.Items[1].Label())

	plan = narration.BuildPlan([]string{a, b}, "Slowly.", 7000)
	require.Len(t, plan.Items, 2)
	for _, item := range plan.Items {
		assert.True(t, strings.HasPrefix(item.Text, "Slowly.\n\n"))
	}
}

func TestBuildPlanSplitsOversizedSection(t *testing.T) {
	p1 := strings.Repeat("x", 4000)
	p2 := strings.Repeat("y", 4000)
	short := "A short closing section."

	plan := narration.BuildPlan([]string{p1 + "\n\n" + p2, short}, "Slowly.", 7000)
	require.Len(t, plan.Items, 3)

	assert.Equal(t, "temp_0_0.wav", plan.Items[0].File)
	assert.Equal(t, "Slowly.\n\n"+p1, plan.Items[0].Text)
	assert.Equal(t, "temp_0_1.wav", plan.Items[1].File)
	assert.Equal(t, "Slowly.\n\n"+p2, plan.Items[1].Text)
	assert.Equal(t, "section 1 part 2", plan.Items[1].Label())
	assert.Equal(t, "temp_1.wav", plan.Items[2].File)
	assert.Equal(t, "Slowly.\n\n"+short, plan.Items[2].Text)
}

func TestBuildPlanSubChunksFitWithStyle(t *testing.T) {
	style := "Read it calmly."
	words := strings.TrimSpace(strings.Repeat("Una frase corta. ", 1500))

	plan := narration.BuildPlan([]string{words}, style, 7000)
	require.Greater(t, len(plan.Items), 1)
	for _, item := range plan.Items {
		assert.True(t, strings.HasPrefix(item.Text, style+"\n\n"), item.Label())
		assert.LessOrEqual(t, len([]rune(item.Text)), 7000, item.Label())
	}
}

func TestBuildPlanWithoutLimit(t *testing.T) {
	plan := narration.BuildPlan([]string{strings.Repeat("z", 20000)}, "", 0)
	assert.True(t, plan.Direct)
	assert.Len(t, plan.Items, 1)
}
