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
	"sort"
	"strings"
)

// Prebuilt narrator voices.
const (
	VoiceKore   = "Kore"
	VoiceCharon = "Charon"
	VoicePuck   = "Puck"
	VoiceAoede  = "Aoede"
)

// Voices lists the selectable narrator voices.
var Voices = []string{VoiceKore, VoiceCharon, VoicePuck, VoiceAoede}

// DefaultStyleKey is used when no or an unknown style is requested.
const DefaultStyleKey = "neutral"

// NarrationStyle steers the narrator's delivery. Instructions are prepended
// to the synthesized text.
type NarrationStyle struct {
	Name         string `toml:"name"`
	Description  string `toml:"description"`
	Instructions string `toml:"instructions"`
	Voice        string `toml:"voice"`
}

// Apply prefixes text with the style instructions, separated by a blank line.
func (s NarrationStyle) Apply(text string) string {
	if s.Instructions == "" {
		return text
	}
	return s.Instructions + SectionSeparator + text
}

// DefaultStyles returns the built-in narration styles keyed by id.
func DefaultStyles() map[string]NarrationStyle {
	return map[string]NarrationStyle{
		"terror": {
			Name:         "Terror/Horror",
			Description:  "Dark voice, whispers, dramatic pauses",
			Instructions: "[Speak in a deep, ominous voice with dramatic pauses. Keep a mysterious, chilling tone, like telling a horror story around a campfire. Whisper at the most intense moments.]",
			Voice:        VoiceCharon,
		},
		"mystery": {
			Name:         "Mystery/Suspense",
			Description:  "Intriguing tone, suspenseful pauses",
			Instructions: "[Speak in an intriguing, mysterious tone. Pause strategically to build suspense. Keep the listener hooked, like a detective revealing clues.]",
			Voice:        VoiceCharon,
		},
		"romance": {
			Name:         "Romance/Drama",
			Description:  "Soft, warm and emotional voice",
			Instructions: "[Speak in a soft, warm, emotional voice. Convey deep feelings. Slow down in tender moments and add emotional intensity in dramatic ones.]",
			Voice:        VoiceAoede,
		},
		"action": {
			Name:         "Action/Epic",
			Description:  "Energetic, epic and exciting voice",
			Instructions: "[Speak with energy and epic emotion. Convey the intensity of the action. Speed up in tense moments and use a heroic, grand tone.]",
			Voice:        VoicePuck,
		},
		"documentary": {
			Name:         "Documentary/Informative",
			Description:  "Clear, professional and educational voice",
			Instructions: "[Speak in a clear, professional, well articulated voice. Like a documentary narrator, present information in an interesting and accessible way. Keep a steady pace.]",
			Voice:        VoiceKore,
		},
		"comedy": {
			Name:         "Comedy/Entertainment",
			Description:  "Lively, fun and expressive voice",
			Instructions: "[Speak in a lively, fun and expressive tone. Vary your intonation to bring the story to life. Add comic emphasis where it fits and keep a dynamic rhythm.]",
			Voice:        VoicePuck,
		},
		DefaultStyleKey: {
			Name:        "Neutral",
			Description: "Natural voice without special direction",
			Voice:       VoiceKore,
		},
	}
}

// LookupStyle returns the style for key, falling back to the neutral style.
func LookupStyle(styles map[string]NarrationStyle, key string) NarrationStyle {
	if s, ok := styles[strings.ToLower(strings.TrimSpace(key))]; ok {
		return s
	}
	if s, ok := styles[DefaultStyleKey]; ok {
		return s
	}
	return NarrationStyle{Name: "Neutral", Voice: VoiceKore}
}

// StyleKeys returns the style ids in sorted order.
func StyleKeys(styles map[string]NarrationStyle) []string {
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsVoice reports whether v is one of the prebuilt voices.
func IsVoice(v string) bool {
	for _, known := range Voices {
		if known == v {
			return true
		}
	}
	return false
}
