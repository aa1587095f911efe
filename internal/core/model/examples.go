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

// GetExampleScript is the few-shot example embedded in the script prompt.
func GetExampleScript() *Script {
	return &Script{
		Title:       "The Lighthouse That Kept Its Keeper",
		Description: "In 1900 three keepers vanished from a remote lighthouse. The log they left behind raises more questions than it answers.",
		Tags:        Tags{"mystery", "unsolved", "lighthouse", "true story"},
		Sections: []*Section{
			{
				Name:      "Hook",
				Duration:  15,
				Narration: "The lamp was still burning when the relief boat arrived. The table was set for dinner. But the three men who kept this light were gone.",
				Visuals:   "Slow aerial push toward a storm-lashed lighthouse at dusk, beam sweeping through rain.",
			},
			{
				Name:      "Development",
				Duration:  45,
				Narration: "The last entries in the log describe a storm that no other ship recorded. One keeper, they wrote, had been crying. Another had been praying.",
				Visuals:   "Close-up of a weathered logbook, candlelight flickering across ink-stained pages.",
			},
			{
				Name:      "Closing",
				Duration:  20,
				Narration: "More than a century later, the island is silent. The light is automated now. And still, nobody knows where they went.",
				Visuals:   "Wide shot of the empty island at dawn, mist drifting over the rocks.",
			},
		},
	}
}

// GetExampleMoments is the few-shot example embedded in the shorts prompt.
func GetExampleMoments() *ViralMoments {
	return &ViralMoments{Shorts: []*ViralMoment{
		{
			Number:      1,
			Start:       "02:15",
			End:         "03:02",
			Title:       "Nobody expected this answer",
			Description: "The guest reveals why the experiment failed.",
			Hook:        "We did everything right, and it still exploded.",
			WhyViral:    "Opens on a surprising admission and resolves within the clip.",
		},
	}}
}
