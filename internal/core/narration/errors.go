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
	"errors"
	"fmt"
)

// ErrEmptyNarration is returned when there is nothing to synthesize.
var ErrEmptyNarration = errors.New("narration is empty")

// ErrEmptyAudio is returned when the synthesizer answers without audio.
var ErrEmptyAudio = errors.New("synthesizer returned no audio")

// SynthesisError identifies the chunk whose synthesis failed.
type SynthesisError struct {
	Index int    // Position of the failed call in the plan.
	Total int    // Number of calls in the plan.
	Label string // Human readable location, e.g. "section 2 part 1".
	File  string // Temporary file the chunk was meant for.
	Err   error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed for %s (%d of %d): %v", e.Label, e.Index+1, e.Total, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
