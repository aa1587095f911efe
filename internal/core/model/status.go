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
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned when a descriptor carries a status value that
// is neither canonical nor a known legacy spelling.
var ErrUnknownStatus = errors.New("unknown project status")

// ErrIllegalTransition is returned when a status change skips or reverses a
// step.
var ErrIllegalTransition = errors.New("illegal status transition")

// Status is the single progress marker of a project.
type Status string

const (
	StatusInitiated       Status = "initiated"
	StatusScriptGenerated Status = "script_generated"
	StatusAudioGenerated  Status = "audio_generated"
	StatusImagesGenerated Status = "images_generated"
	StatusVideoGenerated  Status = "video_generated"
	StatusCompleted       Status = "completed"

	StatusErrorScript  Status = "error_script"
	StatusErrorAudio   Status = "error_audio"
	StatusErrorImages  Status = "error_images"
	StatusErrorVideo   Status = "error_video"
	StatusErrorYouTube Status = "error_youtube"
)

var legacyStatuses = map[string]Status{
	"iniciado":           StatusInitiated,
	"guion_generado":     StatusScriptGenerated,
	"audio_generado":     StatusAudioGenerated,
	"imagenes_generadas": StatusImagesGenerated,
	"video_generado":     StatusVideoGenerated,
	"completado":         StatusCompleted,
	"error_guion":        StatusErrorScript,
	"error_imagenes":     StatusErrorImages,
}

// transitions lists the legal next statuses. Loop videos skip the image step,
// hence the audio_generated -> video edges.
var transitions = map[Status][]Status{
	StatusInitiated:       {StatusScriptGenerated, StatusErrorScript},
	StatusErrorScript:     {StatusScriptGenerated},
	StatusScriptGenerated: {StatusAudioGenerated, StatusErrorAudio},
	StatusErrorAudio:      {StatusAudioGenerated},
	StatusAudioGenerated:  {StatusImagesGenerated, StatusErrorImages, StatusVideoGenerated, StatusErrorVideo},
	StatusErrorImages:     {StatusImagesGenerated},
	StatusImagesGenerated: {StatusVideoGenerated, StatusErrorVideo},
	StatusErrorVideo:      {StatusVideoGenerated},
	StatusVideoGenerated:  {StatusCompleted, StatusErrorYouTube},
	StatusErrorYouTube:    {StatusCompleted},
	StatusCompleted:       {},
}

// ParseStatus normalizes a stored status value.
func ParseStatus(in string) (Status, error) {
	s := Status(in)
	if _, ok := transitions[s]; ok {
		return s, nil
	}
	if legacy, ok := legacyStatuses[in]; ok {
		return legacy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, in)
}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a canonical status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsError reports whether s records a failed step.
func (s Status) IsError() bool {
	switch s {
	case StatusErrorScript, StatusErrorAudio, StatusErrorImages, StatusErrorVideo, StatusErrorYouTube:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal. Recording
// the same status again is always allowed, as is recording a failure again.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next if the move is legal.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s, next)
	}
	return next, nil
}

// NextStep is the step a resume must attempt from s. Completed projects
// return StepNone.
func (s Status) NextStep() Step {
	switch s {
	case StatusInitiated, StatusErrorScript:
		return StepScript
	case StatusScriptGenerated, StatusErrorAudio:
		return StepAudio
	case StatusAudioGenerated, StatusErrorImages:
		return StepImages
	case StatusImagesGenerated, StatusErrorVideo:
		return StepVideo
	case StatusVideoGenerated, StatusErrorYouTube:
		return StepUpload
	}
	return StepNone
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Step is one stage of the production pipeline.
type Step string

const (
	StepNone   Step = ""
	StepScript Step = "script"
	StepAudio  Step = "audio"
	StepImages Step = "images"
	StepVideo  Step = "video"
	StepUpload Step = "upload"
)

// Steps lists the production stages in execution order.
var Steps = []Step{StepScript, StepAudio, StepImages, StepVideo, StepUpload}

// Done is the status recorded when the step succeeds.
func (s Step) Done() Status {
	switch s {
	case StepScript:
		return StatusScriptGenerated
	case StepAudio:
		return StatusAudioGenerated
	case StepImages:
		return StatusImagesGenerated
	case StepVideo:
		return StatusVideoGenerated
	case StepUpload:
		return StatusCompleted
	}
	return ""
}

// Failed is the error_<step> status recorded when the step fails.
func (s Step) Failed() Status {
	switch s {
	case StepScript:
		return StatusErrorScript
	case StepAudio:
		return StatusErrorAudio
	case StepImages:
		return StatusErrorImages
	case StepVideo:
		return StatusErrorVideo
	case StepUpload:
		return StatusErrorYouTube
	}
	return ""
}

// ParseStep accepts a step name as used on the command line.
func ParseStep(in string) (Step, error) {
	for _, s := range Steps {
		if string(s) == in {
			return s, nil
		}
	}
	return StepNone, fmt.Errorf("unknown step %q", in)
}
