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

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ProductionRequest is the body of a remote production trigger.
type ProductionRequest struct {
	Topic           string `json:"topic"`
	WordCount       int    `json:"word_count,omitempty"`
	Style           string `json:"style,omitempty"`
	Voice           string `json:"voice,omitempty"`
	Privacy         string `json:"privacy,omitempty"`
	Mode            string `json:"mode,omitempty"`
	SecondsPerImage int    `json:"seconds_per_image,omitempty"`
	Category        string `json:"category,omitempty"`
}

// Settings validates the request and converts it to project settings.
func (r ProductionRequest) Settings() (model.ProjectSettings, error) {
	settings := model.ProjectSettings{
		Voice:           r.Voice,
		Style:           strings.ToLower(strings.TrimSpace(r.Style)),
		SecondsPerImage: r.SecondsPerImage,
		BaseCategory:    r.Category,
	}
	if r.WordCount != 0 {
		settings.WordCount = model.ClampWordCount(r.WordCount)
	}
	if r.Voice != "" && !model.IsVoice(r.Voice) {
		return settings, fmt.Errorf("unknown voice %q", r.Voice)
	}
	if r.Privacy != "" {
		p, err := model.ParsePrivacy(r.Privacy)
		if err != nil {
			return settings, err
		}
		settings.Privacy = p
	}
	switch mode := model.VideoMode(r.Mode); mode {
	case "", model.VideoModeSlideshow, model.VideoModeLoop:
		settings.VideoMode = mode
	default:
		return settings, fmt.Errorf("unknown video mode %q", r.Mode)
	}
	return settings, nil
}

// ProductionRequestReader is a command that turns a trigger message into a
// new project. The project is placed under ProjectParam.
type ProductionRequestReader struct {
	cor.BaseCommand
	store ProjectStore
}

func NewProductionRequestReader(name string, store ProjectStore) *ProductionRequestReader {
	out := &ProductionRequestReader{BaseCommand: *cor.NewBaseCommand(name), store: store}
	out.OutputParamName = ProjectParam
	return out
}

func (c *ProductionRequestReader) Execute(context cor.Context) {
	in, _ := context.Get(c.GetInputParam()).(string)

	var req ProductionRequest
	if err := json.Unmarshal([]byte(in), &req); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal production request: %w", err))
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		c.Fail(context, errors.New("production request has no topic"))
		return
	}
	settings, err := req.Settings()
	if err != nil {
		c.Fail(context, fmt.Errorf("invalid production request: %w", err))
		return
	}

	project, err := c.store.Create(req.Topic, settings)
	if err != nil {
		c.Fail(context, err)
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), project)
}
