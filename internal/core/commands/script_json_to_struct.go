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

// This file defines the command that turns the model's raw answer into a
// model.Script and stores it in the project folder.
//
// Logic Flow:
//  1. The raw answer from ScriptGenerator is read from the input key.
//  2. CleanJSON strips fences and the control characters models leave in
//     long string values.
//  3. The cleaned text is parsed. Loose durations and tag lists are
//     coerced by the model types.
//  4. The script is written to guion/guion.json and placed under
//     ScriptParam for the narration step.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ScriptJsonToStruct is a command that parses a JSON string into a Script.
type ScriptJsonToStruct struct {
	cor.BaseCommand
}

// NewScriptJsonToStruct is the constructor for the ScriptJsonToStruct command.
func NewScriptJsonToStruct(name string) *ScriptJsonToStruct {
	out := ScriptJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = ScriptParam
	return &out
}

func (s *ScriptJsonToStruct) IsExecutable(context cor.Context) bool {
	return s.BaseCommand.IsExecutable(context) && hasProject(context)
}

func (s *ScriptJsonToStruct) Execute(context cor.Context) {
	in, _ := context.Get(s.GetInputParam()).(string)
	project, err := getProject(context)
	if err != nil {
		s.Fail(context, err)
		return
	}

	doc, err := ParseScript(in)
	if err != nil {
		s.Fail(context, err)
		return
	}

	if err := WriteScript(project, doc); err != nil {
		s.Fail(context, err)
		return
	}

	s.Succeed(context)
	context.Add(s.GetOutputParam(), doc)
	context.Add(cor.CtxOut, doc)
}

// ParseScript parses a model answer. Failures are *model.ResponseError.
func ParseScript(raw string) (*model.Script, error) {
	doc := &model.Script{}
	if err := json.Unmarshal([]byte(CleanJSON(raw)), doc); err != nil {
		return nil, model.NewResponseError("script", raw, err)
	}
	if len(doc.Sections) == 0 {
		return nil, model.NewResponseError("script", raw, errors.New("no sections in estructura_guion"))
	}
	return doc, nil
}

// WriteScript stores doc as the project's guion.json.
func WriteScript(project *model.Project, doc *model.Script) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	path := scriptFile(project)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return nil
}
