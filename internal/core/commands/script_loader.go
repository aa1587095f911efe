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
	"fmt"
	"os"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ScriptLoader reads a stored guion.json into the context so a resumed
// production can continue past the script step. It does nothing when a
// script is already present.
type ScriptLoader struct {
	cor.BaseCommand
}

func NewScriptLoader(name string) *ScriptLoader {
	out := &ScriptLoader{BaseCommand: *cor.NewBaseCommand(name)}
	out.OutputParamName = ScriptParam
	return out
}

func (c *ScriptLoader) IsExecutable(context cor.Context) bool {
	return hasProject(context)
}

func (c *ScriptLoader) Execute(context cor.Context) {
	if context.Get(ScriptParam) != nil {
		return
	}
	project, err := getProject(context)
	if err != nil {
		c.Fail(context, err)
		return
	}

	path := scriptFile(project)
	if project.Files.Script != "" {
		path = project.Path(project.Files.Script)
	}
	doc, err := LoadScript(path)
	if err != nil {
		c.Fail(context, err)
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), doc)
}

// LoadScript reads a script file written by WriteScript.
func LoadScript(path string) (*model.Script, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: script %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return nil, err
	}
	doc := &model.Script{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return doc, nil
}
