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
	"errors"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
)

// ClipCleanup is a command that removes the landscape clips once the shorts
// exist. Removal failures are logged, not recorded.
type ClipCleanup struct {
	cor.BaseCommand
}

func NewClipCleanup(name string) *ClipCleanup {
	out := &ClipCleanup{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = ClipsParam
	return out
}

func (v *ClipCleanup) IsExecutable(context cor.Context) bool {
	return v.BaseCommand.IsExecutable(context) && context.Get(ShortsParam) != nil
}

func (v *ClipCleanup) Execute(context cor.Context) {
	clips, _ := context.Get(v.GetInputParam()).([]*Clip)
	for _, clip := range clips {
		if err := os.Remove(clip.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(context.GetContext(), "failed to remove clip", "path", clip.Path, "error", err)
		}
	}
	v.Succeed(context)
}
