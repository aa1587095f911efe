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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ErrNoImages is returned when not a single image could be generated.
var ErrNoImages = errors.New("no images were generated")

// ImageGenerator is a command that renders one image per prompt into the
// project's imagenes folder. A failed image is logged and skipped.
type ImageGenerator struct {
	cor.BaseCommand
	imageModel ImageModel
}

func NewImageGenerator(name string, imageModel ImageModel) *ImageGenerator {
	out := &ImageGenerator{BaseCommand: *cor.NewBaseCommand(name), imageModel: imageModel}
	out.InputParamName = PromptsParam
	out.OutputParamName = ImagesParam
	return out
}

func (g *ImageGenerator) IsExecutable(context cor.Context) bool {
	return g.BaseCommand.IsExecutable(context) && hasProject(context)
}

func (g *ImageGenerator) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		g.Fail(context, err)
		return
	}
	prompts, _ := context.Get(g.GetInputParam()).([]string)
	dir := filepath.Join(project.Dir, model.ImagesFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.Fail(context, err)
		return
	}

	ctx := context.GetContext()
	images := make([]string, 0, len(prompts))
	for i, prompt := range prompts {
		if err := ctx.Err(); err != nil {
			g.Fail(context, err)
			return
		}
		path, err := g.render(context, dir, i+1, prompt)
		if err != nil {
			slog.WarnContext(ctx, "image skipped", "index", i+1, "of", len(prompts), "error", err)
			continue
		}
		slog.InfoContext(ctx, "image generated", "index", i+1, "of", len(prompts), "path", path)
		images = append(images, path)
	}
	if len(images) == 0 {
		g.Fail(context, ErrNoImages)
		return
	}

	g.Succeed(context)
	context.Add(g.GetOutputParam(), images)
	context.Add(cor.CtxOut, images)
}

func (g *ImageGenerator) render(context cor.Context, dir string, n int, prompt string) (string, error) {
	data, err := g.imageModel.GenerateImage(context.GetContext(), prompt)
	if err != nil {
		return "", err
	}
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return "", fmt.Errorf("model returned %d bytes that are not an image", len(data))
	}
	path := filepath.Join(dir, fmt.Sprintf("imagen_%02d.%s", n, kind.Extension))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
