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
	goctx "context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// ObjectUploader copies a local file to bucket/name.
type ObjectUploader func(ctx goctx.Context, bucket, name, local string) (cloud.GCSObject, error)

// GCSFileUpload is a command that archives a finished production (video,
// narration and descriptor) under <prefix>/<project>/ in a bucket. Files
// the project does not have are skipped.
type GCSFileUpload struct {
	cor.BaseCommand
	upload ObjectUploader
	bucket string
	prefix string
}

func NewGCSFileUpload(name string, upload ObjectUploader, bucket string, prefix string) *GCSFileUpload {
	out := &GCSFileUpload{BaseCommand: *cor.NewBaseCommand(name), upload: upload, bucket: bucket, prefix: prefix}
	out.OutputParamName = ArchiveParam
	return out
}

func (c *GCSFileUpload) IsExecutable(context cor.Context) bool {
	return hasProject(context) && c.bucket != "" && c.upload != nil
}

// ArchiveFiles lists the local files of project worth archiving.
func ArchiveFiles(project *model.Project) []string {
	candidates := []string{
		project.Path(project.Files.Video),
		project.Path(project.Files.Audio),
		filepath.Join(project.Dir, model.DescriptorFileName),
	}
	out := make([]string, 0, len(candidates))
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		out = append(out, path)
	}
	return out
}

func (c *GCSFileUpload) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		c.Fail(context, err)
		return
	}

	objects := make([]cloud.GCSObject, 0, 3)
	for _, path := range ArchiveFiles(project) {
		name := cloud.ArchiveObjectName(c.prefix, project.Name, path)
		obj, err := c.upload(context.GetContext(), c.bucket, name, path)
		if err != nil {
			c.Fail(context, err)
			return
		}
		slog.InfoContext(context.GetContext(), "archived", "file", path, "uri", obj.URI())
		objects = append(objects, obj)
	}
	if len(objects) == 0 {
		c.Fail(context, fmt.Errorf("%w: nothing to archive for %s", ErrMissingArtifact, project.Name))
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), objects)
	context.Add(cor.CtxOut, objects)
}
