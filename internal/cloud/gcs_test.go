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


package cloud_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGCSURI(t *testing.T) {
	obj, err := cloud.ParseGCSURI("gs://studio-archive/productions/faro/video_final.mp4")
	require.NoError(t, err)
	assert.Equal(t, "studio-archive", obj.Bucket)
	assert.Equal(t, "productions/faro/video_final.mp4", obj.Name)
	assert.Equal(t, "gs://studio-archive/productions/faro/video_final.mp4", obj.URI())

	for _, bad := range []string{"https://x/y", "gs://bucket", "gs:///name"} {
		_, err := cloud.ParseGCSURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestArchiveObjectName(t *testing.T) {
	assert.Equal(t, "productions/faro_20240101_120000/video_final.mp4",
		cloud.ArchiveObjectName("productions", "faro_20240101_120000", "/tmp/p/video/video_final.mp4"))
	assert.Equal(t, "faro/proyecto.json", cloud.ArchiveObjectName("", "faro", "proyecto.json"))
}
