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

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jaycherian/gcp-go-video-studio/internal/api"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	stats := api.CollectStats([]*model.Project{
		{Status: model.StatusCompleted, YouTube: model.YouTubeResult{Uploaded: true}},
		{Status: model.StatusCompleted},
		{Status: model.StatusErrorAudio},
		{Status: model.StatusScriptGenerated},
	})

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Published)
	assert.Equal(t, 2, stats.ByStatus[model.StatusCompleted])
	assert.Equal(t, 1, stats.ByStatus[model.StatusErrorAudio])
}

func TestDashboardRoute(t *testing.T) {
	store, _ := newStore(t)
	r := api.NewRouter("studio-test", &api.Server{Projects: store})

	w := serve(r, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats api.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.StatusInitiated])
}
