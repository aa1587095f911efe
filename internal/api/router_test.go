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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-studio/internal/api"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProductions struct {
	records  map[string]*model.ProductionRecord
	signed   string
	signErr  error
	gotLimit int
}

func (f *fakeProductions) Get(_ context.Context, id string) (*model.ProductionRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, services.ErrProductionNotFound
	}
	return r, nil
}

func (f *fakeProductions) List(_ context.Context, limit int) ([]*model.ProductionRecord, error) {
	f.gotLimit = limit
	out := make([]*model.ProductionRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeProductions) GenerateSignedURL(_ context.Context, uri string, expires time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	f.signed = uri
	return "https://storage.googleapis.com/signed?expires=" + expires.String(), nil
}

func newStore(t *testing.T) (*services.ProjectService, *model.Project) {
	t.Helper()
	store := services.NewProjectService(t.TempDir())
	p, err := store.Create("El faro de Alejandría", model.ProjectSettings{})
	require.NoError(t, err)
	return store, p
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectRoutes(t *testing.T) {
	store, p := newStore(t)
	r := api.NewRouter("studio-test", &api.Server{Projects: store})

	w := serve(r, http.MethodGet, "/api/v1/projects", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, p.Name, list[0]["nombre"])

	w = serve(r, http.MethodGet, "/api/v1/projects/"+p.Name, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"estado":"initiated"`)

	w = serve(r, http.MethodGet, "/api/v1/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/projects", `{"topic": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartProject(t *testing.T) {
	store, _ := newStore(t)
	var got commands.ProductionRequest
	r := api.NewRouter("studio-test", &api.Server{
		Projects: store,
		Start: func(req commands.ProductionRequest) (*model.Project, error) {
			got = req
			if req.Mode == "bogus" {
				return nil, errors.New("unknown video mode")
			}
			return &model.Project{Name: "piratas", Topic: req.Topic, Status: model.StatusInitiated}, nil
		},
	})

	w := serve(r, http.MethodPost, "/api/v1/projects", `{"topic": "Piratas", "word_count": 800}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "Piratas", got.Topic)
	assert.Equal(t, 800, got.WordCount)

	w = serve(r, http.MethodPost, "/api/v1/projects", `{"word_count": 800}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/projects", `{"topic": "Piratas", "mode": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductionRoutes(t *testing.T) {
	store, _ := newStore(t)
	productions := &fakeProductions{records: map[string]*model.ProductionRecord{
		"a": {Id: "a", ProjectName: "faro", ArchiveURI: "gs://archive/productions/faro/video_final.mp4"},
		"b": {Id: "b", ProjectName: "roma"},
	}}
	r := api.NewRouter("studio-test", &api.Server{Projects: store, Productions: productions})

	w := serve(r, http.MethodGet, "/api/v1/productions?limit=oops", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DefaultListLimit, productions.gotLimit)

	w = serve(r, http.MethodGet, "/api/v1/productions/a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"project_name":"faro"`)

	w = serve(r, http.MethodGet, "/api/v1/productions/zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(r, http.MethodGet, "/api/v1/productions/a/stream", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gs://archive/productions/faro/video_final.mp4", productions.signed)
	assert.Contains(t, w.Body.String(), "storage.googleapis.com/signed")

	w = serve(r, http.MethodGet, "/api/v1/productions/b/stream", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	productions.signErr = errors.New("no signer")
	w = serve(r, http.MethodGet, "/api/v1/productions/a/stream", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProductionRoutesWithoutAnalytics(t *testing.T) {
	store, _ := newStore(t)
	r := api.NewRouter("studio-test", &api.Server{Projects: store})

	w := serve(r, http.MethodGet, "/api/v1/productions", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
