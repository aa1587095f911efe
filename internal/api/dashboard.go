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

package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// Stats summarizes the local project store.
type Stats struct {
	Total     int                  `json:"total"`
	Completed int                  `json:"completed"`
	Failed    int                  `json:"failed"`
	ByStatus  map[model.Status]int `json:"by_status"`
	Published int                  `json:"published"`
}

// CollectStats counts projects by status.
func CollectStats(projects []*model.Project) Stats {
	out := Stats{ByStatus: make(map[model.Status]int)}
	for _, p := range projects {
		out.Total++
		out.ByStatus[p.Status]++
		switch {
		case p.Status == model.StatusCompleted:
			out.Completed++
		case p.Status.IsError():
			out.Failed++
		}
		if p.YouTube.Uploaded {
			out.Published++
		}
	}
	return out
}

// Dashboard sets up GET /stats.
func Dashboard(r *gin.RouterGroup, projects ProjectFinder) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			all, err := projects.List()
			if err != nil {
				slog.ErrorContext(c, "error listing projects", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, CollectStats(all))
		})
	}
}
