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

// Package api exposes the project store and the production analytics over
// HTTP for the studio dashboard.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// StreamURLExpiry is how long a signed stream URL stays valid.
const StreamURLExpiry = 15 * time.Minute

// ProjectFinder reads the local project store. It is satisfied by
// *services.ProjectService.
type ProjectFinder interface {
	Load(name string) (*model.Project, error)
	List() ([]*model.Project, error)
}

// ProductionFinder reads archived productions. It is satisfied by
// *services.ProductionService.
type ProductionFinder interface {
	Get(ctx context.Context, id string) (*model.ProductionRecord, error)
	List(ctx context.Context, limit int) ([]*model.ProductionRecord, error)
	GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error)
}

// Starter creates the project of a production request and produces it in
// the background.
type Starter func(req commands.ProductionRequest) (*model.Project, error)

// Server holds the route dependencies. Productions and Start may be nil when
// analytics or remote starts are not available.
type Server struct {
	Projects    ProjectFinder
	Productions ProductionFinder
	Start       Starter
}

// NewRouter builds the gin engine with tracing and CORS middleware and the
// /api/v1 routes.
func NewRouter(serviceName string, s *Server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(cors.Default())

	apiV1 := r.Group("/api/v1")
	{
		ProjectRouter(apiV1, s)
		ProductionRouter(apiV1, s)
		Dashboard(apiV1, s.Projects)
	}
	return r
}

// ProjectRouter sets up the routes over the local project store.
func ProjectRouter(r *gin.RouterGroup, s *Server) {
	projects := r.Group("/projects")
	{
		projects.GET("", func(c *gin.Context) {
			out, err := s.Projects.List()
			if err != nil {
				slog.ErrorContext(c, "error listing projects", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			if out == nil {
				out = make([]*model.Project, 0)
			}
			c.JSON(http.StatusOK, out)
		})

		projects.GET("/:name", func(c *gin.Context) {
			out, err := s.Projects.Load(c.Param("name"))
			if errors.Is(err, services.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			if err != nil {
				slog.ErrorContext(c, "error loading project", "project", c.Param("name"), "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		if s.Start == nil {
			return
		}
		projects.POST("", func(c *gin.Context) {
			var req commands.ProductionRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if strings.TrimSpace(req.Topic) == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
				return
			}
			project, err := s.Start(req)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, project)
		})
	}
}

// ProductionRouter sets up the routes over archived productions. Without
// analytics every route answers 503.
func ProductionRouter(r *gin.RouterGroup, s *Server) {
	productions := r.Group("/productions")
	productions.Use(func(c *gin.Context) {
		if s.Productions == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Production analytics are not configured"})
			return
		}
		c.Next()
	})
	{
		productions.GET("", func(c *gin.Context) {
			limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultListLimit)))
			if err != nil || limit <= 0 {
				limit = services.DefaultListLimit
			}
			out, err := s.Productions.List(c, limit)
			if err != nil {
				slog.ErrorContext(c, "error listing productions", "error", err)
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, out)
		})

		productions.GET("/:id", func(c *gin.Context) {
			out, ok := getProduction(c, s.Productions)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, out)
		})

		productions.GET("/:id/stream", func(c *gin.Context) {
			production, ok := getProduction(c, s.Productions)
			if !ok {
				return
			}
			if production.ArchiveURI == "" {
				c.JSON(http.StatusNotFound, gin.H{"error": "Production has no archived video"})
				return
			}
			signedURL, err := s.Productions.GenerateSignedURL(c, production.ArchiveURI, StreamURLExpiry)
			if err != nil {
				slog.ErrorContext(c, "error signing stream url", "id", production.Id, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

func getProduction(c *gin.Context, productions ProductionFinder) (*model.ProductionRecord, bool) {
	out, err := productions.Get(c, c.Param("id"))
	if errors.Is(err, services.ErrProductionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Production not found"})
		return nil, false
	}
	if err != nil {
		slog.ErrorContext(c, "error getting production", "id", c.Param("id"), "error", err)
		c.Status(http.StatusInternalServerError)
		return nil, false
	}
	return out, true
}
