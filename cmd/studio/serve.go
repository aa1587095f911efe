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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/api"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/workflow"
	"github.com/spf13/cobra"
)

// QueueSize bounds the productions waiting to run behind the API.
const QueueSize = 16

var serveFlags struct {
	port   int
	listen bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API and run productions requested through it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		production, err := NewProduction(ctx, !noPublish)
		if err != nil {
			return err
		}
		if serveFlags.listen {
			if err := SetupListeners(ctx, production); err != nil {
				return err
			}
		}

		server := &api.Server{Projects: state.store, Start: startQueue(ctx, production)}
		if productions := NewProductionService(); productions != nil {
			server.Productions = productions
		}

		port := serveFlags.port
		if port == 0 {
			port = state.config.Application.HTTPPort
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.NewRouter(state.config.Application.Name, server),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to listen", "error", err)
			}
		}()
		slog.Info("server ready", "port", port)

		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.IntVar(&serveFlags.port, "port", 0, "HTTP port (default application.http_port)")
	flags.BoolVar(&serveFlags.listen, "listen", false, "also consume the Pub/Sub trigger subscription")
	flags.BoolVar(&noPublish, "no-publish", false, "finish without uploading to YouTube")
	rootCmd.AddCommand(serveCmd)
}

// startQueue returns the API starter: projects are created at once and
// produced one at a time by a background worker until ctx is done.
func startQueue(ctx context.Context, production *workflow.ProductionWorkflow) api.Starter {
	queue := make(chan *model.Project, QueueSize)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case project := <-queue:
				chCtx := cor.NewBaseContext()
				chCtx.SetContext(ctx)
				chCtx.Add(commands.ProjectParam, project)
				production.Execute(chCtx)
				if chCtx.HasErrors() {
					slog.ErrorContext(ctx, "production failed", "project", project.Name, "error", chCtx.Err())
				}
				chCtx.Close()
			}
		}
	}()

	return func(req commands.ProductionRequest) (*model.Project, error) {
		req.Topic = strings.TrimSpace(req.Topic)
		settings, err := req.Settings()
		if err != nil {
			return nil, err
		}
		project, err := state.store.Create(req.Topic, settings)
		if err != nil {
			return nil, err
		}
		select {
		case queue <- project:
			return project, nil
		default:
			return nil, fmt.Errorf("production queue is full; project %s was created and can be resumed later", project.Name)
		}
	}
}
