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
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/workflow"
	"google.golang.org/api/youtube/v3"
)

// StateManager holds the shared components of one invocation.
type StateManager struct {
	config  *cloud.Config
	cloud   *cloud.ServiceClients
	store   *services.ProjectService
	closers []func() error
}

var state = &StateManager{}

// GetConfig loads and validates the layered configuration once.
func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			return nil, err
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		state.config = config
		state.store = services.NewProjectService(config.Application.ProjectsDir)
	}
	return state.config, nil
}

// InitState creates the service clients. Commands that only read the
// project store never call it.
func InitState(ctx context.Context) error {
	if state.cloud != nil {
		return nil
	}
	cloudClients, err := cloud.NewCloudServiceClients(ctx, state.config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients
	state.closers = append(state.closers, cloudClients.Close)
	slog.Debug("service clients initialized")
	return nil
}

// teardown releases everything registered during setup, newest first.
func teardown() error {
	var errs []error
	for i := len(state.closers) - 1; i >= 0; i-- {
		errs = append(errs, state.closers[i]())
	}
	state.closers = nil
	return errors.Join(errs...)
}

// NewUploader authorizes against YouTube when publishing is enabled. A nil
// uploader finishes productions without publishing.
func NewUploader(ctx context.Context, publish bool) (commands.Uploader, error) {
	if !publish || !state.config.YouTube.Enabled {
		return nil, nil
	}
	showURL := func(url string) {
		fmt.Fprintf(os.Stderr, "Open this URL to authorize YouTube uploads:\n\n  %s\n\n", url)
	}
	uploader, err := cloud.NewYouTubeUploader(ctx, state.config.YouTube, showURL, chooseChannel)
	if err != nil {
		return nil, fmt.Errorf("youtube authorization: %w", err)
	}
	return uploader, nil
}

// chooseChannel asks on the terminal which channel to publish to.
func chooseChannel(channels []*youtube.Channel) (*youtube.Channel, error) {
	fmt.Fprintln(os.Stderr, "The account owns several channels:")
	for i, ch := range channels {
		fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, ch.Snippet.Title)
	}
	fmt.Fprint(os.Stderr, "Channel number: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(channels) {
		return nil, fmt.Errorf("invalid channel number %q", strings.TrimSpace(line))
	}
	return channels[n-1], nil
}

// NewProduction builds the production workflow over the service clients.
func NewProduction(ctx context.Context, publish bool) (*workflow.ProductionWorkflow, error) {
	if err := InitState(ctx); err != nil {
		return nil, err
	}
	uploader, err := NewUploader(ctx, publish)
	if err != nil {
		return nil, err
	}
	return workflow.NewProductionPipeline(state.config, state.cloud, state.store, uploader, os.Stderr), nil
}

// NewProductionService returns the analytics reader, or nil when BigQuery is
// not configured.
func NewProductionService() *services.ProductionService {
	if state.cloud == nil || state.cloud.BiqQueryClient == nil {
		return nil
	}
	return &services.ProductionService{
		BigqueryClient:  state.cloud.BiqQueryClient,
		StorageClient:   state.cloud.StorageClient,
		IAMClient:       state.cloud.IAMClient,
		SignerEmail:     state.config.Application.SignerServiceAccountEmail,
		DatasetName:     state.config.BigQueryDataSource.DatasetName,
		ProductionTable: state.config.BigQueryDataSource.ProductionTable,
	}
}
