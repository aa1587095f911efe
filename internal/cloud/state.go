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

// This file initializes and holds every client the studio needs. A
// ServiceClients value is created once at startup and passed to the
// workflows; Google Cloud clients are only created when the configuration
// uses them, so a local run needs nothing but a Gemini API key.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Environment variables holding API keys.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// ServiceClients is the container for every external client. Optional
// clients are nil when their feature is not configured.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Nil unless storage.archive_bucket is set.
	PubsubClient    *pubsub.Client                    // Nil unless topic subscriptions are configured.
	GenAIClient     *genai.Client                     // Gemini text, speech and image models.
	BiqQueryClient  *bigquery.Client                  // Nil unless big_query_data_source is set.
	IAMClient       *credentials.IamCredentialsClient // Nil unless a signer service account is set.
	PubSubListeners map[string]*PubSubListener        // Keyed by the logical subscription name.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel
	ImageModel      *QuotaAwareImageModel
	Synthesizer     narration.Synthesizer
}

// Close releases every open client and returns the joined errors.
func (c *ServiceClients) Close() error {
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BiqQueryClient != nil {
		errs = append(errs, c.BiqQueryClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	return errors.Join(errs...)
}

// NewGenAIClient creates the genai client for the configured backend.
func NewGenAIClient(ctx context.Context, config *Config) (*genai.Client, error) {
	cc := &genai.ClientConfig{}
	switch config.Application.Backend {
	case BackendVertex:
		cc.Backend = genai.BackendVertexAI
		cc.Project = config.Application.GoogleProjectId
		cc.Location = config.Application.GoogleLocation
	default:
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = os.Getenv(EnvGeminiAPIKey)
		if cc.APIKey == "" {
			return nil, fmt.Errorf("%s is not set", EnvGeminiAPIKey)
		}
	}
	return genai.NewClient(ctx, cc)
}

// NewCloudServiceClients creates the clients and model wrappers described by
// config. On error every client created so far is closed.
func NewCloudServiceClients(ctx context.Context, config *Config) (_ *ServiceClients, err error) {
	cloud := &ServiceClients{
		PubSubListeners: make(map[string]*PubSubListener),
		AgentModels:     make(map[string]*QuotaAwareGenerativeAIModel),
	}
	defer func() {
		if err != nil {
			_ = cloud.Close()
		}
	}()

	if cloud.GenAIClient, err = NewGenAIClient(ctx, config); err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	slog.Debug("genai client created", "backend", config.Application.Backend,
		"project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)

	for key, values := range config.AgentModels {
		cloud.AgentModels[key] = NewQuotaAwareModel(NewGenerateContentConfig(values), values.Model, cloud.GenAIClient.Models, values.RateLimit)
	}
	cloud.ImageModel = NewQuotaAwareImageModel(config.Images, cloud.GenAIClient.Models)

	switch config.Speech.Provider {
	case SpeechOpenAI:
		key := os.Getenv(EnvOpenAIAPIKey)
		if key == "" {
			return nil, fmt.Errorf("%s is not set", EnvOpenAIAPIKey)
		}
		cloud.Synthesizer = NewOpenAISynthesizer(config.Speech, openai.NewClient(key))
	default:
		cloud.Synthesizer = NewGeminiSynthesizer(config.Speech, cloud.GenAIClient.Models)
	}

	if config.Storage.ArchiveBucket != "" || config.Application.SignerServiceAccountEmail != "" {
		if cloud.StorageClient, err = storage.NewClient(ctx); err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
	}
	if config.Application.SignerServiceAccountEmail != "" {
		if cloud.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
			return nil, fmt.Errorf("creating iam credentials client: %w", err)
		}
	}
	if config.BigQueryDataSource.Enabled() {
		if cloud.BiqQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return nil, fmt.Errorf("creating bigquery client: %w", err)
		}
	}
	if len(config.TopicSubscriptions) > 0 {
		if cloud.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
			return nil, fmt.Errorf("creating pubsub client: %w", err)
		}
		for key, values := range config.TopicSubscriptions {
			listener, err := NewPubSubListener(cloud.PubsubClient, values.Name, nil)
			if err != nil {
				return nil, err
			}
			cloud.PubSubListeners[key] = listener
		}
	}
	return cloud, nil
}

// Agent returns the wrapped agent model for key.
func (c *ServiceClients) Agent(key string) (*QuotaAwareGenerativeAIModel, error) {
	m, ok := c.AgentModels[key]
	if !ok {
		return nil, fmt.Errorf("agent model %q is not configured", key)
	}
	return m, nil
}
