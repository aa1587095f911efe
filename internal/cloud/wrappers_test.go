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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// fakeModels answers GenerateContent and GenerateImages from queued results.
type fakeModels struct {
	failures int
	calls    int
	text     string
	audio    []byte
	image    []byte
	configs  []*genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, _ []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.configs = append(f.configs, config)
	if f.calls <= f.failures {
		return nil, errors.New("resource exhausted")
	}
	part := &genai.Part{Text: f.text}
	if f.audio != nil {
		part = &genai.Part{InlineData: &genai.Blob{Data: f.audio, MIMEType: "audio/L16;codec=pcm;rate=24000"}}
	}
	return &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{part}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 10, CandidatesTokenCount: 20},
	}, nil
}

func (f *fakeModels) GenerateImages(_ context.Context, _ string, _ string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("unavailable")
	}
	return &genai.GenerateImagesResponse{GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: f.image}}}}, nil
}

func fastModel(handle cloud.ContentGenerator) *cloud.QuotaAwareGenerativeAIModel {
	m := cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{}, "gemini-test", handle, 1)
	m.RateLimit = rate.NewLimiter(rate.Inf, 1)
	m.RetryDelay = time.Millisecond
	return m
}

func TestGenerateMultiModalResponseRetriesAndStripsFences(t *testing.T) {
	fake := &fakeModels{failures: 2, text: "```json\n{\"ok\": true}\n```"}
	var in, out noop.Int64Counter

	text, err := cloud.GenerateMultiModalResponse(context.Background(), in, out, fastModel(fake), cloud.NewTextPart("hi"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, text)
	assert.Equal(t, 3, fake.calls)
}

func TestGenerateContentGivesUpAfterMaxRetries(t *testing.T) {
	fake := &fakeModels{failures: 100}
	_, err := fastModel(fake).GenerateContent(context.Background(), cloud.NewTextPart("hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource exhausted")
	assert.Equal(t, cloud.MaxRetries+1, fake.calls)
}

func TestGenerateContentStopsOnCancel(t *testing.T) {
	fake := &fakeModels{failures: 100}
	m := fastModel(fake)
	m.RetryDelay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.GenerateContent(ctx, cloud.NewTextPart("hi"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fake.calls)
}

func TestImageModelReturnsFirstImage(t *testing.T) {
	fake := &fakeModels{failures: 1, image: []byte{0x89, 'P', 'N', 'G'}}
	m := cloud.NewQuotaAwareImageModel(cloud.ImageModel{Model: "imagen-test", AspectRatio: "16:9"}, fake)
	m.RateLimit = rate.NewLimiter(rate.Inf, 1)
	m.RetryDelay = time.Millisecond

	data, err := m.GenerateImage(context.Background(), "a lighthouse")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
	assert.Equal(t, int32(1), m.Config.NumberOfImages)
	assert.Equal(t, genai.SafetyFilterLevelBlockLowAndAbove, m.Config.SafetyFilterLevel)

	fake = &fakeModels{}
	m.ModelHandle = fake
	_, err = m.GenerateImage(context.Background(), "a lighthouse")
	assert.Error(t, err)
}

func TestNewGenerateContentConfig(t *testing.T) {
	config := cloud.NewGenerateContentConfig(cloud.VertexAiLLMModel{
		Model:              "gemini",
		SystemInstructions: "be brief",
		Temperature:        0.5,
		MaxTokens:          100,
		OutputFormat:       "application/json",
	})
	require.NotNil(t, config.Temperature)
	assert.Equal(t, float32(0.5), *config.Temperature)
	assert.Nil(t, config.TopK)
	assert.Equal(t, int32(100), config.MaxOutputTokens)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.Equal(t, "be brief", config.SystemInstruction.Parts[0].Text)
	assert.Empty(t, config.Tools)
}
