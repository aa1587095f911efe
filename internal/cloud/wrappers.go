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

// This file wraps the genai model handles with a rate limiter and a bounded
// retry, so every caller shares one quota per configured model.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: text, vision and speech generation.
//   - QuotaAwareImageModel: image generation.
//
// Functions:
//   - NewQuotaAwareModel, NewQuotaAwareImageModel: constructors.
//   - NewGenerateContentConfig: maps a VertexAiLLMModel to a genai config.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultRetryDelay is the pause between attempts after a failed call.
const DefaultRetryDelay = 10 * time.Second

// ContentGenerator is the part of *genai.Models the text wrapper calls.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageGenerator is the part of *genai.Models the image wrapper calls.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// QuotaAwareGenerativeAIModel decorates a content generator with a token
// bucket rate limiter and up to MaxRetries retries.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig
	ModelName               string
	ModelHandle             ContentGenerator
	RateLimit               *rate.Limiter
	RetryDelay              time.Duration
}

// NewQuotaAwareModel wraps handle for model name, allowing requestsPerSecond
// calls per second with an equal burst.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle ContentGenerator, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: config,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               newLimiter(requestsPerSecond),
		RetryDelay:              DefaultRetryDelay,
	}
}

// GenerateContent waits for the limiter, calls the model and retries failed
// calls. Cancelling ctx aborts both the wait and the retries.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	return withRetry(ctx, q.RateLimit, q.RetryDelay, q.ModelName, func() (*genai.GenerateContentResponse, error) {
		return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
	})
}

// QuotaAwareImageModel decorates an image generator the same way.
type QuotaAwareImageModel struct {
	Config      *genai.GenerateImagesConfig
	ModelName   string
	ModelHandle ImageGenerator
	RateLimit   *rate.Limiter
	RetryDelay  time.Duration
}

// NewQuotaAwareImageModel builds the image wrapper from its settings. Images
// are generated one at a time in the configured aspect ratio.
func NewQuotaAwareImageModel(settings ImageModel, handle ImageGenerator) *QuotaAwareImageModel {
	return &QuotaAwareImageModel{
		Config: &genai.GenerateImagesConfig{
			NumberOfImages:    1,
			AspectRatio:       settings.AspectRatio,
			SafetyFilterLevel: genai.SafetyFilterLevelBlockLowAndAbove,
			PersonGeneration:  genai.PersonGenerationAllowAdult,
		},
		ModelName:   settings.Model,
		ModelHandle: handle,
		RateLimit:   newLimiter(settings.RateLimit),
		RetryDelay:  DefaultRetryDelay,
	}
}

// GenerateImage returns the bytes of the first generated image.
func (q *QuotaAwareImageModel) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := withRetry(ctx, q.RateLimit, q.RetryDelay, q.ModelName, func() (*genai.GenerateImagesResponse, error) {
		return q.ModelHandle.GenerateImages(ctx, q.ModelName, prompt, q.Config)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("model %s returned no image", q.ModelName)
	}
	img := resp.GeneratedImages[0]
	if img.RAIFilteredReason != "" {
		return nil, fmt.Errorf("model %s filtered the image: %s", q.ModelName, img.RAIFilteredReason)
	}
	if len(img.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("model %s returned an empty image", q.ModelName)
	}
	return img.Image.ImageBytes, nil
}

// NewGenerateContentConfig maps model settings to a genai request config.
func NewGenerateContentConfig(m VertexAiLLMModel) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:  m.MaxTokens,
		ResponseMIMEType: m.OutputFormat,
		SafetySettings:   DefaultSafetySettings,
	}
	if m.Temperature > 0 {
		config.Temperature = genai.Ptr(m.Temperature)
	}
	if m.TopP > 0 {
		config.TopP = genai.Ptr(m.TopP)
	}
	if m.TopK > 0 {
		config.TopK = genai.Ptr(m.TopK)
	}
	if m.SystemInstructions != "" {
		config.SystemInstruction = genai.NewContentFromText(m.SystemInstructions, genai.RoleUser)
	}
	if m.EnableGoogle {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return config
}

func newLimiter(requestsPerSecond int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
}

func withRetry[T any](ctx context.Context, limiter *rate.Limiter, delay time.Duration, model string, call func() (T, error)) (T, error) {
	var zero T
	var err error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying model call", "model", model, "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
		if werr := limiter.Wait(ctx); werr != nil {
			return zero, werr
		}
		var resp T
		resp, err = call()
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("model %s failed after %d attempts: %w", model, MaxRetries+1, err)
}
