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

package cloud

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiSynthesizer turns text into 16-bit mono PCM with a Gemini TTS model.
type GeminiSynthesizer struct {
	ModelName   string
	ModelHandle ContentGenerator
	RateLimit   *rate.Limiter
	RetryDelay  time.Duration
}

// NewGeminiSynthesizer builds a synthesizer for the configured speech model.
func NewGeminiSynthesizer(settings SpeechModel, handle ContentGenerator) *GeminiSynthesizer {
	return &GeminiSynthesizer{
		ModelName:   settings.Model,
		ModelHandle: handle,
		RateLimit:   newLimiter(settings.RateLimit),
		RetryDelay:  DefaultRetryDelay,
	}
}

// Synthesize returns the raw PCM of text read by the prebuilt voice.
func (g *GeminiSynthesizer) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	resp, err := withRetry(ctx, g.RateLimit, g.RetryDelay, g.ModelName, func() (*genai.GenerateContentResponse, error) {
		return g.ModelHandle.GenerateContent(ctx, g.ModelName, genai.Text(text), config)
	})
	if err != nil {
		return nil, err
	}

	var pcm []byte
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				pcm = append(pcm, part.InlineData.Data...)
			}
		}
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("model %s returned no audio", g.ModelName)
	}
	return pcm, nil
}

// SpeechClient is the part of *openai.Client the OpenAI synthesizer calls.
type SpeechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// openAIVoices maps the studio's voices to the closest OpenAI voice.
var openAIVoices = map[string]openai.SpeechVoice{
	"kore":   openai.VoiceCoral,
	"charon": openai.VoiceOnyx,
	"puck":   openai.VoiceEcho,
	"aoede":  openai.VoiceShimmer,
}

// OpenAISynthesizer turns text into 24 kHz 16-bit mono PCM with the OpenAI
// speech endpoint.
type OpenAISynthesizer struct {
	Client    SpeechClient
	Model     string
	RateLimit *rate.Limiter
}

// NewOpenAISynthesizer builds a synthesizer for the configured model.
func NewOpenAISynthesizer(settings SpeechModel, client SpeechClient) *OpenAISynthesizer {
	return &OpenAISynthesizer{
		Client:    client,
		Model:     settings.OpenAIModel,
		RateLimit: newLimiter(settings.RateLimit),
	}
}

// Synthesize sends text to the speech endpoint. A leading bracketed direction
// block, as produced by narration styles, is sent as instructions instead of
// being read aloud.
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if err := o.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	instructions, body := SplitDirection(text)
	resp, err := o.Client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.Model),
		Input:          body,
		Voice:          OpenAIVoice(voice),
		Instructions:   instructions,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("openai speech: reading audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("openai speech: empty audio")
	}
	return pcm, nil
}

// OpenAIVoice maps a voice name to an OpenAI voice, passing OpenAI names
// through and defaulting to alloy.
func OpenAIVoice(voice string) openai.SpeechVoice {
	key := strings.ToLower(strings.TrimSpace(voice))
	if v, ok := openAIVoices[key]; ok {
		return v
	}
	switch v := openai.SpeechVoice(key); v {
	case openai.VoiceAlloy, openai.VoiceAsh, openai.VoiceBallad, openai.VoiceCoral, openai.VoiceEcho,
		openai.VoiceFable, openai.VoiceOnyx, openai.VoiceNova, openai.VoiceShimmer, openai.VoiceVerse:
		return v
	}
	return openai.VoiceAlloy
}

// SplitDirection separates a leading "[...]" direction block followed by a
// blank line from the text to read.
func SplitDirection(text string) (direction string, body string) {
	if !strings.HasPrefix(text, "[") {
		return "", text
	}
	head, rest, ok := strings.Cut(text, "]\n\n")
	if !ok {
		return "", text
	}
	return strings.TrimPrefix(head, "["), rest
}
