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

// Package cloud defines the studio's configuration, loaded from layered TOML
// files, and the clients and wrappers for the hosted services the pipeline
// calls: Gemini text, speech and image models, OpenAI speech, YouTube, Cloud
// Storage, BigQuery and Pub/Sub.
//
// Structs:
//   - BigQueryDataSource: dataset and table for production analytics.
//   - PromptTemplates: text/template sources for every prompt the studio sends.
//   - VertexAiLLMModel: a text or vision model and its generation parameters.
//   - SpeechModel, ImageModel: the speech and image generators.
//   - AudioSettings, VideoSettings: narration chunking and encoding parameters.
//   - YouTubeSettings, ShortsSettings, ToolPaths: upload, shorts and binaries.
//   - Config: the root of all of the above.
//
// Functions:
//   - NewConfig: returns a Config populated with the built-in defaults.
package cloud

import (
	_ "embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"google.golang.org/genai"
)

// Logical keys of the agent models the studio uses.
const (
	ModelScript  = "script"
	ModelPrompts = "prompts"
	ModelMoments = "moments"
	ModelVision  = "vision"
)

// SubscriptionProductions is the topic_subscriptions key of the production
// trigger subscription.
const SubscriptionProductions = "productions"

// Backends for the genai client.
const (
	BackendVertex    = "vertex"
	BackendGeminiAPI = "gemini-api"
)

// Speech providers.
const (
	SpeechGemini = "gemini"
	SpeechOpenAI = "openai"
)

// Audio concatenation implementations.
const (
	ConcatFFmpeg = "ffmpeg"
	ConcatNative = "native"
)

// Base video selection modes.
const (
	SelectRandom = "random"
	SelectFirst  = "first"
)

//go:embed defaults.toml
var defaultConfig string

// DefaultSafetySettings defines the default content safety thresholds for the
// text models. Generated scripts regularly deal with horror and crime themes,
// so the text models are left unfiltered.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName     string `toml:"dataset"`          // The name of the BigQuery dataset.
	ProductionTable string `toml:"production_table"` // The table receiving one row per production.
}

// Enabled reports whether analytics rows should be written.
func (b BigQueryDataSource) Enabled() bool {
	return b.DatasetName != "" && b.ProductionTable != ""
}

// PromptTemplates holds the text/template sources for every prompt.
type PromptTemplates struct {
	Script      string `toml:"script"`       // Script generation, rendered with ScriptPromptData.
	ImagePrompt string `toml:"image_prompt"` // Image prompt generation, rendered with ImagePromptData.
	Moments     string `toml:"moments"`      // Viral moment selection, rendered with MomentsPromptData.
	Subject     string `toml:"subject"`      // Subject position for smart cropping (no data).
}

// VertexAiLLMModel represents the configuration for a text or vision model.
type VertexAiLLMModel struct {
	Model              string  `toml:"model"`               // The model name.
	SystemInstructions string  `toml:"system_instructions"` // The system instructions for the LLM.
	Temperature        float32 `toml:"temperature"`         // The temperature parameter for the LLM.
	TopP               float32 `toml:"top_p"`               // The top_p parameter for the LLM.
	TopK               float32 `toml:"top_k"`               // The top_k parameter for the LLM.
	MaxTokens          int32   `toml:"max_tokens"`          // The maximum number of tokens for the LLM output.
	OutputFormat       string  `toml:"output_format"`       // The response MIME type, e.g. application/json.
	EnableGoogle       bool    `toml:"enable_google"`       // Whether to enable Google Search grounding.
	RateLimit          int     `toml:"rate_limit"`          // Requests per second.
}

// SpeechModel configures the narrator.
type SpeechModel struct {
	Provider    string `toml:"provider"`     // gemini or openai.
	Model       string `toml:"model"`        // Gemini TTS model.
	OpenAIModel string `toml:"openai_model"` // OpenAI TTS model.
	RateLimit   int    `toml:"rate_limit"`   // Requests per second.
}

// ImageModel configures the image generator.
type ImageModel struct {
	Model       string `toml:"model"`
	AspectRatio string `toml:"aspect_ratio"`
	RateLimit   int    `toml:"rate_limit"` // Requests per second.
}

// AudioSettings controls narration chunking and the concatenated track.
type AudioSettings struct {
	MaxChars   int    `toml:"max_chars"`   // Longest text sent in one synthesis call.
	SampleRate int    `toml:"sample_rate"` // Sample rate of synthesized and normalized audio.
	Channels   int    `toml:"channels"`
	Concat     string `toml:"concat"` // ffmpeg or native.
}

// BaseVideoCategory is a group of background videos for loop mode.
type BaseVideoCategory struct {
	Description string   `toml:"description"`
	Files       []string `toml:"files"` // Relative to VideoSettings.BaseVideosDir.
}

// VideoSettings controls video assembly.
type VideoSettings struct {
	Mode            model.VideoMode              `toml:"mode"`
	SecondsPerImage int                          `toml:"seconds_per_image"`
	BaseVideosDir   string                       `toml:"base_videos_dir"`
	Selection       string                       `toml:"selection"` // random or first.
	DefaultCategory string                       `toml:"default_category"`
	Encode          media.VideoOptions           `toml:"encode"`
	Categories      map[string]BaseVideoCategory `toml:"categories"`
}

// ScriptSettings controls the generated script.
type ScriptSettings struct {
	WordCount int                     `toml:"word_count"`
	Language  string                  `toml:"language"`
	Sections  []model.SectionTemplate `toml:"sections"`
}

// YouTubeSettings controls publishing.
type YouTubeSettings struct {
	Enabled          bool          `toml:"enabled"`
	ClientSecretFile string        `toml:"client_secret_file"`
	TokenFile        string        `toml:"token_file"`
	Privacy          model.Privacy `toml:"privacy"`
	CategoryID       string        `toml:"category_id"`
	DefaultTitle     string        `toml:"default_title"`
	Footer           string        `toml:"footer"`
}

// ShortsSettings controls the shorts pipeline.
type ShortsSettings struct {
	Count     int                  `toml:"count"`
	Method    model.VerticalMethod `toml:"method"`
	Languages []string             `toml:"languages"`
	OutputDir string               `toml:"output_dir"`
	Frames    int                  `toml:"frames"`     // Frames sampled for smart cropping.
	KeepClips bool                 `toml:"keep_clips"` // Keep the landscape clips after conversion.
}

// ToolPaths locates the external binaries.
type ToolPaths struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	YtDlp   string `toml:"yt_dlp"`
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for the archive bucket.
type Storage struct {
	ArchiveBucket string `toml:"archive_bucket"` // Finished productions are copied here; empty disables archiving.
	ArchivePrefix string `toml:"archive_prefix"` // Object name prefix inside the bucket.
}

// Config represents the overall configuration for the application, loaded
// from TOML files on top of the built-in defaults.
type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		Backend                   string `toml:"backend"`                      // vertex or gemini-api.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Workers for parallel prompt generation.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // The service account used for signing GCS URLs.
		ProjectsDir               string `toml:"projects_dir"`                 // Root folder of the project store.
		Telemetry                 bool   `toml:"telemetry"`                    // Export traces and metrics to Google Cloud.
		HTTPPort                  int    `toml:"http_port"`
	} `toml:"application"`
	Storage            Storage                         `toml:"storage"`
	BigQueryDataSource BigQueryDataSource              `toml:"big_query_data_source"`
	PromptTemplates    PromptTemplates                 `toml:"prompt_templates"`
	TopicSubscriptions map[string]TopicSubscription    `toml:"topic_subscriptions"` // Keyed by a logical name, e.g. "productions".
	AgentModels        map[string]VertexAiLLMModel     `toml:"agent_models"`        // Keyed by ModelScript, ModelPrompts, ModelMoments, ModelVision.
	Speech             SpeechModel                     `toml:"speech"`
	Images             ImageModel                      `toml:"images"`
	Audio              AudioSettings                   `toml:"audio"`
	Video              VideoSettings                   `toml:"video"`
	Script             ScriptSettings                  `toml:"script"`
	Styles             map[string]model.NarrationStyle `toml:"styles"`
	YouTube            YouTubeSettings                 `toml:"youtube"`
	Shorts             ShortsSettings                  `toml:"shorts"`
	Tools              ToolPaths                       `toml:"tools"`
}

// NewConfig returns a Config holding the built-in defaults: the embedded
// defaults.toml plus the default narration styles. Files decoded on top of it
// override individual keys.
func NewConfig() *Config {
	c := &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		AgentModels:        make(map[string]VertexAiLLMModel),
		Styles:             model.DefaultStyles(),
	}
	c.Video.Categories = make(map[string]BaseVideoCategory)
	if _, err := toml.Decode(defaultConfig, c); err != nil {
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return c
}

// Agent returns the named agent model, or an error naming the missing key.
func (c *Config) Agent(name string) (VertexAiLLMModel, error) {
	m, ok := c.AgentModels[name]
	if !ok || m.Model == "" {
		return VertexAiLLMModel{}, fmt.Errorf("agent model %q is not configured", name)
	}
	return m, nil
}

// Style resolves a style key against the configured styles.
func (c *Config) Style(key string) model.NarrationStyle {
	return model.LookupStyle(c.Styles, key)
}

// Validate rejects values the pipeline cannot run with. All problems are
// reported at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	switch c.Application.Backend {
	case BackendVertex:
		check(c.Application.GoogleProjectId != "", "application.google_project_id is required for the vertex backend")
	case BackendGeminiAPI:
	default:
		check(false, "application.backend must be %q or %q, got %q", BackendVertex, BackendGeminiAPI, c.Application.Backend)
	}
	check(c.Application.ThreadPoolSize > 0, "application.thread_pool_size must be positive")
	check(c.Application.ProjectsDir != "", "application.projects_dir is required")

	check(c.Speech.Provider == SpeechGemini || c.Speech.Provider == SpeechOpenAI,
		"speech.provider must be %q or %q, got %q", SpeechGemini, SpeechOpenAI, c.Speech.Provider)
	check(c.Audio.MaxChars >= 0, "audio.max_chars must not be negative")
	check(c.Audio.SampleRate > 0, "audio.sample_rate must be positive")
	check(c.Audio.Channels == 1 || c.Audio.Channels == 2, "audio.channels must be 1 or 2")
	check(c.Audio.Concat == ConcatFFmpeg || c.Audio.Concat == ConcatNative,
		"audio.concat must be %q or %q, got %q", ConcatFFmpeg, ConcatNative, c.Audio.Concat)

	check(c.Video.Mode == model.VideoModeSlideshow || c.Video.Mode == model.VideoModeLoop,
		"video.mode must be %q or %q, got %q", model.VideoModeSlideshow, model.VideoModeLoop, c.Video.Mode)
	check(c.Video.SecondsPerImage > 0, "video.seconds_per_image must be positive")
	check(c.Video.Selection == SelectRandom || c.Video.Selection == SelectFirst,
		"video.selection must be %q or %q, got %q", SelectRandom, SelectFirst, c.Video.Selection)

	check(c.Script.WordCount > 0, "script.word_count must be positive")
	check(len(c.Script.Sections) > 0, "script.sections must not be empty")

	_, err := model.ParsePrivacy(string(c.YouTube.Privacy))
	check(err == nil, "youtube.privacy: %v", err)
	_, err = model.ParseVerticalMethod(string(c.Shorts.Method))
	check(err == nil, "shorts.method: %v", err)
	check(c.Shorts.Count > 0, "shorts.count must be positive")

	for name, src := range map[string]string{
		"script":       c.PromptTemplates.Script,
		"image_prompt": c.PromptTemplates.ImagePrompt,
		"moments":      c.PromptTemplates.Moments,
		"subject":      c.PromptTemplates.Subject,
	} {
		if src == "" {
			check(false, "prompt_templates.%s is required", name)
			continue
		}
		_, err := template.New(name).Parse(src)
		check(err == nil, "prompt_templates.%s: %v", name, err)
	}
	for _, name := range []string{ModelScript, ModelPrompts, ModelMoments, ModelVision} {
		_, err := c.Agent(name)
		check(err == nil, "%v", err)
	}
	return errors.Join(errs...)
}
