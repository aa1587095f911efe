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

// This file contains the package's general helpers: layered configuration
// loading and the text extraction shared by every model call.
//
// Functions:
//   - LoadConfig: decodes configs/.env.toml, then the runtime specific
//     configs/.env.<runtime>.toml, on top of the target struct.
//   - GenerateMultiModalResponse: calls a quota aware model, records token
//     usage and returns the response text without code fences.
//   - StripCodeFences: removes the ```json fences models like to add.
//   - NewTextPart, NewImagePart: genai content factories.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// Cloud Constants define key strings and values used throughout the package,
// primarily for configuration loading and API interaction policies.
const (
	ConfigFileBaseName  = ".env"              // The base name for configuration files (e.g., ".env.toml").
	ConfigFileExtension = ".toml"             // The file extension for configuration files.
	ConfigSeparator     = "."                 // The separator used in config file names (e.g., ".env.local.toml").
	EnvConfigFilePrefix = "GCP_CONFIG_PREFIX" // The environment variable for specifying the config directory.
	EnvConfigRuntime    = "GCP_RUNTIME"       // The environment variable for specifying the runtime context (e.g., "local", "test", "prod").
	DefaultRuntime      = "local"             // Used when GCP_RUNTIME is unset.
	MaxRetries          = 3                   // The maximum number of times to retry a failed API call.
)

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// ConfigFiles returns the base and runtime configuration file paths derived
// from the environment.
func ConfigFiles() (base string, runtime string) {
	dir := os.Getenv(EnvConfigFilePrefix)
	env := os.Getenv(EnvConfigRuntime)
	if env == "" {
		env = DefaultRuntime
	}
	base = filepath.Join(dir, ConfigFileBaseName+ConfigFileExtension)
	runtime = filepath.Join(dir, ConfigFileBaseName+ConfigSeparator+env+ConfigFileExtension)
	return base, runtime
}

// LoadConfig decodes the base configuration file and then the runtime
// specific one into baseConfig, so runtime values override base values.
// Missing files are skipped; malformed files are an error.
func LoadConfig(baseConfig any) error {
	base, runtime := ConfigFiles()
	for _, path := range []string{base, runtime} {
		if !fileExists(path) {
			slog.Debug("configuration file not found", "path", path)
			continue
		}
		if _, err := toml.DecodeFile(path, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", path, err)
		}
		slog.Debug("configuration file loaded", "path", path)
	}
	return nil
}

// GenerateMultiModalResponse sends content to the model and returns the text
// of all candidate parts with any code fences removed. Token usage is added
// to the given counters.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (string, error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	var value strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			value.WriteString(part.Text)
		}
	}
	return StripCodeFences(value.String()), nil
}

// StripCodeFences trims whitespace and a surrounding ``` or ```json fence.
func StripCodeFences(in string) string {
	out := strings.TrimSpace(in)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

// NewTextPart wraps a prompt as user content.
func NewTextPart(in string) []*genai.Content {
	return genai.Text(in)
}

// NewImagePart wraps inline image bytes as a part.
func NewImagePart(data []byte, mimeType string) *genai.Part {
	return genai.NewPartFromBytes(data, mimeType)
}
