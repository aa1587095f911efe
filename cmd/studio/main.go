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

// Command studio turns a topic into a narrated YouTube video, resumes
// interrupted productions, extracts vertical shorts from published videos
// and serves the project dashboard API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/telemetry"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	configDir string
	runtime   string
	logLevel  string
	logFile   string
}

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Topic to narrated video production",
	Long: `studio writes a script for a topic with Gemini, narrates it, illustrates it
with generated images or base footage, renders the video and publishes it.

Every production lives in its own project folder and can be resumed from the
last completed step.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.configDir, "config-dir", "configs", "directory holding .env.toml and .env.<runtime>.toml")
	flags.StringVar(&rootFlags.runtime, "runtime", "", "configuration runtime (default $GCP_RUNTIME or local)")
	flags.StringVar(&rootFlags.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&rootFlags.logFile, "log-file", "", "also write logs to this file")
}

func setup(ctx context.Context) error {
	// API keys may come from a .env file next to the binary.
	_ = godotenv.Load()

	var level slog.Level
	if err := level.UnmarshalText([]byte(rootFlags.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	var out io.Writer = os.Stderr
	if rootFlags.logFile != "" {
		file, err := os.Create(rootFlags.logFile)
		if err != nil {
			return err
		}
		state.closers = append(state.closers, file.Close)
		out = io.MultiWriter(os.Stderr, file)
	}

	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, rootFlags.configDir); err != nil {
			return err
		}
	}
	if rootFlags.runtime != "" {
		if err := os.Setenv(cloud.EnvConfigRuntime, rootFlags.runtime); err != nil {
			return err
		}
	}
	config, err := GetConfig()
	if err != nil {
		return err
	}

	bridge := ""
	if config.Application.Telemetry {
		bridge = config.Application.Name
	}
	telemetry.SetupLogging(out, level, bridge)
	slog.Debug("logging initialized")

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to setup OpenTelemetry: %w", err)
	}
	state.closers = append(state.closers, func() error { return shutdown(context.Background()) })
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); cerr != nil {
		slog.Warn("error releasing resources", "error", cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
