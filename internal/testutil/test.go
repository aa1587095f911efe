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

// Package test holds the fixtures shared by the package tests.
package test

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
)

type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// GetTestProductionMessageText returns a production trigger as published on
// the requests topic.
func GetTestProductionMessageText() string {
	return `{
  "topic": "La caída del Imperio romano",
  "word_count": 600,
  "style": "documentary",
  "voice": "Charon",
  "privacy": "unlisted",
  "mode": "slideshow",
  "seconds_per_image": 20,
  "category": "historia"
}`
}

// ConfigDir returns the repository's configs directory.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir())
	if err != nil {
		return err
	}
	// Loads .env.test.toml on top of .env.toml.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig loads the test configuration once.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}
