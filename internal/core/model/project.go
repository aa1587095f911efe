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

package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Project folder and file names.
const (
	DescriptorFileName = "proyecto.json"
	ScriptFolder       = "guion"
	AudioFolder        = "audio"
	ImagesFolder       = "imagenes"
	VideoFolder        = "video"
	ScriptFileName     = "guion.json"
	NarrationFileName  = "narracion.wav"
	VideoFileName      = "video_final.mp4"
)

// ProjectFolders are created for every new project.
var ProjectFolders = []string{ScriptFolder, AudioFolder, ImagesFolder, VideoFolder}

// legacyTimeLayout matches timestamps written without a zone.
const legacyTimeLayout = "2006-01-02T15:04:05.999999"

// VideoMode selects how the final video is assembled.
type VideoMode string

const (
	VideoModeSlideshow VideoMode = "slideshow"
	VideoModeLoop      VideoMode = "loop"
)

// Privacy is the YouTube privacy level.
type Privacy string

const (
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPublic   Privacy = "public"
)

// ParsePrivacy validates a privacy value.
func ParsePrivacy(in string) (Privacy, error) {
	switch p := Privacy(in); p {
	case PrivacyPrivate, PrivacyUnlisted, PrivacyPublic:
		return p, nil
	}
	return "", fmt.Errorf("invalid privacy %q, expected private, unlisted or public", in)
}

// Project is the typed view of a project descriptor.
type Project struct {
	Name      string          `json:"nombre"`
	Topic     string          `json:"tema"`
	CreatedAt string          `json:"fecha_creacion"`
	Status    Status          `json:"estado"`
	Settings  ProjectSettings `json:"configuracion"`
	Files     ProjectFiles    `json:"archivos"`
	YouTube   YouTubeResult   `json:"youtube"`

	// Dir is the project folder on disk; it is not persisted.
	Dir string `json:"-"`
}

// ProjectSettings is the per-step configuration chosen for a project.
type ProjectSettings struct {
	WordCount       int       `json:"palabras,omitempty"`
	Voice           string    `json:"voz,omitempty"`
	Style           string    `json:"estilo_narracion,omitempty"`
	SecondsPerImage int       `json:"segundos_por_imagen,omitempty"`
	VideoMode       VideoMode `json:"modo_video,omitempty"`
	BaseCategory    string    `json:"categoria_base,omitempty"`
	Privacy         Privacy   `json:"privacidad,omitempty"`
}

// ProjectFiles holds artifact paths relative to the project folder.
type ProjectFiles struct {
	Script string   `json:"guion"`
	Audio  string   `json:"audio"`
	Images []string `json:"imagenes"`
	Video  string   `json:"video"`
}

// YouTubeResult records the upload outcome.
type YouTubeResult struct {
	Uploaded bool    `json:"subido"`
	URL      string  `json:"url"`
	Privacy  Privacy `json:"privacidad"`
}

// Created parses CreatedAt. Zero is returned when it cannot be parsed.
func (p *Project) Created() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, p.CreatedAt); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyTimeLayout, p.CreatedAt, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// NewProject returns the descriptor for a freshly created project.
func NewProject(name, topic string, settings ProjectSettings, now time.Time) *Project {
	return &Project{
		Name:      name,
		Topic:     topic,
		CreatedAt: now.Format(time.RFC3339Nano),
		Status:    StatusInitiated,
		Settings:  settings,
		Files:     ProjectFiles{Images: make([]string, 0)},
		YouTube:   YouTubeResult{},
	}
}

// Word count bounds accepted for a script.
const (
	MinWordCount = 200
	MaxWordCount = 5000
)

// ClampWordCount keeps a requested word count within the accepted bounds.
func ClampWordCount(n int) int {
	return max(MinWordCount, min(MaxWordCount, n))
}

// Path resolves a descriptor relative path against the project folder.
func (p *Project) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Dir, filepath.FromSlash(rel))
}

// Rel returns path relative to the project folder in slash form, the way
// the descriptor stores artifact paths.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
