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
	"time"

	"github.com/google/uuid"
)

// ProductionRecord is the analytics row written for every finished (or
// failed) production.
type ProductionRecord struct {
	Id              string    `json:"id" bigquery:"id"`
	ProjectName     string    `json:"project_name" bigquery:"project_name"`
	Topic           string    `json:"topic" bigquery:"topic"`
	Title           string    `json:"title" bigquery:"title"`
	Status          string    `json:"status" bigquery:"status"`
	Style           string    `json:"style" bigquery:"style"`
	Voice           string    `json:"voice" bigquery:"voice"`
	VideoMode       string    `json:"video_mode" bigquery:"video_mode"`
	WordCount       int       `json:"word_count" bigquery:"word_count"`
	SectionCount    int       `json:"section_count" bigquery:"section_count"`
	NarrationChunks int       `json:"narration_chunks" bigquery:"narration_chunks"`
	AudioSeconds    float64   `json:"audio_seconds" bigquery:"audio_seconds"`
	ImageCount      int       `json:"image_count" bigquery:"image_count"`
	VideoURL        string    `json:"video_url,omitempty" bigquery:"video_url"`
	ArchiveURI      string    `json:"archive_uri,omitempty" bigquery:"archive_uri"`
	CreateDate      time.Time `json:"create_date" bigquery:"create_date"`
}

// ProductionID derives a stable id from the project name so re-runs of the
// same project update analytics under one key.
func ProductionID(projectName string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(projectName)).String()
}

// NewProductionRecord seeds a record from a project descriptor.
func NewProductionRecord(p *Project) *ProductionRecord {
	return &ProductionRecord{
		Id:          ProductionID(p.Name),
		ProjectName: p.Name,
		Topic:       p.Topic,
		Status:      p.Status.String(),
		Style:       p.Settings.Style,
		Voice:       p.Settings.Voice,
		VideoMode:   string(p.Settings.VideoMode),
		ImageCount:  len(p.Files.Images),
		VideoURL:    p.YouTube.URL,
		CreateDate:  time.Now(),
	}
}
