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

package commands

import (
	goctx "context"
	"fmt"
	"log/slog"
	"path"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
)

// RowInserter is satisfied by *bigquery.Inserter.
type RowInserter interface {
	Put(ctx goctx.Context, src interface{}) error
}

// ProductionPersistToBigQuery is a command that records a finished
// production in the analytics table.
type ProductionPersistToBigQuery struct {
	cor.BaseCommand
	inserter RowInserter
}

func NewProductionPersistToBigQuery(name string, inserter RowInserter) *ProductionPersistToBigQuery {
	return &ProductionPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), inserter: inserter}
}

func (s *ProductionPersistToBigQuery) IsExecutable(context cor.Context) bool {
	return hasProject(context) && s.inserter != nil
}

// Record builds the analytics row from what the context knows about the
// production.
func Record(context cor.Context, project *model.Project) *model.ProductionRecord {
	record := model.NewProductionRecord(project)

	script, _ := context.Get(ScriptParam).(*model.Script)
	if script == nil {
		script, _ = LoadScript(scriptFile(project))
	}
	if script != nil {
		record.Title = script.Title
		record.WordCount = script.WordCount()
		record.SectionCount = len(script.Sections)
	}
	if track, ok := context.Get(NarrationParam).(*narration.Result); ok && track != nil {
		record.NarrationChunks = track.Chunks
		record.AudioSeconds = track.Duration.Seconds()
	}
	if objects, ok := context.Get(ArchiveParam).([]cloud.GCSObject); ok && len(objects) > 0 {
		record.ArchiveURI = fmt.Sprintf("gs://%s/%s", objects[0].Bucket, path.Dir(objects[0].Name))
	}
	return record
}

func (s *ProductionPersistToBigQuery) Execute(context cor.Context) {
	project, err := getProject(context)
	if err != nil {
		s.Fail(context, err)
		return
	}
	record := Record(context, project)

	if err := s.inserter.Put(context.GetContext(), record); err != nil {
		s.Fail(context, fmt.Errorf("bigquery insert failed for %s: %w", project.Name, err))
		return
	}

	s.Succeed(context)
	context.Add(cor.CtxOut, record)
	slog.InfoContext(context.GetContext(), "production recorded", "project", project.Name, "id", record.Id)
}
