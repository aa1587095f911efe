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

// Package services contains the business logic over the studio's data
// sources: the on-disk project store and the production analytics in
// BigQuery and Cloud Storage.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
)

// MaxNameRunes bounds the topic part of a project name.
const MaxNameRunes = 40

// nameTimeLayout is appended to project names.
const nameTimeLayout = "20060102_150405"

var (
	// ErrProjectNotFound is returned for a name with no descriptor.
	ErrProjectNotFound = errors.New("project not found")

	unsafeName = regexp.MustCompile(`[^\p{L}\p{N}\s_-]`)
)

// ProjectService stores one folder per project under Root:
//
//	<Root>/<name>/proyecto.json
//	<Root>/<name>/{guion,audio,imagenes,video}/
//
// Descriptor writes are atomic and serialized within the process.
type ProjectService struct {
	Root string
	Now  func() time.Time

	mu sync.Mutex
}

// NewProjectService returns a store rooted at root.
func NewProjectService(root string) *ProjectService {
	return &ProjectService{Root: root, Now: time.Now}
}

// ProjectName derives a folder name from a topic: letters, digits, spaces,
// '-' and '_' are kept, spaces become '_', the first MaxNameRunes runes are
// used and the creation time is appended.
func ProjectName(topic string, now time.Time) string {
	clean := strings.TrimSpace(unsafeName.ReplaceAllString(topic, ""))
	clean = strings.Join(strings.Fields(clean), "_")
	clean = model.Snippet(clean, MaxNameRunes)
	if clean == "" {
		clean = "proyecto"
	}
	return clean + "_" + now.Format(nameTimeLayout)
}

// Dir returns the folder of the named project.
func (s *ProjectService) Dir(name string) string {
	return filepath.Join(s.Root, name)
}

func (s *ProjectService) descriptor(name string) string {
	return filepath.Join(s.Dir(name), model.DescriptorFileName)
}

// Create lays out a new project for topic and writes its descriptor. Two
// projects created within the same second get a numeric suffix.
func (s *ProjectService) Create(topic string, settings model.ProjectSettings) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	base := ProjectName(topic, now)
	name := base
	for i := 2; ; i++ {
		if _, err := os.Stat(s.Dir(name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}

	for _, folder := range model.ProjectFolders {
		if err := os.MkdirAll(filepath.Join(s.Dir(name), folder), 0o755); err != nil {
			return nil, fmt.Errorf("creating project %s: %w", name, err)
		}
	}

	p := model.NewProject(name, topic, settings, now)
	p.Dir = s.Dir(name)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(s.descriptor(name), data); err != nil {
		return nil, err
	}
	slog.Info("project created", "name", name, "dir", p.Dir)
	return p, nil
}

// Load reads a project descriptor. Unknown statuses are rejected.
func (s *ProjectService) Load(name string) (*model.Project, error) {
	data, err := os.ReadFile(s.descriptor(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	p := &model.Project{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("reading project %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	// A descriptor without a status has not started any step.
	if p.Status == "" {
		p.Status = model.StatusInitiated
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("reading project %s: %w: %q", name, model.ErrUnknownStatus, p.Status)
	}
	p.Dir = s.Dir(name)
	return p, nil
}

// Update deep-merges patch into the stored descriptor: nested objects are
// merged key by key, everything else is replaced. A status change must be a
// legal transition. Keys the descriptor type does not know are preserved.
func (s *ProjectService) Update(name string, patch map[string]any) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.descriptor(name))
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading project %s: %w", name, err)
	}
	// Legacy descriptors may hold an old status name.
	doc["estado"] = current.Status.String()

	// Round-trip the patch so typed values merge as plain JSON values.
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	plain := map[string]any{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	DeepMerge(doc, plain)

	merged, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	updated := &model.Project{}
	if err := json.Unmarshal(merged, updated); err != nil {
		return nil, fmt.Errorf("updating project %s: %w", name, err)
	}
	if _, err := current.Status.Transition(updated.Status); err != nil {
		return nil, fmt.Errorf("updating project %s: %w", name, err)
	}

	if err := writeAtomic(s.descriptor(name), merged); err != nil {
		return nil, err
	}
	updated.Dir = s.Dir(name)
	return updated, nil
}

// List returns every readable project, newest first. Folders whose
// descriptor cannot be read are logged and skipped.
func (s *ProjectService) List() ([]*model.Project, error) {
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]*model.Project, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := s.Load(e.Name())
		if err != nil {
			if !errors.Is(err, ErrProjectNotFound) {
				slog.Warn("skipping unreadable project", "name", e.Name(), "error", err)
			}
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Created(), out[j].Created()
		if ti.Equal(tj) {
			return out[i].Name > out[j].Name
		}
		return ti.After(tj)
	})
	return out, nil
}

// DeepMerge merges src into dst. Where both hold an object the merge
// recurses; any other value in src replaces the one in dst.
func DeepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				DeepMerge(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
}

// writeAtomic replaces path with data through a temporary file in the same
// folder.
func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
