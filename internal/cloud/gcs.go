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

// This file holds the Cloud Storage helpers used to archive productions.
package cloud

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// GCSObject identifies an archived object.
type GCSObject struct {
	Bucket   string
	Name     string
	MIMEType string
}

// URI returns the gs:// form of the object.
func (o GCSObject) URI() string {
	return fmt.Sprintf("gs://%s/%s", o.Bucket, o.Name)
}

// ParseGCSURI splits a gs://bucket/name URI.
func ParseGCSURI(uri string) (GCSObject, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return GCSObject{}, fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, name, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || name == "" {
		return GCSObject{}, fmt.Errorf("incomplete gs:// uri: %q", uri)
	}
	return GCSObject{Bucket: bucket, Name: name}, nil
}

// ArchiveObjectName places a project file under prefix/project/.
func ArchiveObjectName(prefix, project, file string) string {
	return path.Join(prefix, project, filepath.Base(file))
}

// UploadFile copies a local file into the bucket. The content type is taken
// from the file extension.
func UploadFile(ctx context.Context, client *storage.Client, bucket, name, local string) (GCSObject, error) {
	f, err := os.Open(local)
	if err != nil {
		return GCSObject{}, err
	}
	defer f.Close()

	obj := GCSObject{Bucket: bucket, Name: name, MIMEType: mime.TypeByExtension(filepath.Ext(local))}
	w := client.Bucket(bucket).Object(name).NewWriter(ctx)
	if obj.MIMEType != "" {
		w.ContentType = obj.MIMEType
	}
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return GCSObject{}, fmt.Errorf("uploading %s to %s: %w", local, obj.URI(), err)
	}
	if err := w.Close(); err != nil {
		return GCSObject{}, fmt.Errorf("uploading %s to %s: %w", local, obj.URI(), err)
	}
	return obj, nil
}

// DownloadToTemp copies an object into a new temporary file and returns its
// path. The caller owns the file.
func DownloadToTemp(ctx context.Context, client *storage.Client, obj GCSObject, prefix string) (string, error) {
	reader, err := client.Bucket(obj.Bucket).Object(obj.Name).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create reader for %s: %w", obj.URI(), err)
	}
	defer reader.Close()

	tempFile, err := os.CreateTemp("", prefix+"*"+path.Ext(obj.Name))
	if err != nil {
		return "", fmt.Errorf("could not create temp file: %w", err)
	}
	if _, err := io.Copy(tempFile, reader); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
		return "", fmt.Errorf("downloading %s: %w", obj.URI(), err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempFile.Name())
		return "", err
	}
	return tempFile.Name(), nil
}
