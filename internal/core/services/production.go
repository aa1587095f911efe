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

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"google.golang.org/api/iterator"
)

// ErrProductionNotFound is returned when no analytics row matches an id.
var ErrProductionNotFound = errors.New("production not found")

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// ProductionService reads the production analytics table and signs
// short-lived URLs for archived artifacts.
type ProductionService struct {
	BigqueryClient  *bigquery.Client
	StorageClient   *storage.Client
	IAMClient       *credentials.IamCredentialsClient
	SignerEmail     string
	DatasetName     string
	ProductionTable string
}

// GetFQN returns the dotted, queryable name of the production table.
func (s *ProductionService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.ProductionTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Get returns the newest record of one production.
func (s *ProductionService) Get(ctx context.Context, id string) (*model.ProductionRecord, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(QryFindProductionById, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	record := &model.ProductionRecord{}
	err = itr.Next(record)
	if errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("%w: %s", ErrProductionNotFound, id)
	}
	return record, err
}

// List returns the latest record of each production, newest first.
func (s *ProductionService) List(ctx context.Context, limit int) ([]*model.ProductionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := s.BigqueryClient.Query(fmt.Sprintf(QryListProductions, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ProductionRecord, 0)
	for {
		record := &model.ProductionRecord{}
		err := itr.Next(record)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// GenerateSignedURL returns a V4 GET URL for a gs:// object valid for
// expires. When a signer account is configured the signature is produced by
// the IAM Credentials API so no key file is needed.
func (s *ProductionService) GenerateSignedURL(ctx context.Context, gcsURI string, expires time.Duration) (string, error) {
	obj, err := cloud.ParseGCSURI(gcsURI)
	if err != nil {
		return "", err
	}
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expires),
	}
	if s.SignerEmail != "" && s.IAMClient != nil {
		opts.GoogleAccessID = s.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := s.IAMClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}
	u, err := s.StorageClient.Bucket(obj.Bucket).SignedURL(obj.Name, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", obj.Bucket, obj.Name, err)
	}
	return u, nil
}
