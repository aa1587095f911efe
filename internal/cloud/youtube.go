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

// This file implements publishing to YouTube: the OAuth2 installed-app flow
// with a persisted token, channel selection and the resumable upload.
package cloud

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Upload limits enforced by the YouTube Data API.
const (
	MaxTitleRunes = 100
	MaxTags       = 500
	UploadChunk   = 1 << 20
)

// ErrNoChannel is returned when the authorized account owns no channel.
var ErrNoChannel = errors.New("the authorized account has no YouTube channel")

// ChannelChooser picks one channel when the account owns several.
type ChannelChooser func(channels []*youtube.Channel) (*youtube.Channel, error)

// AuthURLHandler shows the consent URL to the user.
type AuthURLHandler func(url string)

// UploadRequest is the metadata of one upload.
type UploadRequest struct {
	Path        string
	Title       string
	Description string
	Tags        []string
	Privacy     model.Privacy
}

// YouTubeUploader owns an authorized YouTube service and the selected channel.
type YouTubeUploader struct {
	settings YouTubeSettings
	service  *youtube.Service
	Channel  *youtube.Channel
}

// NewYouTubeUploader authorizes against YouTube, reusing the persisted token
// when there is one, and selects the channel to upload to.
func NewYouTubeUploader(ctx context.Context, settings YouTubeSettings, showURL AuthURLHandler, choose ChannelChooser) (*YouTubeUploader, error) {
	secret, err := os.ReadFile(settings.ClientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	config, err := google.ConfigFromJSON(secret, youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	token, err := loadToken(settings.TokenFile)
	if err != nil {
		token, err = authorize(ctx, config, showURL)
		if err != nil {
			return nil, err
		}
		if err := saveToken(settings.TokenFile, token); err != nil {
			return nil, err
		}
	}

	source := oauth2.ReuseTokenSource(token, &persistingTokenSource{
		base: config.TokenSource(ctx, token),
		path: settings.TokenFile,
		last: token.AccessToken,
	})
	service, err := youtube.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	u := &YouTubeUploader{settings: settings, service: service}
	if err := u.selectChannel(ctx, choose); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *YouTubeUploader) selectChannel(ctx context.Context, choose ChannelChooser) error {
	resp, err := u.service.Channels.List([]string{"snippet", "statistics"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("listing channels: %w", err)
	}
	switch {
	case len(resp.Items) == 0:
		return ErrNoChannel
	case len(resp.Items) == 1 || choose == nil:
		u.Channel = resp.Items[0]
	default:
		if u.Channel, err = choose(resp.Items); err != nil {
			return err
		}
	}
	slog.Info("youtube channel selected", "id", u.Channel.Id, "title", u.Channel.Snippet.Title)
	return nil
}

// Upload sends the video with a resumable upload and returns its watch URL.
func (u *YouTubeUploader) Upload(ctx context.Context, req UploadRequest, progress googleapi.ProgressUpdater) (string, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return "", fmt.Errorf("opening video: %w", err)
	}
	defer f.Close()

	call := u.service.Videos.Insert([]string{"snippet", "status"}, BuildVideoMetadata(u.settings, req)).
		Media(f, googleapi.ChunkSize(UploadChunk)).
		Context(ctx)
	if progress != nil {
		call = call.ProgressUpdater(progress)
	}
	video, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("uploading video: %w", err)
	}
	return model.WatchURL(video.Id), nil
}

// BuildVideoMetadata applies the upload limits and defaults to a request.
func BuildVideoMetadata(settings YouTubeSettings, req UploadRequest) *youtube.Video {
	title := model.Snippet(req.Title, MaxTitleRunes)
	if title == "" {
		title = settings.DefaultTitle
	}
	tags := req.Tags
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	privacy := req.Privacy
	if privacy == "" {
		privacy = settings.Privacy
	}
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: req.Description + settings.Footer,
			Tags:        tags,
			CategoryId:  settings.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           string(privacy),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
}

// authorize runs the installed-app flow with a loopback redirect.
func authorize(ctx context.Context, config *oauth2.Config, showURL AuthURLHandler) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting oauth callback listener: %w", err)
	}
	defer listener.Close()
	config.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codes := make(chan string, 1)
	errs := make(chan error, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			errs <- fmt.Errorf("authorization denied: %s", q.Get("error"))
		default:
			codes <- q.Get("code")
		}
		fmt.Fprintln(w, "Authorization complete, you can close this window.")
	})}
	go server.Serve(listener)
	defer server.Close()

	if showURL == nil {
		showURL = func(url string) { fmt.Println(url) }
	}
	showURL(config.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errs:
		return nil, err
	case code := <-codes:
		token, err := config.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchanging authorization code: %w", err)
		}
		return token, nil
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// persistingTokenSource saves refreshed tokens so the next run skips consent.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		if err := saveToken(p.path, token); err != nil {
			slog.Warn("failed to persist refreshed token", "path", p.path, "error", err)
		}
	}
	return token, nil
}
