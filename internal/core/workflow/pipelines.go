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

package workflow

import (
	"context"
	"io"
	"text/template"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/narration"
)

// NewEncoder builds the ffmpeg wrapper described by config.
func NewEncoder(config *cloud.Config) *media.Encoder {
	return media.NewEncoder(media.ExecRunner{}, media.EncoderConfig{
		FFmpegPath:  config.Tools.FFmpeg,
		FFprobePath: config.Tools.FFprobe,
		SampleRate:  config.Audio.SampleRate,
		Channels:    config.Audio.Channels,
		Video:       config.Video.Encode,
	})
}

// NewNarrator builds the long text narrator over the configured synthesizer
// and concatenation method.
func NewNarrator(config *cloud.Config, synth narration.Synthesizer, encoder *media.Encoder) *narration.Narrator {
	format := narration.Format{SampleRate: config.Audio.SampleRate, Channels: config.Audio.Channels}
	var concat narration.Concatenator = encoder
	if config.Audio.Concat == cloud.ConcatNative {
		concat = &narration.NativeConcatenator{Format: format}
	}
	return narration.NewNarrator(synth, concat, config.Audio.MaxChars, format)
}

func mustParse(name, src string) *template.Template {
	t, err := template.New(name).Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// NewProductionPipeline wires the production commands to the service
// clients. uploader may be nil to finish projects without publishing;
// progress receives the upload progress bar.
func NewProductionPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	store commands.ProjectStore,
	uploader commands.Uploader,
	progress io.Writer) *ProductionWorkflow {

	encoder := NewEncoder(config)
	narrator := NewNarrator(config, serviceClients.Synthesizer, encoder)

	script := cor.NewBaseChain("script")
	script.AddCommand(commands.NewScriptGenerator("generate-script", config,
		serviceClients.AgentModels[cloud.ModelScript], mustParse("script-template", config.PromptTemplates.Script)))
	script.AddCommand(commands.NewScriptJsonToStruct("convert-script"))

	audio := cor.NewBaseChain("audio")
	audio.AddCommand(commands.NewScriptLoader("load-script"))
	audio.AddCommand(commands.NewNarrationSynthesizer("synthesize-narration", narrator, config.Styles))

	images := cor.NewBaseChain("images")
	images.AddCommand(commands.NewScriptLoader("load-script"))
	images.AddCommand(commands.NewImagePromptBuilder("generate-image-prompts",
		serviceClients.AgentModels[cloud.ModelPrompts], mustParse("image-prompt-template", config.PromptTemplates.ImagePrompt),
		config.Application.ThreadPoolSize, config.Video.SecondsPerImage))
	images.AddCommand(commands.NewImageGenerator("generate-images", serviceClients.ImageModel))

	var fetch commands.ObjectFetcher
	if serviceClients.StorageClient != nil {
		fetch = func(ctx context.Context, obj cloud.GCSObject) (string, error) {
			return cloud.DownloadToTemp(ctx, serviceClients.StorageClient, obj, "base-video-")
		}
	}
	video := commands.NewVideoRenderer("render-video", encoder, config.Video, fetch)

	steps := ProductionSteps{
		Script:  script,
		Audio:   audio,
		Images:  images,
		Video:   video,
		Archive: NewArchiveChain(config, serviceClients),
	}
	if uploader != nil {
		steps.Upload = commands.NewYouTubeUpload("publish-video", uploader, config.YouTube.Privacy, progress)
	}
	return NewProductionWorkflow("production-workflow", store, steps, config.Video.Mode)
}

// NewArchiveChain copies finished productions to the archive bucket and
// records them in BigQuery. It returns nil when neither is configured.
func NewArchiveChain(config *cloud.Config, serviceClients *cloud.ServiceClients) cor.Chain {
	chain := cor.NewBaseChain("archive")
	chain.ContinueOnFailure(true)

	if serviceClients.StorageClient != nil && config.Storage.ArchiveBucket != "" {
		upload := func(ctx context.Context, bucket, name, local string) (cloud.GCSObject, error) {
			return cloud.UploadFile(ctx, serviceClients.StorageClient, bucket, name, local)
		}
		chain.AddCommand(commands.NewGCSFileUpload("archive-production", upload,
			config.Storage.ArchiveBucket, config.Storage.ArchivePrefix))
	}
	if serviceClients.BiqQueryClient != nil && config.BigQueryDataSource.Enabled() {
		inserter := serviceClients.BiqQueryClient.
			Dataset(config.BigQueryDataSource.DatasetName).
			Table(config.BigQueryDataSource.ProductionTable).
			Inserter()
		chain.AddCommand(commands.NewProductionPersistToBigQuery("record-production", inserter))
	}
	if chain.Len() == 0 {
		return nil
	}
	return chain
}

// NewProductionListener turns a trigger message under cor.CtxIn into a new
// project and produces it.
func NewProductionListener(store commands.ProjectStore, production *ProductionWorkflow) cor.Chain {
	chain := cor.NewBaseChain("production-listener")
	chain.AddCommand(commands.NewProductionRequestReader("read-production-request", store))
	chain.AddCommand(production)
	return chain
}

// NewShortsPipeline extracts vertical shorts from the job under
// commands.ShortsJobParam.
func NewShortsPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients, encoder commands.VerticalEncoder, source commands.ClipSource) cor.Chain {
	chain := cor.NewBaseChain("shorts-workflow")
	chain.AddCommand(commands.NewTranscriptFetcher("fetch-transcript", source, config.Shorts.Languages))
	chain.AddCommand(commands.NewViralMomentFinder("find-viral-moments",
		serviceClients.AgentModels[cloud.ModelMoments], mustParse("moments-template", config.PromptTemplates.Moments)))
	chain.AddCommand(commands.NewClipDownloader("download-clips", source))
	chain.AddCommand(commands.NewVerticalConverter("convert-vertical", encoder,
		serviceClients.AgentModels[cloud.ModelVision], config.PromptTemplates.Subject, config.Shorts.Frames))
	chain.AddCommand(commands.NewShortsMetadataWriter("write-metadata"))
	if !config.Shorts.KeepClips {
		chain.AddCommand(commands.NewClipCleanup("remove-clips"))
	}
	return chain
}
