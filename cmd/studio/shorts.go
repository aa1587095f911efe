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

package main

import (
	"fmt"
	"path/filepath"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/media"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/workflow"
	"github.com/spf13/cobra"
)

var shortsFlags struct {
	count  int
	method string
	output string
}

var shortsCmd = &cobra.Command{
	Use:   "shorts <youtube-url>",
	Short: "Cut vertical shorts from the most viral moments of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := state.config
		count := shortsFlags.count
		if count == 0 {
			count = config.Shorts.Count
		}
		method := config.Shorts.Method
		if shortsFlags.method != "" {
			m, err := model.ParseVerticalMethod(shortsFlags.method)
			if err != nil {
				return err
			}
			method = m
		}
		output := shortsFlags.output
		if output == "" {
			output = config.Shorts.OutputDir
		}

		job, err := commands.NewShortsJob(output, args[0], count, method)
		if err != nil {
			return err
		}
		if err := job.Prepare(); err != nil {
			return err
		}
		if err := InitState(cmd.Context()); err != nil {
			return err
		}

		encoder := workflow.NewEncoder(config)
		source := media.NewDownloader(media.ExecRunner{}, config.Tools.YtDlp)
		pipeline := workflow.NewShortsPipeline(config, state.cloud, encoder, source)

		chCtx := cor.NewBaseContext()
		defer chCtx.Close()
		chCtx.SetContext(cmd.Context())
		chCtx.Add(commands.ShortsJobParam, job)
		pipeline.Execute(chCtx)
		if chCtx.HasErrors() {
			return chCtx.Err()
		}

		shorts, _ := chCtx.Get(commands.ShortsParam).([]*model.ShortClip)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d shorts written to %s\n", len(shorts), job.ShortsDir())
		for _, s := range shorts {
			fmt.Fprintf(out, "  %s  %s\n", filepath.Base(s.File), s.Title)
		}
		return nil
	},
}

func init() {
	flags := shortsCmd.Flags()
	flags.IntVar(&shortsFlags.count, "count", 0, "number of shorts (default shorts.count)")
	flags.StringVar(&shortsFlags.method, "method", "", "crop, blur or smart (default shorts.method)")
	flags.StringVar(&shortsFlags.output, "output", "", "output directory (default shorts.output_dir)")
	rootCmd.AddCommand(shortsCmd)
}
