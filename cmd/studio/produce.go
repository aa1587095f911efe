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
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jaycherian/gcp-go-video-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/workflow"
	"github.com/spf13/cobra"
)

var (
	request   commands.ProductionRequest
	noPublish bool
)

var newCmd = &cobra.Command{
	Use:   "new <topic>",
	Short: "Create a project for a topic and produce its video",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := request
		req.Topic = strings.Join(args, " ")
		settings, err := req.Settings()
		if err != nil {
			return err
		}
		production, err := NewProduction(cmd.Context(), !noPublish)
		if err != nil {
			return err
		}
		project, err := state.store.Create(req.Topic, settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s created in %s\n", project.Name, project.Dir)
		return produce(cmd.Context(), cmd, production, project)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <project>",
	Short: "Continue a production from its last completed step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := state.store.Load(args[0])
		if err != nil {
			return err
		}
		if project.Status == model.StatusCompleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s is already completed\n", project.Name)
			return nil
		}
		production, err := NewProduction(cmd.Context(), !noPublish)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Resuming %s from %s: %v\n", project.Name, project.Status, production.Plan(project))
		return produce(cmd.Context(), cmd, production, project)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := state.store.List()
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects yet")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tCREATED\tTOPIC")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Status, p.Created().Format("2006-01-02 15:04"), model.Snippet(p.Topic, 50))
		}
		return w.Flush()
	},
}

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the narration styles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tVOICE\tDESCRIPTION")
		for _, key := range model.StyleKeys(state.config.Styles) {
			s := state.config.Styles[key]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", key, s.Name, s.Voice, s.Description)
		}
		return w.Flush()
	},
}

func init() {
	flags := newCmd.Flags()
	flags.IntVar(&request.WordCount, "words", 0, "script length in words (default script.word_count)")
	flags.StringVar(&request.Style, "style", "", "narration style key, see 'studio styles'")
	flags.StringVar(&request.Voice, "voice", "", "voice: Kore, Charon, Puck or Aoede (default from the style)")
	flags.StringVar(&request.Privacy, "privacy", "", "private, unlisted or public (default youtube.privacy)")
	flags.StringVar(&request.Mode, "mode", "", "slideshow or loop (default video.mode)")
	flags.IntVar(&request.SecondsPerImage, "seconds-per-image", 0, "slideshow pacing (default video.seconds_per_image)")
	flags.StringVar(&request.Category, "category", "", "base video category for loop mode")

	for _, c := range []*cobra.Command{newCmd, resumeCmd} {
		c.Flags().BoolVar(&noPublish, "no-publish", false, "finish without uploading to YouTube")
	}
	rootCmd.AddCommand(newCmd, resumeCmd, listCmd, stylesCmd)
}

// produce runs the workflow for project and reports where it stopped.
func produce(ctx context.Context, cmd *cobra.Command, production *workflow.ProductionWorkflow, project *model.Project) error {
	chCtx := cor.NewBaseContext()
	defer chCtx.Close()
	chCtx.SetContext(ctx)
	chCtx.Add(commands.ProjectParam, project)

	production.Execute(chCtx)

	final, _ := chCtx.Get(commands.ProjectParam).(*model.Project)
	if chCtx.HasErrors() {
		if final != nil {
			fmt.Fprintf(os.Stderr, "Production stopped at %s; run 'studio resume %s' to retry\n", final.Status, final.Name)
		}
		return chCtx.Err()
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project %s: %s\n", final.Name, final.Status)
	if final.Files.Video != "" {
		fmt.Fprintf(out, "Video: %s\n", final.Path(final.Files.Video))
	}
	if final.YouTube.Uploaded {
		fmt.Fprintf(out, "YouTube: %s\n", final.YouTube.URL)
	}
	return nil
}
