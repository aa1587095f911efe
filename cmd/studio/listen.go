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
	"log/slog"

	"github.com/jaycherian/gcp-go-video-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-video-studio/internal/core/workflow"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Produce videos requested on the Pub/Sub trigger subscription",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		production, err := NewProduction(cmd.Context(), !noPublish)
		if err != nil {
			return err
		}
		if err := SetupListeners(cmd.Context(), production); err != nil {
			return err
		}
		<-cmd.Context().Done()
		slog.Info("listener stopped")
		return nil
	},
}

func init() {
	listenCmd.Flags().BoolVar(&noPublish, "no-publish", false, "finish without uploading to YouTube")
	rootCmd.AddCommand(listenCmd)
}

// SetupListeners attaches the production listener to the trigger
// subscription and starts receiving in the background.
func SetupListeners(ctx context.Context, production *workflow.ProductionWorkflow) error {
	listener, ok := state.cloud.PubSubListeners[cloud.SubscriptionProductions]
	if !ok {
		return fmt.Errorf("topic_subscriptions.%s is not configured", cloud.SubscriptionProductions)
	}
	listener.SetCommand(workflow.NewProductionListener(state.store, production))
	listener.Listen(ctx)
	return nil
}
