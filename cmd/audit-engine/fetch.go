// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/audit-engine/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download a budget report PDF into the reports directory",
	Long: `Fetch downloads a published budget implementation review report and
stores it under the reports directory. A report already on disk is
never re-downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("dir", "reports", "directory to store downloaded reports")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: 5 * time.Minute}
	path, _, err := fetch.Report(ctx, client, args[0], dir, os.Stderr)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
