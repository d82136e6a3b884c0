package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ragdesk/internal/models"
	"ragdesk/pkg/watcher"
)

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload documents to the backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			bar := getProgressBar(len(args), " Uploading documents...")
			results := orch.UploadBatch(cmd.Context(), args, func(r models.UploadResult) {
				bar.Add(1)
			})
			bar.Finish()
			fmt.Print("\n")

			failed := 0
			for _, r := range results {
				if r.Status == models.UploadSuccess {
					color.Green("✓ %s", r.Filename)
				} else {
					failed++
					color.Red("✗ %s: %s", r.Filename, r.Message)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(results))
			}
			return nil
		},
	}
}

func docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage uploaded documents",
	}
	cmd.AddCommand(docsListCmd())
	cmd.AddCommand(docsSelectCmd())
	cmd.AddCommand(docsDeleteCmd())
	return cmd
}

func docsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List documents known to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			docs := orch.RefreshDocuments(cmd.Context())
			printDocuments(docs, app.state.Selected())
			return nil
		},
	}
}

func docsSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [ids...]",
		Short: "Toggle documents in the query scope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("not a document id: %s", arg)
				}
				app.state.ToggleSelected(id)
			}
			printSelection(app)
			return nil
		},
	}
}

func docsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a document from the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("not a document id: %s", args[0])
			}

			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			if err := orch.DeleteDocument(cmd.Context(), id); err != nil {
				return err
			}
			color.Green("✓ Document %d deleted", id)
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and upload dropped documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			defer app.Close()

			dir := app.config.Upload.WatchDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no watch directory configured; pass one or set upload.watch_dir")
			}

			orch, err := app.orchestrator(nil, nil)
			if err != nil {
				return err
			}

			w, err := watcher.NewWithConfig(watcher.Config{
				Dir:        dir,
				Extensions: app.config.Upload.AllowedExtensions,
				Settle:     secondsDuration(app.config.Upload.SettleSeconds),
				Upload: func(ctx context.Context, path string) {
					results := orch.UploadBatch(ctx, []string{path}, nil)
					for _, r := range results {
						if r.Status == models.UploadSuccess {
							color.Green("✓ %s", r.Filename)
						} else {
							color.Red("✗ %s: %s", r.Filename, r.Message)
						}
					}
				},
			})
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			color.Cyan("Watching %s (Ctrl-C to stop)", dir)
			return w.Run(ctx)
		},
	}
}
