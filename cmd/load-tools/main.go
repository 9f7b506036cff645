package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"toolshelf/internal/app"
	"toolshelf/internal/config"
	"toolshelf/internal/ingest"
	"toolshelf/internal/telemetry"
)

type options struct {
	file    string
	backend string
	dryRun  bool
}

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "load-tools --file tools.csv",
		Short:        "Load a CSV, JSON or XLSX file of tools into the catalog",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if opts.backend != "" {
				cfg.StoreBackend = opts.backend
			}
			if opts.dryRun {
				cfg.StoreBackend = config.BackendMemory
			}
			report, err := load(cmd.Context(), cfg, opts.file)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to a .csv, .json or .xlsx file")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "store backend (auto, mongo, postgres, memory)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and validate against an empty in-memory store")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func load(ctx context.Context, cfg config.Config, path string) (*ingest.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	contentType, body, err := uploadForm(filepath.Base(path), content)
	if err != nil {
		return nil, err
	}

	// Local loads sign their own upload; ADMIN_SECRET only gates remote callers.
	cfg.AdminSecret = uuid.NewString()

	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			logger.Warn("store close failed", zap.Error(err))
		}
	}()

	report, err := application.Ingester.Ingest(ctx, ingest.Upload{
		Secret:      cfg.AdminSecret,
		ContentType: contentType,
		Body:        body,
	})
	if err != nil {
		ierr := ingest.AsError(err)
		for _, row := range ierr.Rows {
			logger.Warn("invalid row", zap.String("problem", row))
		}
		return nil, ierr
	}
	return report, nil
}

// uploadForm wraps the file in the same multipart envelope the HTTP endpoint
// receives so it goes through the full pipeline.
func uploadForm(name string, content []byte) (string, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", nil, err
	}
	if _, err := part.Write(content); err != nil {
		return "", nil, err
	}
	if err := writer.Close(); err != nil {
		return "", nil, err
	}
	return writer.FormDataContentType(), buf.Bytes(), nil
}
