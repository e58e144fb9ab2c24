package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/imap"
	"github.com/mikey/email-triage/internal/adapters/mbox"
	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/report"
)

type importOptions struct {
	format  string
	limit   int
	details bool
	file    bool
	// chunk is the number of messages held in memory per classification round
	chunk int
}

func newImportCmd(a *app) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <mbox>",
		Short: "Classify every message of an mbox archive and report statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			opts.chunk = a.cfg.GetTriage().BatchConcurrency

			return a.invoke(func(logger *zap.Logger, parser *mime.Parser, service *core.TriageService) error {
				source, err := mbox.Open(args[0], logger)
				if err != nil {
					return err
				}
				defer source.Close()

				var filer ports.Filer
				if opts.file {
					imapConfig := a.cfg.GetIMAP()
					imapFiler, err := imap.NewFiler(imap.Options{
						Address:      imapConfig.Address,
						Username:     imapConfig.Username,
						Password:     imapConfig.Password,
						Insecure:     imapConfig.Insecure,
						FolderPrefix: imapConfig.FolderPrefix,
						DryRun:       imapConfig.DryRun,
					}, logger)
					if err != nil {
						return err
					}
					defer imapFiler.Close()
					filer = imapFiler
				}

				batch, err := runImport(cmd.Context(), logger, parser, service, source, filer, opts)
				if err != nil {
					return err
				}
				return report.WriteBatch(cmd.OutOrStdout(), outFormat, batch)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "output", "o", "text", "Output format (text, json, yaml)")
	f.IntVar(&opts.limit, "limit", 0, "Stop after this many messages (0 reads all)")
	f.BoolVar(&opts.details, "details", false, "Include one line per message")
	f.BoolVar(&opts.file, "file-imap", false, "File each message into its IMAP category folder")
	f.Bool("dry-run", false, "Report IMAP filing without connecting")
	f.String("folder-prefix", "Triage", "Parent folder for category folders")
	f.String("imap-address", "", "IMAP server host:port")
	f.String("imap-user", "", "IMAP username")
	f.Int("concurrency", 8, "Messages classified in parallel")
	return cmd
}

// runImport streams source in chunks, classifying and optionally filing each
// chunk before reading the next. Messages that cannot be parsed are counted
// as skipped.
func runImport(
	ctx context.Context,
	logger *zap.Logger,
	parser *mime.Parser,
	service *core.TriageService,
	source ports.MessageSource,
	filer ports.Filer,
	opts *importOptions,
) (report.Batch, error) {
	chunk := opts.chunk
	if chunk <= 0 {
		chunk = 1
	}

	var (
		batch    report.Batch
		verdicts []*core.ClassificationResult
		read     int
	)

	for {
		remaining := 0
		if opts.limit > 0 {
			remaining = opts.limit - read - batch.Skipped
		}
		raws, emails, done, err := nextChunk(logger, parser, source, chunk, remaining, &batch)
		read += len(raws)
		if err != nil {
			return batch, err
		}

		if len(emails) > 0 {
			results, err := service.ClassifyBatch(ctx, emails)
			if err != nil {
				return batch, err
			}
			for i, r := range results {
				verdicts = append(verdicts, r.Result)
				if opts.details {
					batch.Messages = append(batch.Messages, report.NewResult(emails[i], r))
				}
				if filer != nil {
					if err := filer.File(ctx, r.Result.Category, raws[i]); err != nil {
						return batch, err
					}
				}
			}
		}

		if done || (opts.limit > 0 && read+batch.Skipped >= opts.limit) {
			break
		}
	}
	batch.Stats = core.Aggregate(verdicts)

	if counter, ok := filer.(interface{ Counts() map[core.Category]int }); ok {
		batch.Filed = counter.Counts()
	}
	return batch, nil
}

// nextChunk parses up to size messages from source. remaining caps the
// messages read, skipped included, when the import has a limit. done reports
// the end of the archive.
func nextChunk(
	logger *zap.Logger,
	parser *mime.Parser,
	source ports.MessageSource,
	size, remaining int,
	batch *report.Batch,
) (raws [][]byte, emails []*core.Email, done bool, err error) {
	skippedBefore := batch.Skipped
	for len(raws) < size {
		if remaining > 0 && len(raws)+batch.Skipped-skippedBefore >= remaining {
			return raws, emails, false, nil
		}
		raw, err := source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return raws, emails, true, nil
			}
			return raws, emails, false, err
		}
		email, err := parser.ParseBytes(raw)
		if err != nil {
			logger.Warn("Skipping unparseable message", zap.Error(err))
			batch.Skipped++
			continue
		}
		raws = append(raws, raw)
		emails = append(emails, email)
	}
	return raws, emails, false, nil
}
