package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/adapters/mime"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/report"
)

func newClassifyCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Classify a single RFC 5322 message read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			return a.invoke(func(logger *zap.Logger, parser *mime.Parser, service *core.TriageService) error {
				email, err := parser.Parse(in)
				if err != nil {
					return err
				}

				if outFormat == report.FormatText {
					_, err := filter.NewCliFilter(service, logger, cmd.OutOrStdout(), a.flags.Verbose).
						ProcessEmail(cmd.Context(), email)
					return err
				}

				result, err := service.AnalyzeEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				return report.Encode(cmd.OutOrStdout(), outFormat, report.NewResult(email, result))
			})
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}
