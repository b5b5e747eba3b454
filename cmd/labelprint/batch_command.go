package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"labelprint/internal/session"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Print every SKU listed in a file, then exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			skus, err := session.ReadBatchFile(path)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return sessionRun(cmd, ctx, func(runCtx context.Context, s *session.Session) error {
				var report session.Report
				if refresh {
					report = s.RefreshBatch(runCtx, name, skus)
				} else {
					report = s.ProcessBatch(runCtx, name, skus)
				}
				if err := runCtx.Err(); err != nil {
					return err
				}
				if report.Failed() > 0 {
					return fmt.Errorf("%d of %d labels failed", report.Failed(), len(report.Outcomes))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch every SKU from Shopify instead of using the cache")
	return cmd
}
