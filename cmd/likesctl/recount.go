package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mikiasgoitom/likes/internal/app"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/usecase"
)

func recountCmd(e *env) *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "recount",
		Short: "Recompute like counters from the ledger",
		Long: "Recompute every like counter from the ledger and correct the ones that drifted.\n" +
			"With --schedule the reconciliation repeats on a cron schedule until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := app.Open(ctx, e.cfg, e.logger, nil)
			if err != nil {
				return err
			}
			defer res.Close(context.Background())

			recount := usecase.NewRecountUsecase(res.Store, res.Cache, e.logger)
			out := cmd.OutOrStdout()
			if schedule == "" {
				drifts, err := recount.Reconcile(ctx)
				if err != nil {
					return err
				}
				printDrifts(out, drifts)
				return nil
			}

			c, err := app.ScheduleRecount(ctx, schedule, recount, e.logger, func(drifts []entity.CounterDrift) {
				printDrifts(out, drifts)
			})
			if err != nil {
				return err
			}
			e.logger.Infof("recount scheduled with %q", schedule)
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron spec with seconds, e.g. "0 */15 * * * *" or "@every 1h"`)
	return cmd
}

func printDrifts(out io.Writer, drifts []entity.CounterDrift) {
	for _, d := range drifts {
		fmt.Fprintf(out, "%d:%d\t%d -> %d\n", d.Type, d.ID, d.Stored, d.Actual)
	}
	fmt.Fprintf(out, "%d counter(s) corrected\n", len(drifts))
}
