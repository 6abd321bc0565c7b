package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nikbrunner/spots/internal/culler"
)

var (
	cullRemove      bool
	cullConcurrency int
	cullTimeout     time.Duration
)

var cullCmd = &cobra.Command{
	Use:   "cull",
	Short: "Find saves whose posts are gone",
	Long: `Check the link of every save and list the posts that no longer exist.
A 404 from an excluded domain (cullExcludeDomains in the config) is
reported as possibly private instead of dead, since those hosts hide
posts behind a login.

With --remove the dead saves are deleted, on the backend too when
logged in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		items, err := e.store.List()
		if err != nil {
			return err
		}

		errOut := cmd.ErrOrStderr()
		checker := culler.NewChecker(culler.NewCheckerParams{
			Concurrency:    cullConcurrency,
			Timeout:        cullTimeout,
			ExcludeDomains: e.cfg.CullExcludeDomains,
			OnProgress: func(completed, total int) {
				fmt.Fprintf(errOut, "\rChecking %d/%d", completed, total)
			},
			Logger: logger.Named("culler"),
		})

		results, err := checker.Check(cmd.Context(), items)
		if len(items) > 0 {
			fmt.Fprintln(errOut)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		dead := culler.Filter(results, culler.Dead)
		for _, r := range dead {
			fmt.Fprintf(out, "dead         %d  %s  %s\n", r.StatusCode, r.Item.DisplayName(), r.Item.URL)
		}
		for _, r := range culler.Filter(results, culler.Unreachable) {
			fmt.Fprintf(out, "unreachable  %s  %s  %s\n", r.Error, r.Item.DisplayName(), r.Item.URL)
		}
		fmt.Fprintf(out, "%d checked, %d dead\n", len(results), len(dead))

		if !cullRemove {
			return nil
		}
		coord := e.coordinator(nil)
		removed := 0
		for _, r := range dead {
			if err := coord.Remove(cmd.Context(), r.Item.ID); err != nil {
				logger.Warn("remove dead save", zap.String("id", r.Item.ID), zap.Error(err))
				continue
			}
			removed++
		}
		fmt.Fprintf(out, "Removed %d dead saves\n", removed)
		return nil
	},
}

func init() {
	cullCmd.Flags().BoolVar(&cullRemove, "remove", false, "Delete dead saves")
	cullCmd.Flags().IntVar(&cullConcurrency, "concurrency", 8, "Parallel checks")
	cullCmd.Flags().DurationVar(&cullTimeout, "timeout", 10*time.Second, "Per-request timeout")
	rootCmd.AddCommand(cullCmd)
}
