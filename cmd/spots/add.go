package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/spots/internal/capture"
)

var (
	addCategory string
	addName     string
	addDate     string
	addAddress  string

	fetchControlURL string
	fetchTimeout    time.Duration
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Save a post from its link",
	Example: `  spots add https://www.instagram.com/p/abc/ --category Coffee
  spots add https://www.tiktok.com/@eats/video/123 --date 2025-07-04`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := capture.ParsePostURL(args[0])
		if err != nil {
			return err
		}
		post.Category = addCategory
		post.Name = addName
		post.EventDate = addDate
		post.Address = addAddress

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		res := e.coordinator(nil).Save(cmd.Context(), *post)
		if !res.OK() {
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", res.Item.DisplayName(), res.Path)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Render a page in a headless browser and save its posts",
	Long: `Load a profile, feed or post page in a headless browser, let the page
build its content, and save every Instagram or TikTok post found on it.

Use --browser to drive an already running browser through its DevTools
endpoint instead of launching one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		fetcher := capture.NewPageFetcher(capture.NewPageFetcherParams{
			ControlURL: fetchControlURL,
			Timeout:    fetchTimeout,
			Logger:     logger.Named("fetcher"),
		})
		posts, err := fetcher.Fetch(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetch %s: %w", args[0], err)
		}

		saved := saveAll(cmd.Context(), e.coordinator(nil), posts)
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d posts, saved %d\n", len(posts), saved)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Event or venue name")
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "Event date (YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&addAddress, "address", "a", "", "Address")

	fetchCmd.Flags().StringVar(&fetchControlURL, "browser", "", "DevTools URL of a running browser")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "Page load timeout")

	rootCmd.AddCommand(addCmd, fetchCmd)
}
