package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/spots/internal/coordinator"
	"github.com/nikbrunner/spots/internal/share"
)

var (
	loginEmail    string
	loginPassword string

	shareNoCopy bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the spots backend",
	Long: `Log in so saves go to your account and categories can be shared.
The password is read from SPOTS_PASSWORD or the first line of stdin
when --password is not given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			password = os.Getenv("SPOTS_PASSWORD")
		}
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		user, err := e.auth.Login(cmd.Context(), strings.TrimSpace(loginEmail), password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the stored session is still valid",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		valid, err := e.auth.Verify(cmd.Context())
		if err != nil {
			return err
		}
		if !valid {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in; saves stay on this machine")
			return nil
		}
		user, err := e.auth.User()
		if err != nil {
			return err
		}
		email := ""
		if user != nil {
			email = user.Email
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <category>",
	Short: "Create a share link for a category",
	Long: `Publish every save in a category as a shared list and print its link.
The link is copied to the clipboard unless --no-copy is set.`,
	Args: cobra.ExactArgs(1),
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

		link, err := e.shares.Create(cmd.Context(), strings.TrimSpace(args[0]), items)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)

		if !shareNoCopy {
			if err := clipboard.WriteAll(link); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not copy to clipboard: %v\n", err)
			}
		}
		return nil
	},
}

var shareReorderCmd = &cobra.Command{
	Use:   "reorder <share-id> <from> <to>",
	Short: "Move a place of a shared list to another position",
	Long: `Move the place numbered <from> on a shared list's map to position <to>.
Places without a location keep following the numbered ones.`,
	Example: `  spots share reorder k3x9 4 1   # make place 4 the first stop`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[1])
		}
		to, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid position %q", args[2])
		}

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		list, err := e.shares.Move(cmd.Context(), args[0], from, to)
		if err != nil {
			return err
		}
		cards, _ := share.Cards(list.Items)
		for _, c := range cards {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", c.Number, c.Title)
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the saves of your account into this machine",
	Long: `Fetch every save of the logged-in account. Saves not stored here are
added; saves already here only gain the details they were missing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		res, err := e.coordinator(nil).Sync(cmd.Context())
		if errors.Is(err, coordinator.ErrOffline) {
			return fmt.Errorf("%w; run spots login first", err)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced: %d added, %d updated, %d unchanged\n", res.Added, res.Updated, res.Unchanged)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = loginCmd.MarkFlagRequired("email")

	shareCmd.Flags().BoolVar(&shareNoCopy, "no-copy", false, "Do not copy the link to the clipboard")

	shareCmd.AddCommand(shareReorderCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd, shareCmd, syncCmd)
}
