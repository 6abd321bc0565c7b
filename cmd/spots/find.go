package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/spots/internal/model"
	"github.com/nikbrunner/spots/internal/picker"
	"github.com/nikbrunner/spots/internal/search"
)

var findPrint bool

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy find a save and open it",
	Long: `Fuzzy search saves by name. A single match opens directly; several open
a picker. The selected post opens in the browser, or its URL is printed
with --print.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()

		items, err := e.store.List()
		if err != nil {
			return err
		}

		results := search.FuzzySearchItems(items, query)
		if len(results) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No saves found for '%s'\n", query)
			return nil
		}

		var selected model.SavedItem
		if len(results) == 1 {
			selected = results[0].Item
		} else {
			final, err := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			p := final.(picker.Picker)
			if p.Cancelled() {
				return nil
			}
			var ok bool
			if selected, ok = p.SelectedItem(); !ok {
				return nil
			}
		}

		if findPrint {
			fmt.Fprintln(cmd.OutOrStdout(), selected.URL)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", selected.DisplayName())
		openURL(selected.URL)
		return nil
	},
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func init() {
	findCmd.Flags().BoolVarP(&findPrint, "print", "p", false, "Print the URL instead of opening it")
	rootCmd.AddCommand(findCmd)
}
