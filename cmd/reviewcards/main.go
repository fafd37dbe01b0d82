package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pizza-agent/internal/review"
)

const defaultDir = "cards"

func main() {
	rootCmd := &cobra.Command{
		Use:   "reviewcards [dir]",
		Short: "Page through saved evaluation-card files",
		Long: `Loads a directory of evaluation-card JSON files ({question, correctAnswer,
aiAnswer}) and steps through them one at a time.

Keys: (n)ext, (p)revious, (q)uit.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	dir := defaultDir
	if len(args) > 0 {
		dir = args[0]
	}

	files, err := review.LoadDir(dir)
	if err != nil {
		if errors.Is(err, review.ErrDirNotFound) {
			return fmt.Errorf("Directory not found: %s", dir)
		}
		return err
	}
	if len(files) == 0 {
		fmt.Println("No card files found.")
		return nil
	}

	_, err = tea.NewProgram(review.NewModel(files)).Run()
	return err
}
