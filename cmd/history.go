package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/goodnews-cli/internal/story"
	"github.com/spf13/cobra"
)

var (
	histLimit int
	histTop   int
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or show the stories of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("history is disabled: set db_path (goodnews config set db_path ~/.goodnews/history.db)")
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		defer st.Close()

		if len(args) == 1 {
			stories, err := st.RunStories(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Print(story.Summary(stories, histTop))
			return nil
		}

		runs, err := st.ListRuns(cmdContext(cmd), histLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("(no runs)")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("- %s  %s  indicators=%d skipped=%d trends=%d milestones=%d\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Indicators, r.Skipped, r.Trends, r.Milestones)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&histLimit, "limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().IntVar(&histTop, "top", 10, "stories to print when showing a run")
}
