package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voiceq/internal/tui/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored suite and load runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openHistory()
		if store == nil {
			return errors.New("history database unavailable")
		}
		defer store.Close()

		items, err := store.List(viper.GetInt("limit"))
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Printf("No runs recorded in %s\n", store.Path())
			return nil
		}

		m := history.NewModel(items)
		if !viper.GetBool("interactive") {
			fmt.Println(m.Table.View())
			return nil
		}
		_, err = tea.NewProgram(m).Run()
		return err
	},
}

func init() {
	f := historyCmd.Flags()
	f.IntP("limit", "l", 20, "Number of runs to show (0 = all)")
	f.BoolP("interactive", "i", false, "Browse runs in an interactive table")
}
