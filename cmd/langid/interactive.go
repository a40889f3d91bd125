package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"langid"
	"langid/internal/ui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Type text and watch the scores change",
	Args:  cobra.NoArgs,
	RunE:  interactiveExecution,
}

func interactiveExecution(cmd *cobra.Command, _ []string) error {
	defer dumpTraceOnPanic()

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	eng, h, err := s.engine()
	if err != nil {
		return err
	}
	info, err := eng.Model(h)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("langid %s · model %s", langid.GetVersion(), info.Name)
	model := ui.NewInteractiveModel(title, info.Names, func(text string) (langid.Result, error) {
		return eng.Detect(s.ctx(), h, text)
	})
	program := tea.NewProgram(model,
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(s.ctx()),
	)
	_, err = program.Run()
	return err
}
