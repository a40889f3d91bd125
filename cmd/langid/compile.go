package main

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"langid/internal/profile"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] -o OUT.lidm",
	Short: "Compile a model into the binary .lidm format",
	Long:  "Load the model selected by --model (or langid.toml) and write it as a compiled model that loads without rebuilding profiles.",
	Args:  cobra.NoArgs,
	RunE:  compileExecution,
}

func init() {
	compileCmd.Flags().StringP("output", "o", "", "output file (conventionally *.lidm)")
}

func compileExecution(cmd *cobra.Command, _ []string) error {
	defer dumpTraceOnPanic()

	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return errors.New("missing -o/--output")
	}
	if filepath.Ext(out) == "" {
		out += filepath.Ext(profile.CompiledModelName)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	store, err := s.store()
	if err != nil {
		return err
	}
	if err := s.timer.Measure("compile", func() error { return profile.Compile(store, out) }); err != nil {
		return err
	}
	s.infof("compiled %s (%d languages, %s) -> %s\n", store.Name(), store.Len(), store.Digest().Short(), out)
	return nil
}
