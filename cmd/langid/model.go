package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"langid/internal/ngram"
	"langid/internal/profile"
)

var modelCmd = &cobra.Command{
	Use:   "model [flags]",
	Short: "Describe a model",
	Long:  "List the languages of the selected model, the n-gram counts per order and the model digest.",
	Args:  cobra.NoArgs,
	RunE:  modelExecution,
}

func init() {
	modelCmd.Flags().String("format", "text", "output format (text|json)")
}

type modelLanguage struct {
	Code   string              `json:"code"`
	Name   string              `json:"name,omitempty"`
	Ngrams [ngram.MaxOrder]int `json:"ngrams"`
}

type modelPayload struct {
	Name      string          `json:"name"`
	Path      string          `json:"path"`
	Digest    string          `json:"digest"`
	Languages []modelLanguage `json:"languages"`
}

func modelExecution(cmd *cobra.Command, _ []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
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
	payload := describeStore(store, s.modelPath)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	renderModelText(cmd.OutOrStdout(), payload)
	return nil
}

func describeStore(store *profile.Store, path string) modelPayload {
	payload := modelPayload{
		Name:      store.Name(),
		Path:      path,
		Digest:    store.Digest().String(),
		Languages: make([]modelLanguage, 0, store.Len()),
	}
	store.Each(func(code string, p *profile.LanguageProfile) bool {
		lang := modelLanguage{Code: code, Name: p.Name()}
		for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
			lang.Ngrams[order-1] = p.Len(order)
		}
		payload.Languages = append(payload.Languages, lang)
		return true
	})
	return payload
}

func renderModelText(out io.Writer, m modelPayload) {
	bold := color.New(color.Bold)
	fmt.Fprintf(out, "%s %s\n", bold.Sprint("model: "), m.Name)
	fmt.Fprintf(out, "%s %s\n", bold.Sprint("path:  "), m.Path)
	fmt.Fprintf(out, "%s %s\n", bold.Sprint("digest:"), m.Digest)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-6s %-12s %8s %8s %8s\n", "code", "name", "1-grams", "2-grams", "3-grams")
	for _, l := range m.Languages {
		fmt.Fprintf(out, "%-6s %-12s %8d %8d %8d\n", l.Code, l.Name, l.Ngrams[0], l.Ngrams[1], l.Ngrams[2])
	}
}
