package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"langid"
)

var detectCmd = &cobra.Command{
	Use:   "detect [flags] [text...]",
	Short: "Detect the language of text",
	Long:  "Detect the language of the arguments joined by spaces, or of standard input when no argument is given.",
	RunE:  detectExecution,
}

func init() {
	detectCmd.Flags().String("format", "text", "output format (text|json)")
	detectCmd.Flags().Bool("scores", false, "list every language's raw score")
}

func detectExecution(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	withScores, err := cmd.Flags().GetBool("scores")
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	eng, h, err := s.engine()
	if err != nil {
		return err
	}
	var res langid.Result
	err = s.timer.Measure("detect", func() error {
		var err error
		res, err = eng.Detect(s.ctx(), h, text)
		return err
	})
	if err != nil {
		return err
	}
	if !withScores {
		res.Scores = nil
	}
	if format == "json" {
		return renderResultJSON(cmd.OutOrStdout(), res)
	}
	renderResultText(cmd.OutOrStdout(), res)
	return nil
}

var (
	codeColor = color.New(color.FgGreen, color.Bold)
	undColor  = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

func renderResultText(out io.Writer, res langid.Result) {
	c := codeColor
	if res.Undetermined() {
		c = undColor
	}
	fmt.Fprintf(out, "%s %.4f\n", c.Sprint(res.Code), res.Confidence)
	for _, sc := range res.Scores {
		fmt.Fprintf(out, "  %s %.4f\n", dimColor.Sprint(sc.Code), sc.Score)
	}
}

func renderResultJSON(out io.Writer, res langid.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
