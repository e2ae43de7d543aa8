package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/reportgen/internal/docxread"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const maxCellText = 72

func newInspectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "Print the styled outline of a .docx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, v, args[0])
		},
	}
	cmd.Flags().Bool("plain", false, "print text without ** / * markers")
	return cmd
}

func runInspect(cmd *cobra.Command, v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	outline, err := docxread.Parse(f)
	if err != nil {
		return err
	}
	plain := v.GetBool("plain")

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Kind", "Style", "Text"})
	for i, b := range outline.Blocks {
		switch b.Kind {
		case docxread.KindTable:
			t.AppendRow(table.Row{i, b.Kind, "", tableSummary(b, plain)})
		default:
			text := b.Markdown()
			if plain {
				text = b.Text()
			}
			if text == "" && b.Style == "" {
				continue
			}
			t.AppendRow(table.Row{i, b.Kind, b.Style, clip(text)})
		}
	}
	t.AppendFooter(table.Row{"", "", "tables", outline.Tables()})
	t.Render()
	return nil
}

// tableSummary shows the size and header row of a table block.
func tableSummary(b docxread.Block, plain bool) string {
	if len(b.Rows) == 0 {
		return "(empty)"
	}
	headers := make([]string, 0, len(b.Rows[0]))
	for _, c := range b.Rows[0] {
		if plain {
			headers = append(headers, c.Text())
		} else {
			headers = append(headers, c.Markdown())
		}
	}
	return clip(fmt.Sprintf("%dx%d | %s", len(b.Rows), len(b.Rows[0]), strings.Join(headers, " | ")))
}

func clip(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxCellText {
		return s
	}
	return string(r[:maxCellText-1]) + "…"
}
