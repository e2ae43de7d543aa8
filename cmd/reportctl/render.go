package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/reportgen/internal/config"
	"github.com/dgallion1/reportgen/internal/parser"
	"github.com/dgallion1/reportgen/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input.json|input.md>",
		Short: "Render a document description or markdown file to .docx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, v, args[0])
		},
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output path (default: input name with .docx)")
	f.String("title", "", "override the document title")
	f.String("subtitle", "", "override the subtitle")
	f.String("author", "", "author line")
	f.String("date", "", "date line")
	f.Bool("no-toc", false, "omit the table of contents")
	f.String("logo", "", "footer logo image file")
	f.String("brand", "", "brand profile YAML")
	return cmd
}

func runRender(cmd *cobra.Command, v *viper.Viper, input string) error {
	if !parser.IsSupportedExtension(input) {
		return fmt.Errorf("unsupported input %q: want .json, .md, .markdown or .txt", input)
	}
	p, err := parser.ForFile(input)
	if err != nil {
		return err
	}

	popts := parser.Options{
		Title:    v.GetString("title"),
		Subtitle: v.GetString("subtitle"),
		Author:   v.GetString("author"),
		Date:     v.GetString("date"),
	}
	if v.GetBool("no-toc") {
		off := false
		popts.IncludeTOC = &off
	}
	if path := v.GetString("logo"); path != "" {
		logo, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read logo: %w", err)
		}
		popts.LogoBase64 = base64.StdEncoding.EncodeToString(logo)
	}

	ropts, err := config.LoadOptions(v.GetString("brand"))
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	doc, err := p.Parse(f, popts)
	if err != nil {
		return err
	}

	log := cliLogger(v, cmd.ErrOrStderr())
	asm := pipeline.NewAssembler(ropts, "report", log)
	art, err := asm.Assemble(cmd.Context(), doc, pipeline.NewRecord("cli"))
	if err != nil {
		return err
	}

	out := v.GetString("output")
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + ".docx"
	}
	if err := os.WriteFile(out, art.Data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes, %d tables, %d figures, %d charts)\n",
		out, len(art.Data), art.Tables, art.Figures, art.Charts)
	return nil
}
