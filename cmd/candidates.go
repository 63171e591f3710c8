package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/config"
	"github.com/sells-group/skiplogic/internal/docsource"
	"github.com/sells-group/skiplogic/internal/rules"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Scan a document for skip-logic candidates and write the LLM input blocks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("candidates"); err != nil {
			return err
		}
		input, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("out")
		jsonOut, _ := cmd.Flags().GetString("json")
		textOut, _ := cmd.Flags().GetString("text-out")

		src, err := docsource.NewExtractor(cfg.Source, cfg.Mistral)
		if err != nil {
			return err
		}
		if textOut != "" {
			src = &teeSource{Extractor: src, path: textOut}
		}

		var w io.Writer = os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return eris.Wrapf(err, "candidates: create %s", out)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		return runCandidates(cmd.Context(), cfg, src, input, w, jsonOut)
	},
}

func init() {
	candidatesCmd.Flags().String("input", "", "document to scan (.pdf or .txt)")
	candidatesCmd.Flags().String("out", "", "write the LLM input blocks here (default stdout)")
	candidatesCmd.Flags().String("json", "", "also write candidates and blocks as JSON")
	candidatesCmd.Flags().String("text-out", "", "also write the extracted page text")
	_ = candidatesCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidates(ctx context.Context, c *config.Config, src docsource.Extractor, input string, w io.Writer, jsonOut string) error {
	res, err := buildBlocks(ctx, c, src, input)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, res.LLMInput+"\n"); err != nil {
		return eris.Wrap(err, "candidates: write blocks")
	}

	if jsonOut != "" {
		data, err := rules.MarshalIndent(res)
		if err != nil {
			return err
		}
		if err := writeOutput(jsonOut, data); err != nil {
			return eris.Wrap(err, "candidates")
		}
	}

	zap.L().Info("candidates written",
		zap.String("document", input),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("blocks", len(res.Blocks)),
	)
	return nil
}

// teeSource saves the extracted text before handing it on.
type teeSource struct {
	docsource.Extractor
	path string
}

func (t *teeSource) ExtractText(ctx context.Context, path string) (string, error) {
	text, err := t.Extractor.ExtractText(ctx, path)
	if err != nil {
		return "", err
	}
	if err := docsource.WriteText(t.path, text); err != nil {
		return "", err
	}
	return text, nil
}
