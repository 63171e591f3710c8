package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/codebook"
)

var codebookCmd = &cobra.Command{
	Use:   "codebook",
	Short: "Derive domain and range rules from a codebook sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("xlsx")
		sheet, _ := cmd.Flags().GetString("sheet")
		rulesOut, _ := cmd.Flags().GetString("rules")
		cartOut, _ := cmd.Flags().GetString("cart")
		entriesOut, _ := cmd.Flags().GetString("entries")
		startCol, _ := cmd.Flags().GetInt("cart-start-col")

		return runCodebook(codebookJob{
			path:       path,
			sheet:      sheet,
			rulesOut:   rulesOut,
			cartOut:    cartOut,
			entriesOut: entriesOut,
			startCol:   startCol,
		})
	},
}

func init() {
	codebookCmd.Flags().String("xlsx", "", "workbook holding the codebook sheet")
	codebookCmd.Flags().String("sheet", "codebook", "codebook sheet name")
	codebookCmd.Flags().String("rules", "", "write the derived rule set JSON here")
	codebookCmd.Flags().String("cart", "", "write the validation cart XLSX here")
	codebookCmd.Flags().String("entries", "", "write the parsed codebook entries JSON here")
	codebookCmd.Flags().Int("cart-start-col", 1, "first cart column (1 = A)")
	_ = codebookCmd.MarkFlagRequired("xlsx")
	rootCmd.AddCommand(codebookCmd)
}

type codebookJob struct {
	path, sheet                   string
	rulesOut, cartOut, entriesOut string
	startCol                      int
}

func runCodebook(job codebookJob) error {
	if job.rulesOut == "" && job.cartOut == "" && job.entriesOut == "" {
		return eris.New("codebook: at least one of --rules, --cart or --entries is required")
	}

	entries, err := codebook.ReadSheet(job.path, job.sheet)
	if err != nil {
		return err
	}

	if job.entriesOut != "" {
		if err := codebook.SaveEntries(entries, job.entriesOut); err != nil {
			return err
		}
	}

	rs := codebook.BuildRuleSet(entries)
	if job.rulesOut != "" {
		if err := rs.Save(job.rulesOut); err != nil {
			return err
		}
	}

	if job.cartOut != "" {
		if err := codebook.ExportCart(codebook.CartFromRuleSet(rs), job.cartOut, job.startCol); err != nil {
			return err
		}
	}

	zap.L().Info("codebook processed",
		zap.Int("items", len(entries)),
		zap.Int("rules", rs.RuleCount()),
	)
	return nil
}
