package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/codebook"
	"github.com/sells-group/skiplogic/internal/config"
	"github.com/sells-group/skiplogic/internal/dataset"
	"github.com/sells-group/skiplogic/internal/rules"
	"github.com/sells-group/skiplogic/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a survey dataset against one or more rule sets",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("validate"); err != nil {
			return err
		}
		data, _ := cmd.Flags().GetString("data")
		sheet, _ := cmd.Flags().GetString("sheet")
		rulePaths, _ := cmd.Flags().GetStringSlice("rules")
		out, _ := cmd.Flags().GetString("out")
		cart, _ := cmd.Flags().GetString("cart")
		merged, _ := cmd.Flags().GetString("merged-rules")

		return runValidate(cfg, validateJob{
			data:      data,
			sheet:     sheet,
			rulePaths: rulePaths,
			out:       out,
			cart:      cart,
			merged:    merged,
		}, os.Stdout)
	},
}

func init() {
	validateCmd.Flags().String("data", "", "dataset to validate (.xlsx or .csv)")
	validateCmd.Flags().String("sheet", "", "dataset sheet name (default first sheet)")
	validateCmd.Flags().StringSlice("rules", nil, "rule set JSON (repeatable, later files win)")
	validateCmd.Flags().String("out", "", "annotated dataset output (.xlsx or .csv)")
	validateCmd.Flags().String("cart", "", "also write the validation cart XLSX for the merged rules")
	validateCmd.Flags().String("merged-rules", "", "also write the merged rule set JSON")
	_ = validateCmd.MarkFlagRequired("data")
	_ = validateCmd.MarkFlagRequired("rules")
	_ = validateCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(validateCmd)
}

type validateJob struct {
	data, sheet string
	rulePaths   []string
	out, cart   string
	merged      string
}

func runValidate(c *config.Config, job validateJob, report io.Writer) error {
	rs, err := loadRuleSets(job.rulePaths)
	if err != nil {
		return err
	}

	tbl, err := readDataset(job.data, job.sheet, c.Validator.ErrorPrefix)
	if err != nil {
		return err
	}

	var opts []validate.Option
	if c.Validator.StrictComparisons {
		opts = append(opts, validate.WithStrictComparisons())
	}
	v := validate.New(tbl, opts...)
	rep, err := v.Apply(rs)
	if err != nil {
		return err
	}

	if err := writeDataset(v.Table(), job.out); err != nil {
		return err
	}
	if job.merged != "" {
		if err := rs.Save(job.merged); err != nil {
			return err
		}
	}
	if job.cart != "" {
		if err := codebook.ExportCart(codebook.CartFromRuleSet(rs), job.cart, 1); err != nil {
			return err
		}
	}

	zap.L().Info("dataset validated",
		zap.String("data", job.data),
		zap.String("out", job.out),
		zap.Int("rows", rep.Rows),
		zap.Int("applied", rep.Applied),
		zap.Int("skipped", rep.Skipped),
	)
	_, err = fmt.Fprintln(report, rep.Summary())
	return eris.Wrap(err, "validate: write report")
}

func loadRuleSets(paths []string) (rules.RuleSet, error) {
	if len(paths) == 0 {
		return rules.RuleSet{}, eris.New("validate: at least one --rules file is required")
	}
	sets := make([]rules.RuleSet, 0, len(paths))
	for _, p := range paths {
		rs, err := rules.Load(p)
		if err != nil {
			return rules.RuleSet{}, err
		}
		if err := rs.Validate(); err != nil {
			return rules.RuleSet{}, eris.Wrapf(err, "validate: rule set %s", p)
		}
		sets = append(sets, *rs)
	}
	return rules.Merge(sets[0], sets[1:]...), nil
}

func readDataset(path, sheet, prefix string) (*dataset.Table, error) {
	opts := []dataset.Option{dataset.WithErrorPrefix(prefix)}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.ReadXLSX(path, dataset.XLSXOptions{SheetName: sheet, Options: opts})
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "validate: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return dataset.ReadCSV(f, dataset.CSVOptions{Options: opts})
	default:
		return nil, eris.Errorf("validate: unsupported dataset format %q", filepath.Ext(path))
	}
}

func writeDataset(t *dataset.Table, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return t.WriteXLSX(path, "validated")
	case ".csv":
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "validate: create dir %s", dir)
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "validate: create %s", path)
		}
		if err := t.WriteCSV(f); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return eris.Wrap(f.Close(), "validate: close output")
	default:
		return eris.Errorf("validate: unsupported output format %q", filepath.Ext(path))
	}
}
