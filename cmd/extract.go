package main

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/skiplogic/internal/config"
	"github.com/sells-group/skiplogic/internal/docsource"
	"github.com/sells-group/skiplogic/internal/extractor"
	"github.com/sells-group/skiplogic/internal/rules"
	"github.com/sells-group/skiplogic/internal/store"
)

// extractedConfidence is attached to rules that came from an LLM.
const extractedConfidence = 0.8

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract skip rules from one or more questionnaire documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		inputs, _ := cmd.Flags().GetStringSlice("input")
		outDir, _ := cmd.Flags().GetString("out-dir")

		src, err := docsource.NewExtractor(cfg.Source, cfg.Mistral)
		if err != nil {
			return err
		}
		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// One limiter across documents so concurrency does not multiply the rate.
		limiter := extractor.NewLimiter(cfg.Extractor.RequestsPerMinute)
		newExtractor := func(ctx context.Context, hook extractor.RawHook) (extractor.Extractor, error) {
			return extractor.New(ctx, cfg, extractor.WithLimiter(limiter), extractor.WithRawHook(hook))
		}

		return runExtract(ctx, extractJob{
			cfg:          cfg,
			src:          src,
			store:        st,
			newExtractor: newExtractor,
			outDir:       outDir,
		}, inputs)
	},
}

func init() {
	extractCmd.Flags().StringSlice("input", nil, "document to extract (repeatable)")
	extractCmd.Flags().String("out-dir", "output", "directory for schema, rule set and raw response files")
	_ = extractCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(extractCmd)
}

type extractorFactory func(ctx context.Context, hook extractor.RawHook) (extractor.Extractor, error)

type extractJob struct {
	cfg          *config.Config
	src          docsource.Extractor
	store        store.Store
	newExtractor extractorFactory
	outDir       string
}

// runExtract processes documents concurrently. The first failure cancels
// the remaining documents.
func runExtract(ctx context.Context, job extractJob, inputs []string) error {
	if len(inputs) == 0 {
		return eris.New("extract: at least one --input is required")
	}
	stems := make(map[string]string, len(inputs))
	for _, input := range inputs {
		stem := docStem(input)
		if prev, ok := stems[stem]; ok {
			return eris.Errorf("extract: %s and %s would both write %s.* in %s", prev, input, stem, job.outDir)
		}
		stems[stem] = input
	}
	concurrency := job.cfg.Extractor.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64
	for _, input := range inputs {
		g.Go(func() error {
			if err := extractDocument(gctx, job, input); err != nil {
				failed.Add(1)
				return err
			}
			succeeded.Add(1)
			return nil
		})
	}

	err := g.Wait()
	zap.L().Info("extract complete",
		zap.Int("documents", len(inputs)),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return err
}

func extractDocument(ctx context.Context, job extractJob, input string) error {
	log := zap.L().With(zap.String("document", input))

	run, err := job.store.CreateRun(ctx, input)
	if err != nil {
		return eris.Wrapf(err, "extract: create run for %s", input)
	}
	log = log.With(zap.String("run_id", run.ID))

	if err := job.store.UpdateRunStatus(ctx, run.ID, store.RunStatusRunning); err != nil {
		return eris.Wrap(err, "extract: mark run running")
	}

	stats, err := extractToFiles(ctx, job, run.ID, input)
	if err != nil {
		// Record the failure even when the group context is already cancelled.
		if ferr := job.store.FailRun(context.WithoutCancel(ctx), run.ID, err.Error()); ferr != nil {
			log.Error("failed to record run failure", zap.Error(ferr))
		}
		var se *extractor.SchemaError
		if errors.As(err, &se) {
			log.Error("extraction response rejected", zap.Error(se.Err))
		}
		return eris.Wrapf(err, "extract: %s", input)
	}

	if err := job.store.CompleteRun(ctx, run.ID, stats); err != nil {
		return eris.Wrap(err, "extract: complete run")
	}
	log.Info("document extracted",
		zap.Int("candidates", stats.Candidates),
		zap.Int("blocks", stats.Blocks),
		zap.Int("groups", stats.Groups),
	)
	return nil
}

func extractToFiles(ctx context.Context, job extractJob, runID, input string) (store.RunStats, error) {
	var stats store.RunStats
	stem := filepath.Join(job.outDir, docStem(input))

	res, err := buildBlocks(ctx, job.cfg, job.src, input)
	if err != nil {
		return stats, err
	}
	stats.Candidates = len(res.Candidates)
	stats.Blocks = len(res.Blocks)

	if err := writeOutput(stem+".blocks.txt", []byte(res.LLMInput+"\n")); err != nil {
		return stats, err
	}

	schema := &rules.SkipSchema{Type: rules.SkipSchemaType, Groups: []rules.RuleGroup{}}
	if len(res.Blocks) > 0 {
		hook := func(ctx context.Context, raw string) error {
			if err := job.store.SaveRawResponse(ctx, runID, raw); err != nil {
				return err
			}
			return writeOutput(stem+".raw.txt", []byte(raw))
		}
		ext, err := job.newExtractor(ctx, hook)
		if err != nil {
			return stats, err
		}
		out, err := ext.Extract(ctx, res.LLMInput)
		if err != nil {
			return stats, err
		}
		schema = out.Schema
	} else {
		zap.L().Warn("no question blocks found, skipping extraction", zap.String("document", input))
	}
	stats.Groups = len(schema.Groups)

	data, err := rules.MarshalIndent(schema)
	if err != nil {
		return stats, err
	}
	if err := writeOutput(stem+".skip.json", data); err != nil {
		return stats, err
	}

	rs := rules.FromSkipSchema(schema, extractedConfidence)
	if rs.Metadata == nil {
		rs.Metadata = map[string]any{}
	}
	rs.Metadata["document"] = filepath.Base(input)
	rs.Metadata["run_id"] = runID
	if err := rs.Save(stem + ".rules.json"); err != nil {
		return stats, err
	}
	return stats, nil
}
