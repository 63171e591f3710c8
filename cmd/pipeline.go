package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/skiplogic/internal/candidate"
	"github.com/sells-group/skiplogic/internal/config"
	"github.com/sells-group/skiplogic/internal/docsource"
	"github.com/sells-group/skiplogic/internal/textnorm"
)

// blockResult is a document reduced to the text handed to the extractor.
type blockResult struct {
	Candidates []candidate.SkipCandidate `json:"candidates"`
	Blocks     []candidate.QuestionBlock `json:"blocks"`
	LLMInput   string                    `json:"-"`
}

// buildBlocks runs source -> normalise -> scan -> blocks for one document.
func buildBlocks(ctx context.Context, c *config.Config, src docsource.Extractor, path string) (*blockResult, error) {
	markers := candidate.DefaultMarkers()
	if c.Scan.MarkersFile != "" {
		m, err := candidate.LoadMarkers(c.Scan.MarkersFile)
		if err != nil {
			return nil, err
		}
		markers = m
	}
	scanner, err := candidate.NewScanner(markers)
	if err != nil {
		return nil, err
	}

	raw, err := src.ExtractText(ctx, path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract text from %s", path)
	}
	text := textnorm.NormalizeLines(raw)

	cands := scanner.Scan(text, candidate.ScanOptions{
		ContextLines: c.Scan.ContextLines,
		LookbackQID:  c.Scan.LookbackQID,
	})
	blocks := candidate.BuildQuestionBlocks(candidate.GroupByQID(cands), candidate.BlockOptions{
		IncludeLineNumbers: c.Scan.IncludeLineNumbers,
		MaxLinesPerBlock:   c.Scan.MaxLinesPerBlock,
	})

	zap.L().Info("document scanned",
		zap.String("document", path),
		zap.Int("candidates", len(cands)),
		zap.Int("blocks", len(blocks)),
	)

	return &blockResult{
		Candidates: cands,
		Blocks:     blocks,
		LLMInput:   candidate.BuildLLMInput(blocks, c.Scan.DocTitle),
	}, nil
}

// docStem returns the file name without directory or extension.
func docStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create dir %s", dir)
		}
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
