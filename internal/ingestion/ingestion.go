package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/voicetrade/internal/domain/dto"
	"github.com/guttosm/voicetrade/internal/domain/models"
	"github.com/guttosm/voicetrade/internal/logger"
	"github.com/guttosm/voicetrade/internal/service"
)

const maxParallelFiles = 8

// Capturer records one ticket. *service.TradeStore satisfies it.
type Capturer interface {
	Capture(ctx context.Context, form dto.TradeForm) (*models.Trade, error)
}

// Rejection is a ticket row that failed validation.
type Rejection struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Messages []string `json:"messages"`
}

// Report summarizes an import run.
type Report struct {
	Files       int         `json:"files"`
	Rows        int         `json:"rows"`
	Captured    []string    `json:"captured"`
	Rejected    []Rejection `json:"rejected"`
	Unpersisted int         `json:"unpersisted"`
}

// ImportFiles reads ticket files and captures every row through c.
//
// Behavior:
//   - Validates that every file exists before doing any work.
//   - Parses files concurrently, up to parallel at a time (0 = min(8, NumCPU)).
//   - If any file fails to parse, cancels the rest and captures nothing.
//   - Captures rows sequentially in argument order, then row order, so ids
//     follow the order of the input.
//   - A row that fails validation is reported and does not stop the run.
//
// Returns:
//   - *Report: ids captured and rows rejected.
//   - error: first structural error, or a capture failure other than validation.
func ImportFiles(ctx context.Context, files []string, c Capturer, parallel int) (*Report, error) {
	var missing []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, f)
			} else {
				return nil, fmt.Errorf("stat failed for %s: %w", f, err)
			}
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing ticket files: %s", strings.Join(missing, ", "))
	}

	maxParallel := maxParallelFiles
	if parallel > 0 {
		if parallel < maxParallel {
			maxParallel = parallel
		}
	} else if n := runtime.NumCPU(); n < maxParallel {
		maxParallel = n
	}

	logger.L().Info().Int("files", len(files)).Int("max_parallel", maxParallel).Msg("import start")

	// errgroup will cancel siblings on first error.
	parsed := make([][]Row, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(file)
			rows, err := ParseFile(gctx, file)
			if err != nil {
				logger.L().Error().Str("file", base).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", file, err)
			}
			parsed[i] = rows
			logger.L().Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).
				Int("rows", len(rows)).Dur("elapsed", time.Since(start)).Msg("file parsed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: len(files)}
	for i, rows := range parsed {
		for _, row := range rows {
			report.Rows++
			trade, err := c.Capture(ctx, row.Form)

			var verr *service.ValidationError
			var perr *service.PersistenceError
			switch {
			case err == nil:
			case errors.As(err, &verr):
				report.Rejected = append(report.Rejected, Rejection{
					File:     files[i],
					Line:     row.Line,
					Messages: verr.Messages,
				})
				continue
			case errors.As(err, &perr) && trade != nil:
				report.Unpersisted++
			default:
				return report, fmt.Errorf("file %s line %d: %w", files[i], row.Line, err)
			}
			report.Captured = append(report.Captured, trade.ID)
		}
	}

	logger.L().Info().
		Int("rows", report.Rows).
		Int("captured", len(report.Captured)).
		Int("rejected", len(report.Rejected)).
		Msg("import done")

	return report, nil
}
