// Package batch generates profile pictures for many country codes.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hightemp/flagpic/internal/compose"
	"github.com/hightemp/flagpic/internal/config"
	"github.com/hightemp/flagpic/internal/countries"
	"github.com/hightemp/flagpic/internal/countryinfo"
	"github.com/hightemp/flagpic/internal/flagstore"
	"github.com/hightemp/flagpic/internal/fsutil"
	"github.com/hightemp/flagpic/internal/logger"
	"github.com/hightemp/flagpic/internal/output"
)

// Generator composes one profile picture per country code.
type Generator struct {
	info        countryinfo.Provider
	store       flagstore.Store
	composer    *compose.Composer
	outDir      string
	concurrency int
	onDone      func(*output.GenerateResult)
}

// Option configures a Generator.
type Option func(*Generator)

// WithConcurrency sets how many codes are processed at once.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n < 1 {
			n = 1
		}
		if n > config.MaxConcurrency {
			n = config.MaxConcurrency
		}
		g.concurrency = n
	}
}

// WithProgress registers a callback run after each code finishes. Calls are
// serialized.
func WithProgress(fn func(*output.GenerateResult)) Option {
	return func(g *Generator) { g.onDone = fn }
}

// NewGenerator creates a generator writing <outDir>/<code>.png files.
func NewGenerator(info countryinfo.Provider, store flagstore.Store, composer *compose.Composer, outDir string, opts ...Option) *Generator {
	g := &Generator{
		info:        info,
		store:       store,
		composer:    composer,
		outDir:      outDir,
		concurrency: config.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate processes codes concurrently. Results keep the input order; a failing
// code is recorded in its result and does not stop the others. The returned error
// is set only when the output directory cannot be created or ctx is cancelled.
func (g *Generator) Generate(ctx context.Context, codes []string) (*output.BatchResult, error) {
	if err := config.EnsureDir(g.outDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	results := make([]*output.GenerateResult, len(codes))
	var mu sync.Mutex

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)

	for i, code := range codes {
		i, code := i, code
		eg.Go(func() error {
			result := g.generateOne(ctx, code)
			results[i] = result

			if g.onDone != nil {
				mu.Lock()
				g.onDone(result)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	batch := &output.BatchResult{Results: results}
	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

func (g *Generator) generateOne(ctx context.Context, code string) *output.GenerateResult {
	result := &output.GenerateResult{Code: strings.ToUpper(strings.TrimSpace(code))}
	log := logger.With("code", result.Code)

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	info, err := g.info.Lookup(result.Code)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Name = info.Name

	match, err := flagstore.Resolve(ctx, g.store, info)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Flag = match.Candidate.ID
	result.Score = match.Score

	data, err := g.store.Open(ctx, match.Candidate.ID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	img, err := g.composer.ComposeBytes(data)
	if err != nil {
		result.Error = fmt.Sprintf("flag %s: %v", match.Candidate.ID, err)
		return result
	}

	var buf bytes.Buffer
	if err := compose.EncodePNG(&buf, img); err != nil {
		result.Error = err.Error()
		return result
	}

	name := strings.ToLower(info.Code) + ".png"
	if err := fsutil.WriteFileAtomic(g.outDir, name, buf.Bytes()); err != nil {
		result.Error = fmt.Sprintf("write %s: %v", name, err)
		return result
	}
	result.Output = filepath.Join(g.outDir, name)

	log.Debug("generated profile picture", "flag", result.Flag, "score", result.Score, "output", result.Output)
	return result
}

// ReadCodes reads a code list (one per line, '#' comments) from r. Duplicates are
// dropped, keeping the first occurrence. Malformed lines are logged and skipped.
func ReadCodes(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	codes, err := countries.LoadFromFile(string(data))
	if err != nil {
		logger.Warn("some country codes were skipped", "error", err)
	}

	seen := make(map[string]bool, len(codes))
	out := codes[:0]
	for _, c := range codes {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
