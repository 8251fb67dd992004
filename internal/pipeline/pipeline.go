// Package pipeline runs the full update: parse the three sources, align the
// transcription and historical sets against the scraped listing, merge under
// the priority table, and write the output files. Stages run strictly in
// order; matching needs all three parsed sets materialized first.
package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/gbdata/gb2260/internal/dataset"
	"github.com/gbdata/gb2260/internal/fetch"
	"github.com/gbdata/gb2260/internal/match"
	"github.com/gbdata/gb2260/internal/merge"
	"github.com/gbdata/gb2260/internal/parse"
	"github.com/gbdata/gb2260/pkg/authority"
	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// Input file names under the data directory.
const (
	standardFile   = "gbt_2260-2007.csv"
	supplementFile = "gbt_2260-2007_sup.csv"
	historicalFile = "citas.csv"
	extraFile      = "extra.csv"
)

// Options configure one run.
type Options struct {
	Version  string // publication date of the scraped listing
	UseCache bool   // read the cached snapshot instead of fetching
	DataDir  string // directory holding the input CSVs
	CacheDir string // directory holding cached HTML snapshots
	OutDir   string // directory receiving the output files
	Table    *authority.Table
}

// Summary reports what a run produced.
type Summary struct {
	Version   string
	Records   int
	Conflicts int
	Unmatched int
}

// Pipeline is the one-shot update run.
type Pipeline struct {
	opts    Options
	fetcher *fetch.Fetcher
}

// New creates a Pipeline. A nil authority table falls back to the default
// priority policy.
func New(opts Options) *Pipeline {
	if opts.Version == "" {
		opts.Version = sources.DefaultVersion
	}
	if opts.Table == nil {
		opts.Table = authority.Default()
	}
	return &Pipeline{opts: opts, fetcher: fetch.New(opts.CacheDir)}
}

// NewWithFetcher creates a Pipeline with a custom fetcher, used by tests.
func NewWithFetcher(opts Options, fetcher *fetch.Fetcher) *Pipeline {
	p := New(opts)
	p.fetcher = fetcher
	return p
}

// Run executes the pipeline. Conflicts and unmatched records do not fail
// the run; they are written to the audit and surfaced in the summary so the
// caller can decide how loudly to complain.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	log := logging.FromContext(ctx)

	// Source 1: the scraped listing, the authoritative set.
	body, err := p.fetcher.Fetch(ctx, p.opts.Version, p.opts.UseCache)
	if err != nil {
		return nil, err
	}
	scraped, err := parse.HTML(ctx, bytes.NewReader(body), p.opts.Version)
	if err != nil {
		return nil, err
	}
	log.Info().Int("records", scraped.Len()).Str("version", p.opts.Version).Msg("parsed scraped listing")

	// Source 2: the standard transcription plus its supplement.
	standard, err := p.loadStandard(ctx)
	if err != nil {
		return nil, err
	}

	// Source 3: the historical data set.
	historical, err := p.loadHistorical(ctx)
	if err != nil {
		return nil, err
	}

	// Corrections, applied last by code.
	extra, err := p.loadExtra(ctx)
	if err != nil {
		return nil, err
	}

	// Align the non-authoritative sets.
	matcher := match.New()
	audit := &dataset.Audit{}

	standardResult := matcher.Align(ctx, standard, scraped, sources.Standard)
	audit.AddConflicts(standardResult.Conflicts)
	audit.AddUnmatched(sources.Standard.String(), standardResult.Unmatched)

	historicalResult := matcher.Align(ctx, historical, scraped, sources.Historical)
	audit.AddConflicts(historicalResult.Conflicts)
	audit.AddUnmatched(sources.Historical.String(), historicalResult.Unmatched)

	// Merge, lowest priority first.
	engine := merge.New(p.opts.Table)
	unified, conflicts := engine.Merge(ctx, scraped,
		merge.Contribution{Source: sources.Standard, Records: standardResult.Matched},
		merge.Contribution{Source: sources.Historical, Records: historicalResult.Matched},
		merge.Contribution{Source: sources.Extra, Records: byCode(extra)},
	)
	audit.AddConflicts(conflicts)

	// Write the outputs.
	writer, err := dataset.NewWriter(p.opts.OutDir)
	if err != nil {
		return nil, err
	}
	if err := writer.WriteLatest(ctx, scraped); err != nil {
		return nil, err
	}
	if err := writer.WriteUnified(ctx, unified); err != nil {
		return nil, err
	}
	if err := writer.WriteSQLite(ctx, unified); err != nil {
		return nil, err
	}
	if err := writer.WriteAudit(ctx, audit); err != nil {
		return nil, err
	}

	return &Summary{
		Version:   p.opts.Version,
		Records:   unified.Len(),
		Conflicts: len(audit.Conflicts),
		Unmatched: len(audit.Unmatched),
	}, nil
}

// loadStandard reads the transcription and folds in the supplement.
func (p *Pipeline) loadStandard(ctx context.Context) (*division.Set, error) {
	primary, err := p.parseCSV(ctx, standardFile, func(f *os.File) (*division.Set, error) {
		return parse.Standard(ctx, f, sources.Standard, standardFile)
	})
	if err != nil {
		return nil, err
	}

	supplement, err := p.parseCSV(ctx, supplementFile, func(f *os.File) (*division.Set, error) {
		return parse.Standard(ctx, f, sources.Supplement, supplementFile)
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int("primary", primary.Len()).Int("supplement", supplement.Len()).
		Msg("loaded standard transcription")
	return parse.ApplySupplement(primary, supplement), nil
}

// loadHistorical reads the CITAS CSV.
func (p *Pipeline) loadHistorical(ctx context.Context) (*division.Set, error) {
	set, err := p.parseCSV(ctx, historicalFile, func(f *os.File) (*division.Set, error) {
		return parse.Historical(ctx, f, historicalFile)
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info().Int("records", set.Len()).Msg("loaded historical data")
	return set, nil
}

// loadExtra reads the corrections file; a missing file simply means no
// corrections.
func (p *Pipeline) loadExtra(ctx context.Context) (*division.Set, error) {
	path := filepath.Join(p.opts.DataDir, extraFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.FromContext(ctx).Debug().Str("path", path).Msg("no corrections file")
			return division.NewSet(), nil
		}
		return nil, errors.NewSourceError(sources.Extra.String(), "", errors.WrapIO("open", path, err))
	}
	defer func() { _ = f.Close() }()
	return parse.Extra(ctx, f, extraFile)
}

// parseCSV opens a required input file and hands it to a parser.
func (p *Pipeline) parseCSV(ctx context.Context, name string, parser func(*os.File) (*division.Set, error)) (*division.Set, error) {
	path := filepath.Join(p.opts.DataDir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSourceError(name, "", errors.WrapIO("open", path, err))
	}
	defer func() { _ = f.Close() }()
	return parser(f)
}

// byCode keys a set's records by their own code, the trivial alignment used
// for the corrections file.
func byCode(set *division.Set) map[int]division.Record {
	out := make(map[int]division.Record, set.Len())
	for _, rec := range set.Ordered() {
		out[rec.Code] = rec
	}
	return out
}
