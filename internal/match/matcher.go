package match

import (
	"context"
	"fmt"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

// Result is the outcome of aligning one foreign set against the
// authoritative set.
type Result struct {
	// Matched maps authoritative codes to the foreign record aligned with
	// them.
	Matched map[int]division.Record

	// Unmatched holds foreign records no strategy could place; typically
	// abolished or since-renamed divisions.
	Unmatched []division.Record

	// Conflicts holds ambiguous matches that were refused rather than
	// resolved arbitrarily.
	Conflicts []*errors.ConflictError
}

// Matcher aligns foreign record sets against an authoritative index using
// an ordered strategy list.
type Matcher struct {
	strategies []Strategy
}

// New creates a Matcher with the standard strategies.
func New() *Matcher {
	return &Matcher{strategies: Strategies()}
}

// NewWithStrategies creates a Matcher with an explicit strategy order.
func NewWithStrategies(strategies ...Strategy) *Matcher {
	return &Matcher{strategies: strategies}
}

// Align matches every record of foreign against the authoritative set.
// source only labels log lines and conflicts.
func (m *Matcher) Align(ctx context.Context, foreign *division.Set, authoritative *division.Set, source sources.Type) Result {
	log := logging.FromContext(ctx)
	idx := NewIndex(authoritative)

	result := Result{Matched: make(map[int]division.Record)}

	// Document-order rank of each foreign record among its same-key
	// siblings, consumed by the positional strategy.
	ranks := make(map[nameKey]int)
	claimed := make(map[int]division.Record)

	for _, rec := range foreign.Ordered() {
		key := keyFor(rec)
		rank := ranks[key]
		ranks[key]++

		code, strategy, conflict := m.resolve(rec, rank, idx)
		if conflict != nil {
			result.Conflicts = append(result.Conflicts, conflict)
			log.Warn().Str("source", source.String()).Str("record", rec.String()).
				Msg("ambiguous match recorded as conflict")
			continue
		}
		if code == 0 {
			result.Unmatched = append(result.Unmatched, rec)
			log.Debug().Str("source", source.String()).Str("record", rec.String()).
				Msg("no match in authoritative set")
			continue
		}

		if prev, ok := claimed[code]; ok {
			result.Conflicts = append(result.Conflicts, errors.NewConflictError(code, "",
				fmt.Sprintf("both %q and %q from %s align with this code", prev.NameZH, rec.NameZH, source)))
			continue
		}
		claimed[code] = rec
		result.Matched[code] = rec
		log.Debug().Str("source", source.String()).Str("strategy", strategy).
			Int("code", code).Msg("matched")
	}

	return result
}

// resolve runs the strategy list for one record. A zero code with a nil
// conflict means the record is unmatched.
func (m *Matcher) resolve(rec division.Record, rank int, idx *Index) (int, string, *errors.ConflictError) {
	for _, s := range m.strategies {
		codes := s.Match(rec, rank, idx)
		switch len(codes) {
		case 0:
			continue
		case 1:
			return codes[0], s.Name(), nil
		default:
			return 0, s.Name(), errors.NewConflictError(rec.Code, "",
				fmt.Sprintf("%d equally-scoring candidates for %q via %s strategy", len(codes), rec.NameZH, s.Name()))
		}
	}
	return 0, "", nil
}
