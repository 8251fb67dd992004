package match

import (
	"github.com/gbdata/gb2260/pkg/division"
)

// Strategy proposes authoritative codes for one foreign record. rank is the
// record's document-order position among its own same-key siblings, used
// only by the positional strategy. Returning no codes passes the record to
// the next strategy; returning several signals ambiguity at this stage.
type Strategy interface {
	Name() string
	Match(rec division.Record, rank int, idx *Index) []int
}

// Strategies returns the standard ordered strategy list.
func Strategies() []Strategy {
	return []Strategy{codeStrategy{}, nameStrategy{}, positionStrategy{}}
}

// codeStrategy matches a record whose code already exists in the
// authoritative set.
type codeStrategy struct{}

func (codeStrategy) Name() string { return "code" }

func (codeStrategy) Match(rec division.Record, _ int, idx *Index) []int {
	if idx.HasCode(rec.Code) {
		return []int{rec.Code}
	}
	return nil
}

// nameStrategy matches on normalized name scoped to the same level and
// parent prefix. It only answers when the answer is unique; several
// candidates are left for the positional strategy.
type nameStrategy struct{}

func (nameStrategy) Name() string { return "name" }

func (nameStrategy) Match(rec division.Record, _ int, idx *Index) []int {
	candidates := idx.Candidates(rec)
	if len(candidates) == 1 {
		return candidates
	}
	return nil
}

// positionStrategy resolves same-named siblings under one parent by
// document order: the n-th foreign record with a given scoped name matches
// the n-th authoritative one. Repeated 市辖区 rows are the usual case.
type positionStrategy struct{}

func (positionStrategy) Name() string { return "position" }

func (positionStrategy) Match(rec division.Record, rank int, idx *Index) []int {
	candidates := idx.Candidates(rec)
	if len(candidates) < 2 {
		return nil
	}
	if rank < len(candidates) {
		return []int{candidates[rank]}
	}
	// More foreign siblings than authoritative ones; surface all
	// candidates so the matcher records a conflict.
	return candidates
}
