package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbdata/gb2260/pkg/division"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

func testContext() context.Context {
	return logging.WithLogger(context.Background(), &logging.Nop)
}

func buildSet(recs ...division.Record) *division.Set {
	set := division.NewSet()
	for _, r := range recs {
		set.Add(r)
	}
	return set
}

func rec(code int, name string) division.Record {
	return division.Record{Code: code, NameZH: name, Level: division.Level(code)}
}

func TestAlignMatchesByCode(t *testing.T) {
	authoritative := buildSet(
		rec(110000, "北京市"),
		rec(110108, "海淀区"),
	)
	pinyin := division.StringPtr("Haidian")
	foreign := buildSet(division.Record{Code: 110108, NameZH: "海淀区", Level: 3, NamePinyin: pinyin})

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	require.Len(t, result.Matched, 1)
	matched, ok := result.Matched[110108]
	require.True(t, ok)
	require.NotNil(t, matched.NamePinyin)
	assert.Equal(t, "Haidian", *matched.NamePinyin)
	assert.Empty(t, result.Unmatched)
	assert.Empty(t, result.Conflicts)
}

func TestAlignCodeMatchSurvivesRename(t *testing.T) {
	// A code that still exists matches even when the division was renamed;
	// the name disagreement is the merge stage's business, not the matcher's.
	authoritative := buildSet(rec(130111, "栾城区"))
	foreign := buildSet(rec(130111, "栾城县"))

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	require.Contains(t, result.Matched, 130111)
	assert.Equal(t, "栾城县", result.Matched[130111].NameZH)
}

func TestAlignMatchesByScopedName(t *testing.T) {
	// 栾城县 became 栾城区 under a new county code within the same
	// prefecture: the code fails, the normalized scoped name carries it.
	authoritative := buildSet(
		rec(130100, "石家庄市"),
		rec(130111, "栾城区"),
	)
	foreign := buildSet(rec(130124, "栾城县"))

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	require.Contains(t, result.Matched, 130111)
	assert.Equal(t, "栾城县", result.Matched[130111].NameZH)
	assert.Empty(t, result.Unmatched)
}

func TestAlignNameScopedToParent(t *testing.T) {
	// Same-named counties under different prefectures must not cross-match.
	authoritative := buildSet(
		rec(130102, "长安区"),
		rec(610102, "新城区"),
	)
	foreign := buildSet(rec(610121, "长安县"))

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	assert.Empty(t, result.Matched)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, 610121, result.Unmatched[0].Code)
}

func TestAlignPositionalBreaksNameTies(t *testing.T) {
	// Two same-normalized-name siblings under one parent resolve by
	// document order: n-th foreign sibling takes the n-th authoritative one.
	authoritative := buildSet(
		rec(130102, "长安区"),
		rec(130109, "长安矿区"),
	)
	foreign := buildSet(
		rec(130171, "长安县"),
		rec(130172, "长安特区"),
	)

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	require.Len(t, result.Matched, 2)
	assert.Equal(t, "长安县", result.Matched[130102].NameZH)
	assert.Equal(t, "长安特区", result.Matched[130109].NameZH)
	assert.Empty(t, result.Conflicts)
}

func TestAlignRankOverflowIsConflict(t *testing.T) {
	// Three foreign siblings against two authoritative ones: the third has
	// no defensible position and is refused, not guessed.
	authoritative := buildSet(
		rec(130102, "长安区"),
		rec(130109, "长安矿区"),
	)
	foreign := buildSet(
		rec(130171, "长安县"),
		rec(130172, "长安特区"),
		rec(130173, "长安新区"),
	)

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	assert.Len(t, result.Matched, 2)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, 130173, result.Conflicts[0].Code)
}

func TestAlignAbolishedDivisionUnmatched(t *testing.T) {
	authoritative := buildSet(
		rec(110000, "北京市"),
		rec(110108, "海淀区"),
	)
	foreign := buildSet(rec(110229, "延庆县"))

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	assert.Empty(t, result.Matched)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "延庆县", result.Unmatched[0].NameZH)
}

func TestAlignRefusesDuplicateClaims(t *testing.T) {
	// One foreign record holds the current code, another carries the old
	// name: both resolve to 130111. The first claim in document order wins
	// and the second is recorded as a conflict.
	authoritative := buildSet(
		rec(130100, "石家庄市"),
		rec(130111, "栾城区"),
	)
	foreign := buildSet(
		rec(130111, "栾城区"),
		rec(130124, "栾城县"),
	)

	result := New().Align(testContext(), foreign, authoritative, sources.Historical)

	require.Contains(t, result.Matched, 130111)
	assert.Equal(t, "栾城区", result.Matched[130111].NameZH)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, 130111, result.Conflicts[0].Code)
}

func TestAlignEmptyForeignSet(t *testing.T) {
	authoritative := buildSet(rec(110000, "北京市"))

	result := New().Align(testContext(), division.NewSet(), authoritative, sources.Extra)

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Unmatched)
	assert.Empty(t, result.Conflicts)
}
