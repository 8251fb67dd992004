package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbdata/gb2260/internal/dataset"
	"github.com/gbdata/gb2260/internal/store"
	"github.com/gbdata/gb2260/pkg/errors"
	"github.com/gbdata/gb2260/pkg/logging"
	"github.com/gbdata/gb2260/pkg/sources"
)

func testContext() context.Context {
	return logging.WithLogger(context.Background(), &logging.Nop)
}

func listingRow(code int, name string, level int) string {
	return fmt.Sprintf(`<p class="MsoNormal"><span>%d</span><span>%s%s</span></p>`,
		code, strings.Repeat("　", level), name)
}

// seedFixtures lays out a cached listing and the input CSVs for a small but
// complete run: Beijing with a renamed district (昌平县 became 昌平区 under a
// new code) so the audit has something to report.
func seedFixtures(t *testing.T, dataDir, cacheDir string) {
	t.Helper()

	listing := `<html><head><meta charset="utf-8"></head><body><div class="TRS_Editor">` +
		listingRow(110000, "北京市", 1) +
		listingRow(110100, "市辖区", 2) +
		listingRow(110101, "东城区", 3) +
		listingRow(110108, "海淀区", 3) +
		listingRow(110114, "昌平区", 3) +
		`</div></body></html>`

	standard := `code,name_zh,level,name_pinyin,name_en,alpha,latitude,longitude
110000,北京市,1,Beijing,Beijing,BJ,39.904,116.407
110101,东城区,3,Dongcheng,Dongcheng,,39.928,116.416
110108,海淀区,3,,,,39.956,116.310
`
	supplement := `code,name_zh,level,name_en
110108,,0,Haidian
`
	historical := `C-gbcode,todate,N-hanzi,N-pinyin,N-local
110101,19941231,东城区,Dongcheng,Beijing: Dongcheng qu
110108,19941231,海淀区,Haidian,Beijing: Haidian qu
110221,19941231,昌平县,Changping,Beijing: Changping xian
`
	extra := `code,name_zh,level,name_en
110114,,0,Changping
`

	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, sources.DefaultVersion+".html"), []byte(listing), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, standardFile), []byte(standard), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, supplementFile), []byte(supplement), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, historicalFile), []byte(historical), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, extraFile), []byte(extra), 0o644))
}

func runPipeline(t *testing.T) (*Summary, string) {
	t.Helper()

	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	cacheDir := filepath.Join(root, "cache")
	outDir := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	seedFixtures(t, dataDir, cacheDir)

	p := New(Options{
		UseCache: true,
		DataDir:  dataDir,
		CacheDir: cacheDir,
		OutDir:   outDir,
	})
	summary, err := p.Run(testContext())
	require.NoError(t, err)
	return summary, outDir
}

func TestRunSummary(t *testing.T) {
	summary, _ := runPipeline(t)

	assert.Equal(t, sources.DefaultVersion, summary.Version)
	assert.Equal(t, 5, summary.Records)
	assert.Zero(t, summary.Conflicts)
	assert.Equal(t, 1, summary.Unmatched, "the abolished 昌平县 matches nothing")
}

func TestRunWritesLatestTable(t *testing.T) {
	_, outDir := runPipeline(t)

	data, err := os.ReadFile(filepath.Join(outDir, "latest.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "110000,北京市,1", lines[1])
	assert.Equal(t, "110114,昌平区,3", lines[5])
}

func TestRunMergesSourcesIntoUnified(t *testing.T) {
	_, outDir := runPipeline(t)

	f, err := os.Open(filepath.Join(outDir, "unified.csv"))
	require.NoError(t, err)
	defer f.Close()

	unified, err := dataset.ReadUnified(f)
	require.NoError(t, err)
	require.Equal(t, 5, unified.Len())

	beijing, _ := unified.Get(110000)
	require.NotNil(t, beijing.Alpha)
	assert.Equal(t, "BJ", *beijing.Alpha)
	require.NotNil(t, beijing.Latitude)
	assert.Equal(t, 39.904, *beijing.Latitude)

	haidian, _ := unified.Get(110108)
	require.NotNil(t, haidian.NamePinyin)
	assert.Equal(t, "Haidian", *haidian.NamePinyin, "pinyin comes from the historical set")
	require.NotNil(t, haidian.NameEN)
	assert.Equal(t, "Haidian", *haidian.NameEN, "english name patched in by the supplement")

	changping, _ := unified.Get(110114)
	require.NotNil(t, changping.NameEN)
	assert.Equal(t, "Changping", *changping.NameEN, "corrections apply by code")

	shixiaqu, _ := unified.Get(110100)
	require.NotNil(t, shixiaqu.NamePinyin)
	assert.Equal(t, "Shixiaqu", *shixiaqu.NamePinyin, "missing pinyin is transcribed")
}

func TestRunUnifiedCoversScrapedExactly(t *testing.T) {
	_, outDir := runPipeline(t)

	f, err := os.Open(filepath.Join(outDir, "unified.csv"))
	require.NoError(t, err)
	defer f.Close()
	unified, err := dataset.ReadUnified(f)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "latest.csv"))
	require.NoError(t, err)
	var latestCodes []int
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n")[1:] {
		code, err := strconv.Atoi(strings.SplitN(line, ",", 2)[0])
		require.NoError(t, err)
		latestCodes = append(latestCodes, code)
	}

	assert.Equal(t, latestCodes, unified.Codes(), "one unified row per scraped division, nothing extra")
}

func TestRunWritesQueryableDatabase(t *testing.T) {
	_, outDir := runPipeline(t)

	s, err := store.Open(filepath.Join(outDir, "unified.db"))
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.Lookup(testContext(), 110108)
	require.NoError(t, err)
	assert.Equal(t, "海淀区", rec.NameZH)

	children, err := s.Children(testContext(), 110100)
	require.NoError(t, err)
	assert.Len(t, children, 3, "the districts sit under the 市辖区 grouping prefix")
}

func TestRunAuditsUnmatchedHistory(t *testing.T) {
	_, outDir := runPipeline(t)

	data, err := os.ReadFile(filepath.Join(outDir, "audit.yaml"))
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "昌平县")
	assert.Contains(t, text, sources.Historical.String())
}

func TestRunWithoutCorrectionsFile(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	cacheDir := filepath.Join(root, "cache")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	seedFixtures(t, dataDir, cacheDir)
	require.NoError(t, os.Remove(filepath.Join(dataDir, extraFile)))

	p := New(Options{
		UseCache: true,
		DataDir:  dataDir,
		CacheDir: cacheDir,
		OutDir:   filepath.Join(root, "out"),
	})
	summary, err := p.Run(testContext())
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Records)
}

func TestRunMissingRequiredInputFails(t *testing.T) {
	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	cacheDir := filepath.Join(root, "cache")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	seedFixtures(t, dataDir, cacheDir)
	require.NoError(t, os.Remove(filepath.Join(dataDir, standardFile)))

	p := New(Options{
		UseCache: true,
		DataDir:  dataDir,
		CacheDir: cacheDir,
		OutDir:   filepath.Join(root, "out"),
	})
	_, err := p.Run(testContext())
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}
