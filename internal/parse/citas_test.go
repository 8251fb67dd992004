package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalFiltersEdition(t *testing.T) {
	csv := `C-gbcode,todate,N-hanzi,N-pinyin,N-local
110108,19941231,海淀区,Haidian,Beijing: Haidian qu
110221,19891231,昌平县,Changping,Beijing: Changping xian
`
	set, err := Historical(testContext(), strings.NewReader(csv), "citas.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len(), "rows outside the edition cutoff are dropped")

	rec, ok := set.Get(110108)
	require.True(t, ok)
	assert.Equal(t, "海淀区", rec.NameZH)
	require.NotNil(t, rec.NamePinyin)
	assert.Equal(t, "Haidian", *rec.NamePinyin)
}

func TestHistoricalCleansRomanizedNames(t *testing.T) {
	csv := `C-gbcode,todate,N-hanzi,N-pinyin,N-local
610100,19941231,西安市,Xi` + "`" + `an,Shaanxi: Xi` + "`" + `an shi
`
	set, err := Historical(testContext(), strings.NewReader(csv), "citas.csv")
	require.NoError(t, err)

	rec, _ := set.Get(610100)
	require.NotNil(t, rec.NamePinyin)
	assert.Equal(t, "Xi'an", *rec.NamePinyin, "backticks become apostrophes")
	require.NotNil(t, rec.NameEN)
	assert.Equal(t, "Xi'an", *rec.NameEN, "parent prefix and type suffix stripped")
}

func TestHistoricalDerivesLevelFromCode(t *testing.T) {
	csv := `C-gbcode,todate,N-hanzi,N-pinyin,N-local
110000,19941231,北京市,Beijing,Beijing shi
110100,19941231,市辖区,Shixiaqu,Beijing: shixiaqu
`
	set, err := Historical(testContext(), strings.NewReader(csv), "citas.csv")
	require.NoError(t, err)

	beijing, _ := set.Get(110000)
	assert.Equal(t, 1, beijing.Level)
	shixiaqu, _ := set.Get(110100)
	assert.Equal(t, 2, shixiaqu.Level)
}

func TestHistoricalSkipsRowsWithoutNameOrCode(t *testing.T) {
	csv := `C-gbcode,todate,N-hanzi,N-pinyin,N-local
,19941231,无码,Wuma,
110108,19941231,,Haidian,
110101,19941231,东城区,Dongcheng,Beijing: Dongcheng qu
`
	set, err := Historical(testContext(), strings.NewReader(csv), "citas.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestCleanNameEN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Beijing: Dongcheng qu", "Dongcheng"},
		{"Hebei: Shijiazhuang shi", "Shijiazhuang"},
		{"Nei Mongol: Alxa zizhizhou", "Alxa"},
		{"Beijing: shixiaqu", "city area"},
		{"Nyingchi xian", "Nyingchi"},
		{"Plain", "Plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanNameEN(tt.in), "input %q", tt.in)
	}
}
