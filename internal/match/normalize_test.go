package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsSuffixes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"北京市", "北京"},
		{"海淀区", "海淀"},
		{"密云县", "密云"},
		{"延边朝鲜族自治州", "延边朝鲜族"},
		{"孟村回族自治县", "孟村回族"},
		{"大柴旦矿区", "大柴旦"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeKeepsSuffixOnlyNames(t *testing.T) {
	// 市辖区 would strip to 市辖; a name that is nothing but its own
	// suffix must stay comparable.
	assert.Equal(t, "市辖", Normalize("市辖区"))
	assert.NotEmpty(t, Normalize("市"))
}

func TestNormalizeMapsTraditionalVariants(t *testing.T) {
	assert.Equal(t, Normalize("海淀区"), Normalize("海淀區"))
	assert.Equal(t, Normalize("长安区"), Normalize("長安區"))
	assert.Equal(t, Normalize("乌鲁木齐市"), Normalize("烏魯木齊市"))
}

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "海淀", Normalize(" 海淀 区 "))
	assert.Equal(t, "海淀", Normalize("海淀　区"))
}

func TestSameName(t *testing.T) {
	assert.True(t, SameName("海淀区", "海淀區"))
	assert.True(t, SameName("北京市", "北京"))
	assert.False(t, SameName("海淀区", "朝阳区"))
}
