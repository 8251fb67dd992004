// Package match aligns records from the standard-transcription and
// historical sets against the scraped authoritative set. Matching runs an
// ordered list of strategies: exact code, normalized name scoped to level
// and parent, then document-order position for same-named siblings.
// Anything still ambiguous becomes a recorded conflict, never a guess.
package match

import (
	"strings"
)

// variants maps traditional characters seen in older division names to
// their simplified forms. The table only needs to cover characters that
// occur in division names; it is not a general converter.
var variants = map[rune]rune{
	'區': '区', '縣': '县', '鎮': '镇', '鄉': '乡', '東': '东', '門': '门',
	'馬': '马', '灣': '湾', '臺': '台', '陝': '陕', '廣': '广', '寧': '宁',
	'烏': '乌', '魯': '鲁', '齊': '齐', '濟': '济', '陽': '阳', '長': '长',
	'雲': '云', '貴': '贵', '連': '连', '蘇': '苏', '鄭': '郑', '華': '华',
	'興': '兴', '豐': '丰', '慶': '庆', '關': '关', '錫': '锡', '靈': '灵',
	'順': '顺', '義': '义', '陰': '阴', '楊': '杨', '龍': '龙', '鳳': '凤',
	'島': '岛', '嶺': '岭', '橋': '桥', '溝': '沟', '灤': '滦', '濰': '潍',
	'壩': '坝', '莊': '庄', '銀': '银', '鐵': '铁', '撫': '抚',
	'錦': '锦', '營': '营', '遼': '辽', '陸': '陆', '漢': '汉', '滿': '满',
	'維': '维', '爾': '尔', '薩': '萨', '樂': '乐',
}

// suffixTokens are the administrative-type suffixes stripped before name
// comparison, longest first so that 自治县 is removed before 县.
var suffixTokens = []string{
	"自治州", "自治县", "自治旗", "地区", "矿区", "林区", "特区", "新区",
	"市", "区", "县", "旗", "盟", "州",
}

// Normalize reduces a Chinese division name to its comparable core: strip
// whitespace, map traditional characters to simplified, then drop the
// administrative-type suffix. A name that is nothing but its suffix (市辖区
// and friends) is kept whole so it stays comparable.
func Normalize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case ' ', '\t', ' ', '　':
			continue
		}
		if s, ok := variants[r]; ok {
			r = s
		}
		sb.WriteRune(r)
	}
	s := sb.String()

	for _, suffix := range suffixTokens {
		if trimmed := strings.TrimSuffix(s, suffix); trimmed != s {
			if trimmed != "" {
				s = trimmed
			}
			break
		}
	}
	return s
}

// SameName reports whether two raw names normalize to the same core.
func SameName(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
