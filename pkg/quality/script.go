package quality

import (
	"fmt"
	"sort"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Script 质量检查的目标文字，由一组 Unicode 区间定义
type Script struct {
	Name string
	// Label 出现在问题描述中，如 "Very few Vietnamese diacritic characters"
	Label string
	Table *unicode.RangeTable

	// 该文字的默认阈值
	MinScriptChars int
	ShortFraction  float64
}

// Count 统计 s 中属于该文字的字符数
func (sc Script) Count(s string) int {
	if sc.Table == nil {
		return 0
	}
	n := 0
	for _, r := range s {
		if unicode.Is(sc.Table, r) {
			n++
		}
	}
	return n
}

const vietnameseDiacritics = "àáảãạăắằẳẵặâấầẩẫậđèéẻẽẹêếềểễệìíỉĩịòóỏõọôốồổỗộơớờởỡợùúủũụưứừửữựỳýỷỹỵ" +
	"ÀÁẢÃẠĂẮẰẲẴẶÂẤẦẨẪẬĐÈÉẺẼẸÊẾỀỂỄỆÌÍỈĨỊÒÓỎÕỌÔỐỒỔỖỘƠỚỜỞỠỢÙÚỦŨỤƯỨỪỬỮỰỲÝỶỸỴ"

var scripts = map[string]Script{
	"vietnamese": {
		Name:           "vietnamese",
		Label:          "Vietnamese diacritic",
		Table:          rangetable.New([]rune(vietnameseDiacritics)...),
		MinScriptChars: 10,
		ShortFraction:  0.1,
	},
	"japanese": {
		Name:  "japanese",
		Label: "Japanese",
		// 平假名、片假名、汉字
		Table: &unicode.RangeTable{R16: []unicode.Range16{
			{Lo: 0x3040, Hi: 0x309F, Stride: 1},
			{Lo: 0x30A0, Hi: 0x30FF, Stride: 1},
			{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1},
		}},
		MinScriptChars: 50,
		ShortFraction:  0.5,
	},
	"latin": {
		Name:           "latin",
		Label:          "Latin",
		Table:          rangetable.Merge(unicode.Latin),
		MinScriptChars: 10,
		ShortFraction:  0.1,
	},
}

// LookupScript 按名称查找目标文字
func LookupScript(name string) (Script, error) {
	sc, ok := scripts[name]
	if !ok {
		return Script{}, fmt.Errorf("unknown script %q (available: %v)", name, ScriptNames())
	}
	return sc, nil
}

// ScriptNames 返回排序后的文字名称
func ScriptNames() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsGarbled 判断是否为替换字符或除 \t \n \r 之外的 C0 控制字符
func IsGarbled(r rune) bool {
	if r == unicode.ReplacementChar {
		return true
	}
	return r < 0x20 && r != '\t' && r != '\n' && r != '\r'
}

// CountGarbled 统计乱码字符数
func CountGarbled(s string) int {
	n := 0
	for _, r := range s {
		if IsGarbled(r) {
			n++
		}
	}
	return n
}
