package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// Profile 描述一种语料的章节标题约定和目标文字
type Profile struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Keywords    []string `toml:"keywords"`

	// NumberWords 独立的数字词，如 "một" = 1、"mười một" = 11
	NumberWords map[string]int `toml:"number_words"`
	// Decades 与 DecadeUnits 组合出复合数字词，如 "hai mươi" + "mốt" = 21
	Decades           map[string]int `toml:"decades"`
	DecadeUnits       map[string]int `toml:"decade_units"`
	CompoundSeparator string         `toml:"compound_separator"`

	FrontMatterTitle string   `toml:"front_matter_title"`
	FallbackTitle    string   `toml:"fallback_title"`
	RunningHeaders   []string `toml:"running_headers"`

	// Script 质量检查使用的目标文字，见 quality.LookupScript
	Script string `toml:"script"`
	// HyphenJoin 行尾连字符的重连策略: "space" 或 "direct"
	HyphenJoin string `toml:"hyphen_join"`
}

// Validate 检查 profile 是否可用
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name must be specified")
	}
	if len(p.Keywords) == 0 {
		return fmt.Errorf("profile %q: at least one heading keyword is required", p.Name)
	}
	for _, kw := range p.Keywords {
		if kw == "" {
			return fmt.Errorf("profile %q: empty heading keyword", p.Name)
		}
	}
	switch p.HyphenJoin {
	case "", "space", "direct":
	default:
		return fmt.Errorf("profile %q: unknown hyphen_join %q", p.Name, p.HyphenJoin)
	}
	return nil
}

// CompoundWords 展开所有数字词及其数值，包括十位与个位的组合
func (p *Profile) CompoundWords() map[string]int {
	words := make(map[string]int, len(p.NumberWords)+len(p.Decades)*(len(p.DecadeUnits)+1))
	for w, v := range p.NumberWords {
		words[w] = v
	}
	sep := p.CompoundSeparator
	if sep == "" {
		sep = " "
	}
	for d, dv := range p.Decades {
		words[d] = dv
		for u, uv := range p.DecadeUnits {
			words[d+sep+u] = dv + uv
		}
	}
	return words
}

var viUnits = map[string]int{
	"một": 1, "hai": 2, "ba": 3, "bốn": 4, "năm": 5,
	"sáu": 6, "bảy": 7, "tám": 8, "chín": 9,
}

var enUnits = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
}

func vietnameseProfile() *Profile {
	words := map[string]int{"mười": 10}
	for w, v := range viUnits {
		words[w] = v
		switch w {
		case "năm":
			words["mười lăm"] = 15
		case "bốn":
			words["mười tư"] = 14
		}
		words["mười "+w] = 10 + v
	}
	decadeUnits := map[string]int{"mốt": 1, "tư": 4, "lăm": 5}
	for w, v := range viUnits {
		decadeUnits[w] = v
	}
	return &Profile{
		Name:              "vi",
		Description:       "Vietnamese: Chương 1 / CHƯƠNG IV / Chương mười hai",
		Keywords:          []string{"chương"},
		NumberWords:       words,
		Decades:           map[string]int{"hai mươi": 20, "ba mươi": 30},
		DecadeUnits:       decadeUnits,
		CompoundSeparator: " ",
		FrontMatterTitle:  "Lời mở đầu",
		FallbackTitle:     "Full Document",
		RunningHeaders:    []string{"Đất Rừng Phương Nam", "Nguyễn Văn Ba", "Đoàn Giỏi"},
		Script:            "vietnamese",
		HyphenJoin:        "space",
	}
}

func englishProfile() *Profile {
	words := map[string]int{
		"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	}
	for w, v := range enUnits {
		words[w] = v
	}
	return &Profile{
		Name:              "en",
		Description:       "English: Chapter 1 / CHAPTER IV / Chapter Twenty-One",
		Keywords:          []string{"chapter"},
		NumberWords:       words,
		Decades:           map[string]int{"twenty": 20, "thirty": 30},
		DecadeUnits:       enUnits,
		CompoundSeparator: "-",
		FrontMatterTitle:  "Front Matter",
		FallbackTitle:     "Full Document",
		Script:            "latin",
		HyphenJoin:        "direct",
	}
}

// builtinProfiles 内置 profile
var builtinProfiles = map[string]func() *Profile{
	"vi": vietnameseProfile,
	"en": englishProfile,
}

// BuiltinProfile 返回内置 profile 的副本
func BuiltinProfile(name string) (*Profile, error) {
	ctor, ok := builtinProfiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, BuiltinProfileNames())
	}
	return ctor(), nil
}

// BuiltinProfileNames 返回排序后的内置 profile 名称
func BuiltinProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProfileFile 从 TOML 文件加载自定义 profile。
// 文件中可以用 base 继承内置 profile，只覆盖需要的字段。
func LoadProfileFile(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile file not found: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var header struct {
		Base string `toml:"base"`
	}
	if _, err := toml.Decode(string(content), &header); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	profile := &Profile{}
	if header.Base != "" {
		profile, err = BuiltinProfile(header.Base)
		if err != nil {
			return nil, err
		}
	}
	if err := toml.Unmarshal(content, profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}
