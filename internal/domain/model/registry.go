// Package model 定义可用的 Groq 模型及其静态能力元数据
package model

import (
	"fmt"
	"strings"
)

// Tier 模型分级
type Tier int

const (
	TierProduction Tier = iota
	TierPreview
)

// String 返回分级名称
func (t Tier) String() string {
	switch t {
	case TierProduction:
		return "Production"
	case TierPreview:
		return "Preview"
	default:
		return "Unknown"
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ID 模型枚举。声明顺序即探测优先级。
type ID int

const (
	Llama33Versatile ID = iota
	Llama31Instant
	Gemma2
	DeepSeekR1Llama70B
	Qwen3_32B

	modelCount
)

// Spec 模型静态能力描述，启动后不可变
type Spec struct {
	ID                 ID      `json:"-"`
	Name               string  `json:"name"`
	MaxTokens          int     `json:"max_tokens"`
	ContextWindow      int     `json:"context_window"`
	Description        string  `json:"description"`
	DefaultTemperature float64 `json:"temperature"`
	Tier               Tier    `json:"tier"`
}

var specs = [modelCount]Spec{
	Llama33Versatile: {
		ID:                 Llama33Versatile,
		Name:               "llama-3.3-70b-versatile",
		MaxTokens:          32768,
		ContextWindow:      131072,
		Description:        "Latest Llama 3.3 70B - Best for creative writing and complex tasks",
		DefaultTemperature: 0.8,
		Tier:               TierProduction,
	},
	Llama31Instant: {
		ID:                 Llama31Instant,
		Name:               "llama-3.1-8b-instant",
		MaxTokens:          131072,
		ContextWindow:      131072,
		Description:        "Fast Llama 3.1 8B - Good balance of speed and quality",
		DefaultTemperature: 0.8,
		Tier:               TierProduction,
	},
	Gemma2: {
		ID:                 Gemma2,
		Name:               "gemma2-9b-it",
		MaxTokens:          8192,
		ContextWindow:      8192,
		Description:        "Google Gemma2 9B - Reliable for creative tasks",
		DefaultTemperature: 0.8,
		Tier:               TierProduction,
	},
	DeepSeekR1Llama70B: {
		ID:                 DeepSeekR1Llama70B,
		Name:               "deepseek-r1-distill-llama-70b",
		MaxTokens:          131072,
		ContextWindow:      131072,
		Description:        "DeepSeek R1 70B - Advanced reasoning capabilities (Preview)",
		DefaultTemperature: 0.8,
		Tier:               TierPreview,
	},
	Qwen3_32B: {
		ID:                 Qwen3_32B,
		Name:               "qwen/qwen3-32b",
		MaxTokens:          40960,
		ContextWindow:      131072,
		Description:        "Qwen 3 32B - Multilingual support with strong reasoning (Preview)",
		DefaultTemperature: 0.8,
		Tier:               TierPreview,
	},
}

// Default 默认模型
const Default = Llama33Versatile

// String 返回模型在 API 中使用的名称
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("model(%d)", int(id))
	}
	return specs[id].Name
}

// Valid 判断枚举值是否合法
func (id ID) Valid() bool {
	return id >= 0 && id < modelCount
}

// Lookup 查询模型规格
func Lookup(id ID) (Spec, bool) {
	if !id.Valid() {
		return Spec{}, false
	}
	return specs[id], true
}

// MustLookup 查询模型规格，非法枚举值 panic
func MustLookup(id ID) Spec {
	s, ok := Lookup(id)
	if !ok {
		panic(fmt.Sprintf("model: unknown id %d", int(id)))
	}
	return s
}

// Parse 按 API 名称解析模型
func Parse(name string) (ID, bool) {
	name = strings.TrimSpace(name)
	for i := range specs {
		if specs[i].Name == name {
			return specs[i].ID, true
		}
	}
	return 0, false
}

// All 按声明顺序返回全部模型
func All() []Spec {
	out := make([]Spec, 0, len(specs))
	out = append(out, specs[:]...)
	return out
}

// Names 按声明顺序返回全部模型名称
func Names() []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Name)
	}
	return out
}

// ByTier 按声明顺序返回指定分级的模型
func ByTier(t Tier) []Spec {
	var out []Spec
	for _, s := range specs {
		if s.Tier == t {
			out = append(out, s)
		}
	}
	return out
}

// Candidates 返回探测顺序：先全部 Production，再全部 Preview
func Candidates() []ID {
	out := make([]ID, 0, len(specs))
	for _, s := range ByTier(TierProduction) {
		out = append(out, s.ID)
	}
	for _, s := range ByTier(TierPreview) {
		out = append(out, s.ID)
	}
	return out
}
