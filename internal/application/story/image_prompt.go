package story

import (
	"strings"

	"storygen-ai-api/internal/workflow/node"
)

// DefaultImagePromptMaxLength 图像提示词的最大字符数
const DefaultImagePromptMaxLength = 300

// ImageVariant 图像提示词类型
type ImageVariant int

const (
	VariantCharacter ImageVariant = iota
	VariantBackground
)

const (
	characterSuffix  = ", portrait, detailed, high quality, digital art, fantasy style, concept art"
	backgroundSuffix = ", landscape, detailed, high quality, digital art, fantasy style, matte painting"
)

// 会干扰图像模型的片段，在小写化之后移除
var imagePromptDenylist = []string{"describe", "description:", "character:", "background:", "story:", "\n"}

// ImagePrompts 角色与背景两段图像提示词
type ImagePrompts struct {
	CharacterPrompt  string `json:"character_prompt"`
	BackgroundPrompt string `json:"background_prompt"`
}

// PromptComposer 将描述文本转成 Stable Diffusion 风格的提示词
type PromptComposer struct {
	maxLength int
}

// NewPromptComposer 创建提示词组装器，maxLength <= 0 时使用默认值
func NewPromptComposer(maxLength int) *PromptComposer {
	if maxLength <= 0 {
		maxLength = DefaultImagePromptMaxLength
	}
	return &PromptComposer{maxLength: maxLength}
}

// Build 追加风格关键词、清洗并截断。截断按字符进行，可能截在单词中间。
func (p *PromptComposer) Build(description string, variant ImageVariant) string {
	suffix := characterSuffix
	if variant == VariantBackground {
		suffix = backgroundSuffix
	}
	return node.TruncateByRunes(cleanImagePrompt(description+suffix), p.maxLength)
}

// CreateImagePrompts 同时生成角色与背景提示词
func (p *PromptComposer) CreateImagePrompts(characterDesc, backgroundDesc string) ImagePrompts {
	return ImagePrompts{
		CharacterPrompt:  p.Build(characterDesc, VariantCharacter),
		BackgroundPrompt: p.Build(backgroundDesc, VariantBackground),
	}
}

func cleanImagePrompt(s string) string {
	cleaned := strings.ToLower(s)
	for changed := true; changed; {
		changed = false
		for _, removal := range imagePromptDenylist {
			if strings.Contains(cleaned, removal) {
				cleaned = strings.ReplaceAll(cleaned, removal, "")
				changed = true
			}
		}
	}
	if !strings.Contains(cleaned, "portrait") && !strings.Contains(cleaned, "landscape") {
		cleaned = "beautiful " + cleaned
	}
	return strings.TrimSpace(cleaned)
}
