package story

import (
	"strings"
	"unicode/utf8"

	"storygen-ai-api/internal/workflow/node"
)

// 去重启发式的默认参数
const (
	DefaultSimilarityThreshold = 0.7
	DefaultSimilarityWindow    = 2
	DefaultMinSentenceLength   = 10
)

// DefaultBoilerplatePrefixes 模型常见的回答前缀，按顺序各检查一次
var DefaultBoilerplatePrefixes = []string{
	"Story:",
	"Character description:",
	"Background description:",
	"Character:",
	"Background:",
	"Setting:",
	"Description:",
	"Based on the story,",
	"Here is",
	"Here's",
	"The story",
}

// NormalizerConfig 文本清洗参数
type NormalizerConfig struct {
	SimilarityThreshold float64
	Window              int
	MinSentenceLength   int
	Prefixes            []string
}

// Normalizer 去掉模板前缀并剔除近似重复的句子
type Normalizer struct {
	threshold float64
	window    int
	minLen    int
	prefixes  []string
}

// NewNormalizer 创建文本清洗器，零值字段使用默认参数；配置层不允许阈值为 0
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{
		threshold: cfg.SimilarityThreshold,
		window:    cfg.Window,
		minLen:    cfg.MinSentenceLength,
		prefixes:  cfg.Prefixes,
	}
	if n.threshold <= 0 {
		n.threshold = DefaultSimilarityThreshold
	}
	if n.window <= 0 {
		n.window = DefaultSimilarityWindow
	}
	if n.minLen <= 0 {
		n.minLen = DefaultMinSentenceLength
	}
	if n.prefixes == nil {
		n.prefixes = DefaultBoilerplatePrefixes
	}
	return n
}

// Normalize 清洗一段生成文本。
// 没有句子通过过滤时返回去除首尾空白后的原文，非空输入不会得到空结果。
func (n *Normalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	cleaned := trimmed
	for _, prefix := range n.prefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
		}
	}

	var accepted []string
	for _, sentence := range node.SplitSentences(cleaned) {
		if utf8.RuneCountInString(sentence) <= n.minLen {
			continue
		}
		if n.duplicatesRecent(sentence, accepted) {
			continue
		}
		accepted = append(accepted, sentence)
	}

	if len(accepted) == 0 {
		return trimmed
	}
	return strings.Join(accepted, ". ") + "."
}

func (n *Normalizer) duplicatesRecent(sentence string, accepted []string) bool {
	from := len(accepted) - n.window
	if from < 0 {
		from = 0
	}
	for _, prev := range accepted[from:] {
		if Similarity(sentence, prev) > n.threshold {
			return true
		}
	}
	return false
}

// Similarity 小写词集合上的 Jaccard 相似度；任一集合为空时为 0
func Similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
