// Package node 提供生成流程中各节点共用的文本处理函数
package node

import "strings"

// TruncateByRunes 按字符数截断，不会切开多字节字符；maxRunes <= 0 返回空串
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == maxRunes {
			return s[:i]
		}
		count++
	}
	return s
}

// SplitSentences 按句号切分，片段去掉首尾空白。空片段同样返回，由调用方过滤。
func SplitSentences(s string) []string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
