package node

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 保留前 maxRunes 个字符
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// TailByRunes 保留最后 maxRunes 个字符
func TailByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	skip := total - maxRunes
	n := 0
	for i := range s {
		if n == skip {
			return s[i:]
		}
		n++
	}
	return ""
}

var (
	headingLine = regexp.MustCompile(`(?m)^\s*(#{1,6}\s+.*|(?i:chapter)\s+\d+[:.].*|\*\*[^*]+\*\*\s*)$`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// CleanNarration 去掉模型偶尔附带的标题行与包裹引号，保留正文。
func CleanNarration(s string) string {
	out := headingLine.ReplaceAllString(s, "")
	out = blankRuns.ReplaceAllString(out, "\n\n")
	out = strings.TrimSpace(out)
	if len(out) >= 2 {
		first, _ := utf8.DecodeRuneInString(out)
		last, _ := utf8.DecodeLastRuneInString(out)
		if (first == '"' && last == '"') || (first == '“' && last == '”') {
			inner := strings.TrimSpace(out[utf8.RuneLen(first) : len(out)-utf8.RuneLen(last)])
			if !strings.ContainsAny(inner, "\"“”") {
				out = inner
			}
		}
	}
	return out
}

// CountWords 按空白切分统计词数
func CountWords(s string) int {
	return len(strings.Fields(s))
}
