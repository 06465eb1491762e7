package narration

import (
	"strings"

	"journey-narrator/internal/workflow/node"
)

// DefaultContextChars 续写提示携带的上一片段尾部字符数
const DefaultContextChars = 1500

// ContextWindow 取上一片段文本的最后 n 个字符，仅作续写提示
func ContextWindow(previous string, n int) string {
	return node.TailByRunes(previous, n)
}

func buildContextBlock(index int, window string) string {
	if index <= 1 || strings.TrimSpace(window) == "" {
		return "This is the opening chapter: introduce the setting and the main character, and set the story in motion."
	}
	var b strings.Builder
	b.WriteString("The story so far ends with this passage:\n<<<\n")
	b.WriteString(window)
	b.WriteString("\n>>>\n")
	b.WriteString("Continue seamlessly from where this passage stops. Do not repeat, recap or summarize it, ")
	b.WriteString("and do not open with mechanical connectives such as \"Meanwhile\", \"Continuing on\" or \"As the journey continued\".")
	return b.String()
}
