package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoJSONArray 模型输出中找不到完整的 JSON 数组
	ErrNoJSONArray = errors.New("no json array found")
	// ErrNotStringArray JSON 数组不是非空字符串数组
	ErrNotStringArray = errors.New("json array is not a non-empty array of strings")
)

// ExtractJSONArray 从模型输出中截取第一个 `[` 到与之配对的 `]`。
// 模型可能在数组前后夹杂说明文字或 markdown 代码块；字符串字面量里的括号不参与配对。
func ExtractJSONArray(s string) (string, error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", ErrNoJSONArray
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONArray
}

// ParseStringArray 截取并解析字符串数组，拒绝空数组与非字符串元素。
// 元素会去除首尾空白，空白元素视为非法。
func ParseStringArray(s string) ([]string, error) {
	raw, err := ExtractJSONArray(s)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONArray, err)
	}
	if len(items) == 0 {
		return nil, ErrNotStringArray
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		var v string
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: element %d", ErrNotStringArray, i)
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, fmt.Errorf("%w: element %d is blank", ErrNotStringArray, i)
		}
		out = append(out, v)
	}
	return out, nil
}
