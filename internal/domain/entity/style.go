package entity

import "strings"

// StoryStyle 故事风格
type StoryStyle string

const (
	StyleNoir       StoryStyle = "NOIR"
	StyleChildren   StoryStyle = "CHILDREN"
	StyleHistorical StoryStyle = "HISTORICAL"
	StyleFantasy    StoryStyle = "FANTASY"
	StyleDefault    StoryStyle = "DEFAULT"
)

// AllStyles 全部可选风格
func AllStyles() []StoryStyle {
	return []StoryStyle{StyleNoir, StyleChildren, StyleHistorical, StyleFantasy, StyleDefault}
}

// ParseStoryStyle 解析风格，大小写不敏感；未知值归为 DEFAULT
func ParseStoryStyle(s string) StoryStyle {
	switch StoryStyle(strings.ToUpper(strings.TrimSpace(s))) {
	case StyleNoir:
		return StyleNoir
	case StyleChildren:
		return StyleChildren
	case StyleHistorical:
		return StyleHistorical
	case StyleFantasy:
		return StyleFantasy
	default:
		return StyleDefault
	}
}

// String 实现 fmt.Stringer
func (s StoryStyle) String() string {
	return string(s)
}
