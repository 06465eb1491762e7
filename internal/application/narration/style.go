// Package narration 实现旅程叙述流水线：分段、大纲、片段生成、音频合成与编排。
package narration

import "journey-narrator/internal/domain/entity"

var styleInstructions = map[entity.StoryStyle]string{
	entity.StyleNoir: "Tell the story as hard-boiled noir. Use a world-weary first-person voice, clipped sentences, " +
		"rain-slick streets and neon shadows, morally grey characters and a mystery that tightens with every mile.",
	entity.StyleChildren: "Tell the story for young children. Keep it warm, gentle and playful, with simple words, " +
		"short sentences, friendly characters and a sense of wonder. Nothing frightening or violent.",
	entity.StyleHistorical: "Tell the story as historical fiction. Set it in a believable past era tied to the places " +
		"along the route, with accurate period detail, vivid sensory texture and characters shaped by their time.",
	entity.StyleFantasy: "Tell the story as epic fantasy. Layer a world of magic and myth over the real route, with a quest, " +
		"strange creatures, ancient lore and a growing sense of awe.",
	entity.StyleDefault: "Tell an engaging, immersive story suited to the journey, with vivid description, " +
		"a strong sense of place and characters the listener comes to care about.",
}

// ResolveStyleInstruction 返回风格对应的固定指令文本，未知风格按 DEFAULT 处理
func ResolveStyleInstruction(style entity.StoryStyle) string {
	if s, ok := styleInstructions[style]; ok {
		return s
	}
	return styleInstructions[entity.StyleDefault]
}
