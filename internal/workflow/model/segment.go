package model

// SegmentGenerateInput 片段请求参数
type SegmentGenerateInput struct {
	JourneyDescription string
	StyleInstruction   string

	Index         int
	TotalEstimate int
	ChapterGoal   string
	// ContextBlock 续写提示块，首个片段为开篇说明
	ContextBlock string
	TargetWords  int

	GenerationOptions
}

// SegmentGenerateOutput 片段请求结果
type SegmentGenerateOutput struct {
	Content string
	Meta    LLMUsageMeta
}
