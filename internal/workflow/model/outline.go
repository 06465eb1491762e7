package model

// OutlineGenerateInput 大纲请求参数
type OutlineGenerateInput struct {
	JourneyDescription string
	StartLabel         string
	EndLabel           string
	TravelMode         string
	DurationMinutes    int
	StyleInstruction   string
	ChapterCount       int

	GenerationOptions
}

// OutlineGenerateOutput 大纲请求的原始结果，解析由调用方负责
type OutlineGenerateOutput struct {
	Raw  string
	Meta LLMUsageMeta
}
