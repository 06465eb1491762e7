package narration

import (
	"errors"
	"fmt"

	"journey-narrator/internal/domain/service"
	"journey-narrator/internal/workflow/node"
)

// 失败分类。大纲失败只在生成器内部出现，不会越过生成器边界。
var (
	ErrOutlineGeneration = errors.New("outline generation failed")
	ErrSegmentGeneration = errors.New("segment generation failed")
	ErrAudioSynthesis    = errors.New("audio synthesis failed")
	// ErrMalformedResponse 响应内容或结构不合法，是上述失败的子类
	ErrMalformedResponse = errors.New("malformed response")
	// ErrTimeout 单次网络调用超过自身等待上限
	ErrTimeout = errors.New("stage timed out")
)

// Stage 流水线阶段
type Stage string

const (
	StageOutline Stage = "outline"
	StageSegment Stage = "segment"
	StageAudio   Stage = "audio"
)

// PipelineError 带阶段与片段序号的失败
type PipelineError struct {
	Stage     Stage
	Index     int
	Malformed bool
	Timeout   bool
	Err       error
}

func (e *PipelineError) Error() string {
	kind := e.stageErr().Error()
	if e.Malformed {
		kind += " (" + ErrMalformedResponse.Error() + ")"
	}
	if e.Timeout {
		kind += " (" + ErrTimeout.Error() + ")"
	}
	if e.Index > 0 {
		kind = fmt.Sprintf("%s [segment %d]", kind, e.Index)
	}
	if e.Err != nil {
		return kind + ": " + e.Err.Error()
	}
	return kind
}

// Unwrap 支持 errors.Is 同时匹配阶段分类、子类与底层错误
func (e *PipelineError) Unwrap() []error {
	errs := []error{e.stageErr()}
	if e.Malformed {
		errs = append(errs, ErrMalformedResponse)
	}
	if e.Timeout {
		errs = append(errs, ErrTimeout)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *PipelineError) stageErr() error {
	switch e.Stage {
	case StageOutline:
		return ErrOutlineGeneration
	case StageAudio:
		return ErrAudioSynthesis
	default:
		return ErrSegmentGeneration
	}
}

// newStageError 根据底层错误归类
func newStageError(stage Stage, index int, err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return &PipelineError{
		Stage:     stage,
		Index:     index,
		Malformed: isMalformed(err),
		Timeout:   node.IsTimeoutError(err),
		Err:       err,
	}
}

func isMalformed(err error) bool {
	return errors.Is(err, node.ErrEmptyResponse) ||
		errors.Is(err, node.ErrUnexpectedRole) ||
		errors.Is(err, node.ErrNoJSONArray) ||
		errors.Is(err, node.ErrNotStringArray) ||
		errors.Is(err, service.ErrMalformedAudio)
}
