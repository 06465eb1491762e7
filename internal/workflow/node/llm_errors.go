package node

import (
	"context"
	"errors"
	"net"
	"strings"
)

var (
	// ErrLLMTimeout 单次 LLM 调用超过自身等待上限
	ErrLLMTimeout = errors.New("llm call timed out")
	// ErrEmptyResponse 模型返回空内容
	ErrEmptyResponse = errors.New("empty llm response")
	// ErrUnexpectedRole 回复消息的角色不是 assistant
	ErrUnexpectedRole = errors.New("unexpected llm response role")
)

// IsTimeoutError 判断错误是否由超时引起（context 超时、网络超时或提供商返回的超时信息）
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLLMTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
