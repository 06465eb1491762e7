package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 定义工作流层对 LLM ChatModel 的最小依赖（port）。
// name 为空时返回默认提供商。
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// StaticChatModelFactory 对任意提供商名称都返回同一个 ChatModel，用于 CLI 与测试。
type StaticChatModelFactory struct {
	Model model.BaseChatModel
}

// Get 实现 ChatModelFactory
func (f StaticChatModelFactory) Get(_ context.Context, _ string) (model.BaseChatModel, error) {
	return f.Model, nil
}
