package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "journey-narrator/internal/workflow/model"
	"journey-narrator/internal/workflow/node"
	workflowport "journey-narrator/internal/workflow/port"
)

// generateOnce 发送单条 user 消息并等待回复，超时转换为 node.ErrLLMTimeout。
func generateOnce(ctx context.Context, factory workflowport.ChatModelFactory, msgs []*schema.Message, opts wfmodel.GenerationOptions) (*schema.Message, error) {
	chatModel, err := factory.Get(ctx, strings.TrimSpace(opts.Provider))
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	outMsg, err := chatModel.Generate(callCtx, msgs, buildModelOptions(opts)...)
	if err != nil {
		// 调用方主动取消不算超时
		if ctx.Err() == nil && (errors.Is(callCtx.Err(), context.DeadlineExceeded) || node.IsTimeoutError(err)) {
			return nil, fmt.Errorf("%w after %s: %v", node.ErrLLMTimeout, opts.Timeout, err)
		}
		return nil, err
	}
	if outMsg == nil {
		return nil, node.ErrEmptyResponse
	}
	return outMsg, nil
}

func buildModelOptions(opts wfmodel.GenerationOptions) []model.Option {
	out := make([]model.Option, 0, 3)
	if opts.Temperature != nil {
		out = append(out, model.WithTemperature(*opts.Temperature))
	}
	if opts.MaxTokens != nil {
		out = append(out, model.WithMaxTokens(*opts.MaxTokens))
	}
	if strings.TrimSpace(opts.Model) != "" {
		out = append(out, model.WithModel(strings.TrimSpace(opts.Model)))
	}
	return out
}
