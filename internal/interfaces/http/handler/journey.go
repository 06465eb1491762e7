// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"journey-narrator/internal/application/narration"
	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/interfaces/http/dto"
	apperrors "journey-narrator/pkg/errors"
	"journey-narrator/pkg/logger"
)

const defaultKeepAlive = 15 * time.Second

// sessionStore 旅程会话管理（由 narration.SessionManager 实现）
type sessionStore interface {
	Start(ctx context.Context, journey *entity.Journey) (*narration.Session, <-chan entity.SegmentEvent)
	Current() (*narration.Session, error)
	Cancel() error
}

// JourneyHandler 旅程叙述处理器
type JourneyHandler struct {
	sessions     sessionStore
	defaultVoice string
	keepAlive    time.Duration
}

// NewJourneyHandler 创建旅程处理器
func NewJourneyHandler(sessions sessionStore, defaultVoice string) *JourneyHandler {
	return &JourneyHandler{
		sessions:     sessions,
		defaultVoice: defaultVoice,
		keepAlive:    defaultKeepAlive,
	}
}

// StartJourney 确认路线并开始叙述
// @Summary 开始旅程叙述
// @Description 取代当前旅程并开始新旅程；默认以 SSE 推送大纲、片段文本、片段音频与终止事件，stream=false 时立即返回旅程信息
// @Tags Journeys
// @Accept json
// @Produce text/event-stream
// @Param body body dto.StartJourneyRequest true "已确认路线"
// @Param stream query bool false "是否以 SSE 推送事件" default(true)
// @Success 200 "SSE stream"
// @Success 202 {object} dto.Response[entity.Journey]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/journeys [post]
func (h *JourneyHandler) StartJourney(c *gin.Context) {
	var req dto.StartJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	journey, err := req.ToJourney(h.defaultVoice)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidJourney) {
			dto.AppError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()))
			return
		}
		logger.Error(c.Request.Context(), "failed to build journey", err)
		dto.InternalError(c, "failed to start journey")
		return
	}

	// 旅程生命周期不随单个 HTTP 连接结束，断线后仍可通过快照接口获取片段
	ctx := context.WithoutCancel(c.Request.Context())
	_, events := h.sessions.Start(ctx, journey)
	logger.Info(c.Request.Context(), "journey started",
		"journey_id", journey.ID,
		"style", journey.Style,
		"duration_seconds", journey.TotalDurationSeconds,
	)

	if stream, _ := strconv.ParseBool(c.DefaultQuery("stream", "true")); !stream {
		go drain(events)
		dto.Accepted(c, journey)
		return
	}
	h.streamEvents(c, events)
}

// streamEvents 以 SSE 推送事件直到终止事件或客户端断开
func (h *JourneyHandler) streamEvents(c *gin.Context, events <-chan entity.SegmentEvent) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	// 服务端写超时不适用于长连接事件流
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	terminated := false
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				terminated = true
				return false
			}
			c.SSEvent(string(ev.Type), dto.ToStreamEvent(ev))
			terminated = ev.Terminal()
			return !terminated
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"ts": time.Now().Unix()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
	if !terminated {
		logger.Info(c.Request.Context(), "journey stream detached, narration continues in background")
	}
	go drain(events)
}

// drain 消费剩余事件，避免流水线因无人读取而阻塞
func drain(events <-chan entity.SegmentEvent) {
	for range events {
	}
}

// GetCurrentJourney 获取当前旅程快照
// @Summary 当前旅程快照
// @Tags Journeys
// @Produce json
// @Success 200 {object} dto.Response[dto.JourneyResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/journeys/current [get]
func (h *JourneyHandler) GetCurrentJourney(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	dto.Success(c, dto.ToJourneyResponse(sess.Story.Snapshot()))
}

// GetSegment 获取当前旅程的单个片段
// @Summary 获取片段
// @Tags Journeys
// @Produce json
// @Param index path int true "片段序号（从 1 开始）"
// @Success 200 {object} dto.Response[dto.SegmentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/journeys/current/segments/{index} [get]
func (h *JourneyHandler) GetSegment(c *gin.Context) {
	seg, ok := h.segment(c)
	if !ok {
		return
	}
	dto.Success(c, dto.ToSegmentResponse(seg))
}

// GetSegmentAudio 下载片段音频
// @Summary 下载片段音频
// @Tags Journeys
// @Produce audio/wav
// @Param index path int true "片段序号（从 1 开始）"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/journeys/current/segments/{index}/audio [get]
func (h *JourneyHandler) GetSegmentAudio(c *gin.Context) {
	seg, ok := h.segment(c)
	if !ok {
		return
	}
	if !seg.HasAudio() {
		appErr := apperrors.ErrAudioNotReady
		if seg.AudioErr != "" {
			appErr = appErr.WithDetail(seg.AudioErr)
		}
		dto.AppError(c, appErr)
		return
	}
	c.Header("Content-Disposition", "inline; filename=segment-"+strconv.Itoa(seg.Index)+".wav")
	c.Data(http.StatusOK, seg.Audio.ContentType, seg.Audio.Data)
}

// CancelJourney 取消当前旅程，已生成的片段保持可用
// @Summary 取消当前旅程
// @Tags Journeys
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/journeys/current [delete]
func (h *JourneyHandler) CancelJourney(c *gin.Context) {
	if err := h.sessions.Cancel(); err != nil {
		if errors.Is(err, narration.ErrNoActiveJourney) {
			dto.AppError(c, apperrors.ErrJourneyNotFound)
			return
		}
		logger.Error(c.Request.Context(), "failed to cancel journey", err)
		dto.InternalError(c, "failed to cancel journey")
		return
	}
	dto.NoContent(c)
}

func (h *JourneyHandler) currentSession(c *gin.Context) (*narration.Session, bool) {
	sess, err := h.sessions.Current()
	if err != nil {
		dto.AppError(c, apperrors.ErrJourneyNotFound)
		return nil, false
	}
	return sess, true
}

func (h *JourneyHandler) segment(c *gin.Context) (entity.Segment, bool) {
	index := dto.BindSegmentIndex(c)
	if index == 0 {
		dto.BadRequest(c, "segment index must be a positive integer")
		return entity.Segment{}, false
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return entity.Segment{}, false
	}
	seg, found := sess.Story.Segment(index)
	if !found {
		dto.AppError(c, apperrors.ErrSegmentNotFound)
		return entity.Segment{}, false
	}
	return seg, true
}
