package dto

import (
	"strings"
	"time"

	"journey-narrator/internal/domain/entity"
)

// StartJourneyRequest 已确认路线的叙述请求（路线规划结果由前端给出）
type StartJourneyRequest struct {
	StartLabel      string  `json:"start_label" binding:"required,max=200"`
	EndLabel        string  `json:"end_label" binding:"required,max=200"`
	TravelMode      string  `json:"travel_mode" binding:"omitempty,max=16"`
	DurationSeconds float64 `json:"duration_seconds" binding:"gte=0"`
	DistanceMeters  float64 `json:"distance_meters" binding:"gte=0"`
	Style           string  `json:"style" binding:"max=32"`
	VoiceID         string  `json:"voice_id" binding:"max=64"`
}

// ToJourney 转换为领域实体，defaultVoice 在未指定音色时使用
func (r *StartJourneyRequest) ToJourney(defaultVoice string) (*entity.Journey, error) {
	voice := r.VoiceID
	if strings.TrimSpace(voice) == "" {
		voice = defaultVoice
	}
	return entity.NewJourney(
		r.StartLabel,
		r.EndLabel,
		entity.TravelMode(strings.ToLower(strings.TrimSpace(r.TravelMode))),
		r.DurationSeconds,
		r.DistanceMeters,
		entity.ParseStoryStyle(r.Style),
		voice,
	)
}

// SegmentResponse 片段视图，音频以下载地址给出
type SegmentResponse struct {
	Index      int            `json:"index"`
	Text       string         `json:"text"`
	Fallback   bool           `json:"fallback,omitempty"`
	Audio      *AudioResponse `json:"audio,omitempty"`
	AudioError string         `json:"audio_error,omitempty"`
}

// AudioResponse 音频元数据
type AudioResponse struct {
	URL             string  `json:"url"`
	ContentType     string  `json:"content_type"`
	SampleRate      int     `json:"sample_rate"`
	Channels        int     `json:"channels"`
	DurationSeconds float64 `json:"duration_seconds"`
	Bytes           int     `json:"bytes"`
}

// JourneyResponse 当前旅程快照
type JourneyResponse struct {
	Journey  *entity.Journey   `json:"journey"`
	State    string            `json:"state"`
	Reason   string            `json:"reason,omitempty"`
	Outline  []string          `json:"outline,omitempty"`
	Segments []SegmentResponse `json:"segments"`
}

// ToSegmentResponse 转换片段
func ToSegmentResponse(seg entity.Segment) SegmentResponse {
	resp := SegmentResponse{
		Index:      seg.Index,
		Text:       seg.Text,
		Fallback:   seg.Fallback,
		AudioError: seg.AudioErr,
	}
	if seg.Audio != nil {
		resp.Audio = &AudioResponse{
			URL:             SegmentAudioURL(seg.Index),
			ContentType:     seg.Audio.ContentType,
			SampleRate:      seg.Audio.SampleRate,
			Channels:        seg.Audio.Channels,
			DurationSeconds: seg.Audio.Duration.Round(time.Millisecond).Seconds(),
			Bytes:           seg.Audio.Size(),
		}
	}
	return resp
}

// ToJourneyResponse 转换快照
func ToJourneyResponse(snap entity.StorySnapshot) JourneyResponse {
	segments := make([]SegmentResponse, 0, len(snap.Segments))
	for _, seg := range snap.Segments {
		segments = append(segments, ToSegmentResponse(seg))
	}
	return JourneyResponse{
		Journey:  snap.Journey,
		State:    snap.State.String(),
		Reason:   snap.Reason,
		Outline:  snap.Outline,
		Segments: segments,
	}
}

// SegmentAudioURL 片段音频下载地址
func SegmentAudioURL(index int) string {
	return "/v1/journeys/current/segments/" + itoa(index) + "/audio"
}

// StreamEvent SSE 事件载荷
type StreamEvent struct {
	JourneyID    string           `json:"journey_id"`
	Outline      []string         `json:"outline,omitempty"`
	SegmentCount int              `json:"segment_count,omitempty"`
	Segment      *SegmentResponse `json:"segment,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	Playable     int              `json:"playable,omitempty"`
	Partial      bool             `json:"partial,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// ToStreamEvent 转换片段事件
func ToStreamEvent(ev entity.SegmentEvent) StreamEvent {
	out := StreamEvent{
		JourneyID:    ev.JourneyID,
		Outline:      ev.Outline,
		SegmentCount: ev.SegmentCount,
		Reason:       ev.Reason,
		Playable:     ev.Playable,
		Partial:      ev.Partial,
		Timestamp:    ev.Timestamp,
	}
	if ev.Segment != nil {
		seg := ToSegmentResponse(*ev.Segment)
		out.Segment = &seg
	}
	return out
}
