// Package entity 定义领域实体
package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxJourneyDuration 上游路线规划对旅程时长的上限
const MaxJourneyDuration = 4 * time.Hour

// TravelMode 出行方式
type TravelMode string

const (
	TravelModeDriving   TravelMode = "driving"
	TravelModeWalking   TravelMode = "walking"
	TravelModeBicycling TravelMode = "bicycling"
	TravelModeTransit   TravelMode = "transit"
)

// ErrInvalidJourney 旅程参数不合法
var ErrInvalidJourney = errors.New("invalid journey")

// Journey 一次已确认路线的叙述会话输入，确认后不可变
type Journey struct {
	ID                   string     `json:"id"`
	StartLabel           string     `json:"start_label"`
	EndLabel             string     `json:"end_label"`
	TravelMode           TravelMode `json:"travel_mode"`
	TotalDurationSeconds float64    `json:"total_duration_seconds"`
	DistanceMeters       float64    `json:"distance_meters,omitempty"`
	Style                StoryStyle `json:"style"`
	VoiceID              string     `json:"voice_id,omitempty"`
	ConfirmedAt          time.Time  `json:"confirmed_at"`
}

// NewJourney 创建并校验旅程
func NewJourney(start, end string, mode TravelMode, durationSeconds, distanceMeters float64, style StoryStyle, voiceID string) (*Journey, error) {
	j := &Journey{
		ID:                   uuid.NewString(),
		StartLabel:           strings.TrimSpace(start),
		EndLabel:             strings.TrimSpace(end),
		TravelMode:           mode,
		TotalDurationSeconds: durationSeconds,
		DistanceMeters:       distanceMeters,
		Style:                style,
		VoiceID:              strings.TrimSpace(voiceID),
		ConfirmedAt:          time.Now(),
	}
	if j.TravelMode == "" {
		j.TravelMode = TravelModeDriving
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// Validate 校验旅程字段
func (j *Journey) Validate() error {
	if j.StartLabel == "" || j.EndLabel == "" {
		return fmt.Errorf("%w: start and end labels are required", ErrInvalidJourney)
	}
	if j.TotalDurationSeconds < 0 || j.TotalDurationSeconds > MaxJourneyDuration.Seconds() {
		return fmt.Errorf("%w: duration %.0fs outside [0, %.0fs]", ErrInvalidJourney, j.TotalDurationSeconds, MaxJourneyDuration.Seconds())
	}
	return nil
}

// Duration 旅程时长
func (j *Journey) Duration() time.Duration {
	return time.Duration(j.TotalDurationSeconds * float64(time.Second))
}

// Describe 旅程的自然语言描述，用于提示词
func (j *Journey) Describe() string {
	minutes := int(j.TotalDurationSeconds/60 + 0.5)
	return fmt.Sprintf("a %d-minute %s journey from %s to %s", minutes, j.TravelMode, j.StartLabel, j.EndLabel)
}
