// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "journey_narrator"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 60, 600},
		},
		[]string{"method", "path"},
	)

	// 叙述流水线指标
	JourneysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "journeys_total",
			Help:      "Total number of narrated journeys by terminal state",
		},
		[]string{"style", "state"},
	)

	ActiveJourneys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "active_journeys",
			Help:      "Number of journeys currently being narrated",
		},
	)

	SegmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "segments_total",
			Help:      "Total number of generated segments",
		},
		[]string{"style", "kind"}, // kind: generated/fallback
	)

	OutlineFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "outline_fallback_total",
			Help:      "Number of outlines replaced by the generic placeholder plan",
		},
	)

	StageRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_retries_total",
			Help:      "Number of retried pipeline stage attempts",
		},
		[]string{"stage"},
	)

	SegmentGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "segment_generation_duration_seconds",
			Help:      "Segment text generation duration in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	// 音频合成指标
	SynthesisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "audio",
			Name:      "synthesis_duration_seconds",
			Help:      "Audio synthesis duration in seconds",
			Buckets:   []float64{.01, .1, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "status"},
	)

	SynthesizedAudioSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audio",
			Name:      "synthesized_seconds_total",
			Help:      "Total seconds of synthesized narration audio",
		},
		[]string{"provider"},
	)

	// LLM 指标
	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_used_total",
			Help:      "Total tokens used for LLM calls",
		},
		[]string{"workflow", "provider", "model", "type"}, // type: prompt/completion
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"workflow", "provider", "model"},
	)

	LLMCallTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_total",
			Help:      "Total number of LLM calls",
		},
		[]string{"workflow", "provider", "model", "status"},
	)

	// 事件流指标
	RedisStreamPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "stream_published_total",
			Help:      "Total number of segment events published to Redis streams",
		},
		[]string{"stream", "status"},
	)

	// NATSPublished NATS 片段事件发布计数
	NATSPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nats",
			Name:      "published_total",
			Help:      "Total number of segment events published to NATS subjects",
		},
		[]string{"status"},
	)

	// EventsDroppedTotal 发布队列已满而未对外发布的事件
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_events_dropped_total",
			Help:      "Total number of segment events not relayed to external publishers",
		},
		[]string{"type"},
	)
)
