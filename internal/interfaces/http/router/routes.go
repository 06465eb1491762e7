package router

import (
	"github.com/gin-gonic/gin"

	"journey-narrator/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由；startLimit 仅作用于旅程启动
func RegisterV1Routes(v1 *gin.RouterGroup, journeyHandler *handler.JourneyHandler, startLimit gin.HandlerFunc) {
	journeys := v1.Group("/journeys")
	{
		journeys.POST("", startLimit, journeyHandler.StartJourney)

		current := journeys.Group("/current")
		current.GET("", journeyHandler.GetCurrentJourney)
		current.DELETE("", journeyHandler.CancelJourney)
		current.GET("/segments/:index", journeyHandler.GetSegment)
		current.GET("/segments/:index/audio", journeyHandler.GetSegmentAudio)
	}
}
