package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// BindSegmentIndex 解析路径中的片段序号，非法时返回 0
func BindSegmentIndex(c *gin.Context) int {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 1 {
		return 0
	}
	return index
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
