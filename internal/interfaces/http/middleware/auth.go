// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "journey-narrator/pkg/errors"
	"journey-narrator/pkg/logger"
	"journey-narrator/pkg/utils"
)

// SubjectKey 调用方标识在 gin.Context 中的键
const SubjectKey = "subject"

// TokenParser 访问令牌验证（utils.JWTManager 与 utils.JWKSVerifier 均实现）
type TokenParser interface {
	ParseToken(token string) (*utils.Claims, error)
}

// AuthConfig 认证配置
type AuthConfig struct {
	Secret    string
	Issuer    string
	SkipPaths []string
	Enabled   bool
	// Parser 非空时优先使用，否则以 Secret 构造 HS256 验证
	Parser TokenParser
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}

// Auth Bearer JWT 认证中间件
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	parser := cfg.Parser
	if parser == nil {
		parser = utils.NewJWTManager(cfg.Secret, cfg.Issuer)
	}

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.ErrTokenMissing)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperrors.ErrTokenInvalid.WithDetail("invalid authorization format"))
			return
		}

		claims, err := parser.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				abortWith(c, apperrors.ErrTokenExpired)
				return
			}
			abortWith(c, apperrors.ErrTokenInvalid)
			return
		}

		c.Set(SubjectKey, claims.Subject)
		ctx := logger.WithContext(c.Request.Context(), logger.SubjectKey, claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func skipPath(path string, skip []string) bool {
	for _, p := range skip {
		if p != "" && (path == p || strings.HasPrefix(path, p+"/")) {
			return true
		}
	}
	return false
}

// abortWith 终止请求并按应用错误返回
func abortWith(c *gin.Context, err *apperrors.AppError) {
	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	body := gin.H{
		"code":       status,
		"message":    err.Message,
		"error_code": string(err.Code),
		"trace_id":   c.GetString("trace_id"),
	}
	if err.Detail != "" {
		body["details"] = err.Detail
	}
	c.AbortWithStatusJSON(status, body)
}
