package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"journey-narrator/pkg/logger"
)

// JWKSVerifier 以远端 JWKS 公钥验证 RS256 访问令牌（签发方为外部身份服务）
type JWKSVerifier struct {
	jwks   *keyfunc.JWKS
	issuer string
}

// NewJWKSVerifier 拉取 JWKS 并在后台定期刷新
func NewJWKSVerifier(jwksURL, issuer string) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			logger.Warn(context.Background(), "jwks refresh failed", "url", jwksURL, "error", err.Error())
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
	}
	return NewJWKSVerifierFromKeys(jwks, issuer), nil
}

// NewJWKSVerifierFromKeys 使用已加载的 JWKS
func NewJWKSVerifierFromKeys(jwks *keyfunc.JWKS, issuer string) *JWKSVerifier {
	return &JWKSVerifier{jwks: jwks, issuer: issuer}
}

// ParseToken 解析并验证 Token
func (v *JWKSVerifier) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.jwks.Keyfunc, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// Close 停止后台刷新
func (v *JWKSVerifier) Close() {
	v.jwks.EndBackground()
}
