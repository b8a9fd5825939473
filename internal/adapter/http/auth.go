package httpadapter

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// IssueToken signs an HS256 operator token valid for ttl.
func IssueToken(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verifyToken(secret []byte, raw string) error {
	_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	return err
}

func jwtMiddleware(secret []byte) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.Next(c)
			return
		}
		header := strings.TrimSpace(string(ctx.GetHeader("Authorization")))
		raw, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || strings.TrimSpace(raw) == "" {
			writeErrorBody(ctx, consts.StatusUnauthorized, "missing_token", "missing bearer token")
			ctx.Abort()
			return
		}
		if err := verifyToken(secret, strings.TrimSpace(raw)); err != nil {
			writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_token", "invalid bearer token")
			ctx.Abort()
			return
		}
		ctx.Next(c)
	}
}
