// Package token はセッショントークンの発行と検証を提供する。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/idbroker/internal/model"
)

// Claims はセッショントークンに含めるクレームを表す。
// ユーザーID（sub）、email、発行時刻、有効期限を持つ。
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer は署名付きセッショントークンを発行する。
// 署名シークレットは構築時に注入し、プロセス全体で1つだけ存在する。
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer はIssuerを生成する。
// シークレットが空の場合は設定ミスとしてエラーを返す。
// フォールバックのデフォルトシークレットは存在しない。
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: signing secret is empty", model.ErrIssuance)
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue は指定ユーザーのセッショントークンを発行する。
// 有効期限は発行時刻からちょうどTTL後に設定する。
// 戻り値は署名済みトークン文字列と、その構築に使用したクレーム。
func (i *Issuer) Issue(user *model.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", model.ErrIssuance, err)
	}

	return tokenStr, claims, nil
}

// Verify はセッショントークンを検証し、クレームを返す。
// 署名不一致、改ざん、有効期限切れはすべてエラーとなる。
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session token: %w", err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
