package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/idbroker/internal/model"
)

const (
	defaultAppleJWKSURL = "https://appleid.apple.com/auth/keys"
	appleIssuer         = "https://appleid.apple.com"
)

// AppleConfig はAppleVerifierの設定。
type AppleConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なJWKSエンドポイント
	JWKSURL string
}

// AppleVerifier はApple発行のIDトークンを検証する。
// 署名鍵はAppleのJWKSエンドポイントから取得し、キャッシュとバックグラウンド
// 更新はkeyfuncが管理する。鍵取得はコンテキストでキャンセル可能であり、
// ロックを保持したままネットワークI/Oを行わない。
type AppleVerifier struct {
	clientID string
	keys     keyfunc.Keyfunc
}

// NewAppleVerifier はAppleVerifierを生成する。
// JWKSの初回取得は同期的に行い、失敗した場合はエラーを返す。
// 以降の更新はバックグラウンドで行われ、失敗はログに記録するのみ。
// ctxは鍵キャッシュのバックグラウンド更新の生存期間を制御する。
func NewAppleVerifier(ctx context.Context, config AppleConfig) (*AppleVerifier, error) {
	if config.JWKSURL == "" {
		config.JWKSURL = defaultAppleJWKSURL
	}

	store, err := jwkset.NewStorageFromHTTP(config.JWKSURL, jwkset.HTTPClientStorageOptions{
		Ctx:             ctx,
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(ctx context.Context, err error) {
			slog.Error("apple JWKS refresh failed", slog.String("error", err.Error()))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load apple JWKS: %w", err)
	}

	keys, err := keyfunc.New(keyfunc.Options{
		Ctx:     ctx,
		Storage: store,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build apple keyfunc: %w", err)
	}

	return &AppleVerifier{
		clientID: config.ClientID,
		keys:     keys,
	}, nil
}

// Verify はApple IDトークンを検証し、emailクレームを抽出する。
// 署名・audience・issuer・有効期限のいずれかが不正な場合はErrInvalidAssertionを返す。
// 期限切れトークンに猶予期間はない。
// emailクレームが存在しない場合も検証失敗として扱う。
func (v *AppleVerifier) Verify(ctx context.Context, rawToken string) (*model.VerifiedAssertion, error) {
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(rawToken, claims, v.keys.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithAudience(v.clientID),
		jwt.WithIssuer(appleIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: apple token validation failed: %v", model.ErrInvalidAssertion, err)
	}
	if !tok.Valid {
		return nil, fmt.Errorf("%w: apple token is not valid", model.ErrInvalidAssertion)
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return nil, fmt.Errorf("%w: apple token has no email claim", model.ErrInvalidAssertion)
	}

	return &model.VerifiedAssertion{
		Email:    email,
		Provider: model.ProviderApple,
	}, nil
}

// compile-time interface check
var _ Verifier = (*AppleVerifier)(nil)
