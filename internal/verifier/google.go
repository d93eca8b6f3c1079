package verifier

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/hitoshi/idbroker/internal/model"
)

// validateFunc はGoogle IDトークンの検証関数。
// テスト用にオーバーライド可能。
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier はGoogle発行のIDトークンを検証する。
// 署名はGoogleの公開鍵に対して検証され、鍵のキャッシュとローテーションは
// idtokenライブラリが管理する。
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleVerifier はGoogleVerifierを生成する。
// clientIDはトークンのaudienceと一致すべきクライアントID。
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify はGoogle IDトークンを検証し、emailクレームを抽出する。
// 署名・audience・有効期限のいずれかが不正な場合はErrInvalidAssertionを返す。
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*model.VerifiedAssertion, error) {
	payload, err := v.validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google token validation failed: %v", model.ErrInvalidAssertion, err)
	}

	email, ok := payload.Claims["email"].(string)
	if !ok || email == "" {
		return nil, fmt.Errorf("%w: google token has no email claim", model.ErrInvalidAssertion)
	}

	return &model.VerifiedAssertion{
		Email:    email,
		Provider: model.ProviderGoogle,
	}, nil
}

// compile-time interface check
var _ Verifier = (*GoogleVerifier)(nil)
