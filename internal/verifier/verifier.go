// Package verifier は外部IDプロバイダー発行トークンの検証を提供する。
package verifier

import (
	"context"

	"github.com/hitoshi/idbroker/internal/model"
)

// Verifier はプロバイダー発行のIDトークンを検証するインターフェース。
// プロバイダーごと（Google, Apple）に1実装を持つ。
type Verifier interface {
	// Verify はトークン文字列の署名・audience・有効期限を検証し、
	// 検証済みのassertionを返す。いずれかの検証に失敗した場合は
	// model.ErrInvalidAssertionをラップしたエラーを返す。
	// 呼び出し元はこれを認証失敗として扱い、リトライしてはならない。
	Verify(ctx context.Context, rawToken string) (*model.VerifiedAssertion, error)
}
