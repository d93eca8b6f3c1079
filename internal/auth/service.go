// Package auth は外部IDプロバイダー連携によるサインインパイプラインを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/idbroker/internal/model"
	"github.com/hitoshi/idbroker/internal/repository"
	"github.com/hitoshi/idbroker/internal/token"
	"github.com/hitoshi/idbroker/internal/verifier"
)

// Recorder はサインイン結果のメトリクス記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type Recorder interface {
	RecordSignInSuccess(provider string)
	RecordSignInFailure(provider, reason string)
	RecordSignInDuration(d time.Duration)
	RecordTokenIssued()
}

// Result はサインイン成功時の結果を表す。
// 発行済みトークンと、その構築に使用したクレーム、正規ユーザーを含む。
type Result struct {
	Token  string
	Claims *token.Claims
	User   *model.User
}

// Service はサインインに関するビジネスロジックを提供する。
// パイプラインは 検証 → 照合 → 発行 の順で、最初の失敗で短絡する。
// 検証が失敗した場合、ストレージへの書き込みは一切行われない。
type Service struct {
	verifiers map[string]verifier.Verifier
	userRepo  repository.UserRepository
	issuer    *token.Issuer
	recorder  Recorder
}

// NewService はServiceを生成する。
// verifiersはプロバイダー識別子をキーとする検証器のレジストリ。
func NewService(
	verifiers map[string]verifier.Verifier,
	userRepo repository.UserRepository,
	issuer *token.Issuer,
	recorder Recorder,
) *Service {
	return &Service{
		verifiers: verifiers,
		userRepo:  userRepo,
		issuer:    issuer,
		recorder:  recorder,
	}
}

// SignIn はプロバイダー発行トークンを検証し、正規ユーザーを解決して
// セッショントークンを発行する。
// 1リクエスト内での自動リトライは行わない。失敗時はクライアントが
// サインインを再実行する。
func (s *Service) SignIn(ctx context.Context, provider, rawToken string) (*Result, error) {
	start := time.Now()
	defer func() {
		if s.recorder != nil {
			s.recorder.RecordSignInDuration(time.Since(start))
		}
	}()

	if rawToken == "" {
		s.recordFailure(provider, "missing_credential")
		return nil, fmt.Errorf("%w: id token is required", model.ErrMissingCredential)
	}

	// 1. 宣言されたプロバイダーに対応する検証器へディスパッチ
	v, ok := s.verifiers[provider]
	if !ok {
		s.recordFailure(provider, "unknown_provider")
		return nil, fmt.Errorf("%w: unsupported provider %q", model.ErrInvalidAssertion, provider)
	}

	// 2. トークンの検証。失敗時はここで短絡し、ストレージには触れない。
	assertion, err := v.Verify(ctx, rawToken)
	if err != nil {
		s.recordFailure(provider, "invalid_assertion")
		slog.Warn("identity assertion rejected",
			slog.String("provider", provider),
		)
		return nil, err
	}

	// 3. 検証済みemailを正規ユーザーへ照合（アトミックUPSERT）
	user, err := s.userRepo.Upsert(ctx, assertion.Email, assertion.Provider)
	if err != nil {
		s.recordFailure(provider, "persistence")
		slog.Error("user reconciliation failed",
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// 4. セッショントークンの発行
	tokenStr, claims, err := s.issuer.Issue(user)
	if err != nil {
		s.recordFailure(provider, "issuance")
		slog.Error("session token issuance failed",
			slog.String("provider", provider),
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordSignInSuccess(provider)
		s.recorder.RecordTokenIssued()
	}
	slog.Info("user signed in",
		slog.String("provider", provider),
		slog.String("user_id", user.ID),
	)

	return &Result{
		Token:  tokenStr,
		Claims: claims,
		User:   user,
	}, nil
}

// CurrentUser はセッショントークンのクレームから現在のユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}
	return user, nil
}

// recordFailure はサインイン失敗をメトリクスに記録する。
func (s *Service) recordFailure(provider, reason string) {
	if s.recorder != nil {
		s.recorder.RecordSignInFailure(provider, reason)
	}
}
