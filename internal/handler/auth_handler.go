// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/idbroker/internal/auth"
	"github.com/hitoshi/idbroker/internal/middleware"
	"github.com/hitoshi/idbroker/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignIn(ctx context.Context, provider, rawToken string) (*auth.Result, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler はサインイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	IDToken string `json:"idToken"`
}

// userBody はレスポンスに含めるユーザー表現。
// provider_tagや監査タイムスタンプは公開しない。
type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignInGoogle はGoogle IDトークンによるサインインを処理する。
// POST /api/auth/google
func (h *AuthHandler) SignInGoogle(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, model.ProviderGoogle, "Invalid Google token")
}

// SignInApple はApple IDトークンによるサインインを処理する。
// POST /api/auth/apple
func (h *AuthHandler) SignInApple(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, model.ProviderApple, "Invalid Apple token")
}

// signIn は両プロバイダー共通のサインイン処理。
// エラー種別ごとにレスポンス形状が異なる点に注意:
//
//	400: {"error": "Missing idToken"}
//	401: {"ok": false, "error": "Invalid <Provider> token"}
//	500: {"ok": false, "error": "Internal server error"}
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, provider, invalidMsg string) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		// トークン欠落はサービス層に到達する前に拒否する
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Missing idToken",
		})
		return
	}

	result, err := h.service.SignIn(r.Context(), provider, req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingCredential):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": "Missing idToken",
			})
		case errors.Is(err, model.ErrInvalidAssertion):
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"ok":    false,
				"error": invalidMsg,
			})
		default:
			slog.Error("sign-in failed",
				slog.String("provider", provider),
				slog.String("error", err.Error()),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"ok":    false,
				"error": "Internal server error",
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"token": result.Token,
		"user": userBody{
			ID:    result.User.ID,
			Email: result.User.Email,
		},
	})
}

// Me は現在の認証済みユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"email":    user.Email,
		"provider": user.ProviderTag,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
