// Package model はドメインモデルを定義する。
package model

import "errors"

// サインインパイプラインのエラー分類。
// ハンドラーはこれらをerrors.Isで判別し、HTTPステータスに変換する。
var (
	// ErrMissingCredential はリクエストにトークンフィールドが欠けていることを示す。
	// ユーザーが修正可能なエラーであり、400として返す。
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidAssertion はプロバイダートークンの署名・audience・有効期限の
	// いずれかの検証が失敗したことを示す。どの検査が失敗したかは外部に漏らさない。
	// 認証失敗でありリトライ対象ではない。401として返す。
	ErrInvalidAssertion = errors.New("invalid assertion")

	// ErrPersistence はストレージ利用不可、または想定外の制約違反を示す。
	// サインイン試行全体を中断し、トークンは発行しない。500として返す。
	ErrPersistence = errors.New("persistence failure")

	// ErrIssuance は署名シークレットが利用できないことを示す。
	// 未署名・弱署名のトークンを発行してはならないため、致命的エラーとして扱う。
	ErrIssuance = errors.New("token issuance failure")
)
