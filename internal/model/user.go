// Package model はドメインモデルを定義する。
package model

import "time"

// プロバイダー識別子。provider_tagカラムとリクエストパスの両方で使用する。
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

// User はサービス利用ユーザーの正規レコードを表す。
// emailをユニークな自然キーとし、1メールアドレスにつき1行のみ存在する。
type User struct {
	ID          string
	Email       string
	ProviderTag string // 最後にサインインしたプロバイダー。上書きされ、蓄積されない。
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VerifiedAssertion はプロバイダー発行トークンの検証結果を表す。
// 永続化されず、1リクエストの処理中のみ存在する。
type VerifiedAssertion struct {
	Email    string // 署名・audience・有効期限の検証後に抽出されたメールアドレス
	Provider string // このassertionを生成したプロバイダー（ProviderGoogle / ProviderApple）
}
