// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/idbroker/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Upsert は検証済みemailに対応する正規ユーザーを返す。
	// 行が存在しない場合は作成し、存在する場合はprovider_tagのみを更新する。
	// 挿入と更新はemailのユニーク制約を利用した単一のアトミックな
	// ストレージ操作であり、同一emailへの同時サインインでも行は重複しない。
	Upsert(ctx context.Context, email, providerTag string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}
