package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/idbroker/internal/model"
)

// upsertUserQuery はユーザーのアトミックなUPSERT文。
// emailのユニーク制約に対するON CONFLICTで挿入と更新を1文に統合しており、
// read-then-writeは行わない。同一の新規emailへの同時サインインでは片方の
// INSERTが勝ち、もう片方は衝突を検知してprovider_tagの更新にマージされる。
// アプリケーション側のロックは不要。
const upsertUserQuery = `
INSERT INTO users (id, email, provider_tag, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (email) DO UPDATE
SET provider_tag = EXCLUDED.provider_tag,
    updated_at   = now()
RETURNING id, email, provider_tag, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Upsert はemailをキーに正規ユーザーを解決する。
// 新規emailの場合は候補UUIDとともに行を挿入し、既存emailの場合は
// provider_tagのみ更新する。いずれの場合も操作後の行を返すため、
// 最初の挿入で確定したidは以後のサインインでも安定して返る。
func (r *PostgresUserRepo) Upsert(ctx context.Context, email, providerTag string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, upsertUserQuery,
		uuid.New().String(), email, providerTag,
	).Scan(&user.ID, &user.Email, &user.ProviderTag, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		// 想定される衝突はON CONFLICTで吸収済みのため、ここに到達する
		// エラーはすべてストレージ障害または想定外の制約違反。
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, fmt.Errorf("%w: upsert user failed (sqlstate %s)", model.ErrPersistence, pqErr.Code)
		}
		return nil, fmt.Errorf("%w: upsert user failed: %v", model.ErrPersistence, err)
	}

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, provider_tag, created_at, updated_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.ProviderTag, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user by ID failed: %v", model.ErrPersistence, err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
