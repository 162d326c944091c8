package store

import (
	"context"
	"database/sql"
	"strings"

	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	getUserQuery    = "SELECT * FROM users WHERE id = ?"
	createUserQuery = `
		INSERT INTO users (id, display_name, is_admin) VALUES
		(:id, :display_name, :is_admin)
	`
	findUsersByPrefixQuery = `
		SELECT * FROM users
		WHERE display_name LIKE ? ESCAPE '\'
		ORDER BY display_name COLLATE NOCASE
		LIMIT ?
	`
	creditAccountQuery       = "UPDATE users SET coins = coins + ? WHERE id = ?"
	insertTransactionQuery   = "INSERT INTO transactions (id, user_id, amount, reason) VALUES (?, ?, ?, ?)"
	recordWinQuery           = "UPDATE users SET wins = wins + 1 WHERE id = ?"
	recordParticipationQuery = "UPDATE users SET participations = participations + 1 WHERE id = ?"
	listTransactionsQuery    = "SELECT * FROM transactions WHERE user_id = ? ORDER BY created_at, rowid"
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, getUserQuery, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(ErrUserNotFound, "id %q", id)
		}
		return nil, persistenceError(err, "get user %q", id)
	}
	return &user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	if _, err := s.db.NamedExecContext(ctx, createUserQuery, user); err != nil {
		return persistenceError(err, "create user %q", user.ID)
	}
	return nil
}

// FindUsersByNamePrefix matches display names case-insensitively.
func (s *UserStore) FindUsersByNamePrefix(ctx context.Context, prefix string, limit int) ([]users.User, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	found := []users.User{}
	if err := s.db.SelectContext(ctx, &found, findUsersByPrefixQuery, escaped+"%", limit); err != nil {
		return nil, persistenceError(err, "find users by prefix")
	}
	return found, nil
}

// CreditAccount adds amount to the balance and records a ledger line in the
// same transaction.
func (s *UserStore) CreditAccount(ctx context.Context, userID string, amount int64, reason string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistenceError(err, "begin credit")
	}
	defer tx.Rollback()

	if err := execOne(ctx, tx, userID, creditAccountQuery, amount, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, insertTransactionQuery, uuid.NewString(), userID, amount, reason); err != nil {
		return persistenceError(err, "record transaction for %q", userID)
	}
	if err := tx.Commit(); err != nil {
		return persistenceError(err, "commit credit for %q", userID)
	}
	return nil
}

func (s *UserStore) RecordWin(ctx context.Context, userID string) error {
	return execOne(ctx, s.db, userID, recordWinQuery, userID)
}

func (s *UserStore) RecordParticipation(ctx context.Context, userID string) error {
	return execOne(ctx, s.db, userID, recordParticipationQuery, userID)
}

func (s *UserStore) ListTransactions(ctx context.Context, userID string) ([]users.Transaction, error) {
	txs := []users.Transaction{}
	if err := s.db.SelectContext(ctx, &txs, listTransactionsQuery, userID); err != nil {
		return nil, persistenceError(err, "list transactions for %q", userID)
	}
	return txs, nil
}

// execOne runs an update that must hit exactly the user's row.
func execOne(ctx context.Context, db sqlx.ExecerContext, userID, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistenceError(err, "update user %q", userID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrUserNotFound, "id %q", userID)
	}
	return nil
}
