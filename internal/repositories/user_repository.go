package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zekariasasaminew/campusEx/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// UserRepository is the user directory: display names resolved in batch.
type UserRepository interface {
	BulkDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error)
}

// SessionRepository validates bearer tokens against stored sessions.
type SessionRepository interface {
	LookupSession(ctx context.Context, token string) (string, error)
}

// UserRepo is a sqlx implementation of UserRepository and SessionRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// BulkDisplayNames resolves display names for many users in one query.
func (r *UserRepo) BulkDisplayNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return names, nil
	}

	query, args, err := sqlx.In(`SELECT id, display_name FROM users WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}
	return names, nil
}

// LookupSession returns the user id behind an unexpired session token.
func (r *UserRepo) LookupSession(ctx context.Context, token string) (string, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session,
		`SELECT token, user_id, expires_at FROM sessions WHERE token=$1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", err
	}
	if time.Now().After(session.ExpiresAt) {
		return "", ErrSessionNotFound
	}
	return session.UserID, nil
}
