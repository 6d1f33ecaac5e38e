package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// The access_tokens table is append-only history; renewals insert new rows
// and Latest always reads the newest one.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Latest returns the credential with the greatest expiry for the given
// client id. Returns nil, nil if no credential has ever been stored.
func (r *CredentialRepo) Latest(ctx context.Context, clientID string) (*model.Credential, error) {
	const query = `SELECT token_id, client_id, client_secret, access_token, created_at, expires_at
		FROM access_tokens WHERE client_id = ?
		ORDER BY expires_at DESC LIMIT 1`

	var cred model.Credential
	var createdAt, expiresAt string
	err := r.db.Reader.QueryRowContext(ctx, query, clientID).Scan(
		&cred.ID, &cred.ClientID, &cred.ClientSecret, &cred.AccessToken, &createdAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("latest credential", err)
	}

	if cred.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, storageErr("parse credential created_at", err)
	}
	if cred.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, storageErr("parse credential expires_at", err)
	}

	return &cred, nil
}

// Insert appends a newly issued credential row.
func (r *CredentialRepo) Insert(ctx context.Context, cred model.Credential) error {
	const query = `INSERT INTO access_tokens (client_id, access_token, client_secret, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.ClientID,
		cred.AccessToken,
		cred.ClientSecret,
		cred.CreatedAt.UTC().Format(timeFormat),
		cred.ExpiresAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return storageErr("insert credential", err)
	}

	return nil
}
