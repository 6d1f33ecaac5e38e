// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"vinylvault/internal/domain/model"
	"vinylvault/internal/domain/port/driven"
)

// CredentialManager owns the lifecycle of the upstream bearer credential:
// it hands out the cached token while it is valid and renews it when it has
// expired. Renewal is single-flighted per client id, so concurrent callers
// observing an expired token share one upstream token call and one
// persisted row.
type CredentialManager struct {
	clientID     string
	clientSecret string
	store        driven.CredentialStore
	upstream     driven.SpotifyClient
	renewals     singleflight.Group
	now          func() time.Time
}

// NewCredentialManager creates a CredentialManager for one client identity.
func NewCredentialManager(clientID, clientSecret string, store driven.CredentialStore, upstream driven.SpotifyClient) *CredentialManager {
	return &CredentialManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		store:        store,
		upstream:     upstream,
		now:          time.Now,
	}
}

// Obtain returns a currently valid access token. The latest persisted
// credential is reused as long as its expiry is in the future; validity is
// decided from the stored expiry alone, without an upstream call. A missing
// or expired credential triggers exactly one renewal even under concurrent
// use.
func (m *CredentialManager) Obtain(ctx context.Context) (string, error) {
	if m.clientID == "" || m.clientSecret == "" {
		return "", fmt.Errorf("client id/secret not configured: %w", model.ErrCredential)
	}

	latest, err := m.store.Latest(ctx, m.clientID)
	if err != nil {
		return "", err
	}
	if latest != nil && latest.ValidAt(m.now()) {
		return latest.AccessToken, nil
	}

	token, err, _ := m.renewals.Do(m.clientID, func() (any, error) {
		// Re-check inside the flight: a caller that serialized behind a
		// finished renewal picks up the fresh row instead of renewing again.
		latest, err := m.store.Latest(ctx, m.clientID)
		if err != nil {
			return "", err
		}
		if latest != nil && latest.ValidAt(m.now()) {
			return latest.AccessToken, nil
		}
		return m.renew(ctx)
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// renew calls the upstream token endpoint, persists the issued credential
// as a new history row, and returns the token.
func (m *CredentialManager) renew(ctx context.Context) (string, error) {
	grant, err := m.upstream.RequestToken(ctx, m.clientID, m.clientSecret)
	if err != nil {
		return "", err
	}

	issued := m.now()
	cred := model.Credential{
		ClientID:     m.clientID,
		ClientSecret: m.clientSecret,
		AccessToken:  grant.AccessToken,
		CreatedAt:    issued,
		ExpiresAt:    issued.Add(time.Duration(grant.ExpiresIn) * time.Second),
	}
	if err := m.store.Insert(ctx, cred); err != nil {
		return "", err
	}

	slog.Info("credential renewed",
		"client_id", m.clientID,
		"expires_at", cred.ExpiresAt,
	)

	return grant.AccessToken, nil
}
