package driven

import (
	"context"

	"vinylvault/internal/domain/model"
)

// CredentialStore defines the driven port for access-token persistence.
// The table is append-only history: Insert never replaces earlier rows, and
// Latest picks the newest credential for a client identity.
type CredentialStore interface {
	// Latest returns the credential with the greatest expiry for the given
	// client id. Returns nil, nil if none has ever been stored.
	Latest(ctx context.Context, clientID string) (*model.Credential, error)

	// Insert appends a newly issued credential row.
	Insert(ctx context.Context, cred model.Credential) error
}
