// Package session owns the opaque identifier that correlates this
// profile's uploads and conversions on the backend.
package session

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"docmorph/internal/domain"
	apperrors "docmorph/pkg/errors"
)

const stateKey = "session_id"

// The backend only accepts these characters in session identifiers.
var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// Identity persists the per-profile session identifier. The identifier is
// stable across runs and never regenerated while non-empty, unless an
// external reference is adopted or the identity is reset.
type Identity struct {
	store  domain.StateStore
	logger domain.Logger
}

// NewIdentity creates a session identity backed by the given store.
func NewIdentity(store domain.StateStore, logger domain.Logger) *Identity {
	return &Identity{
		store:  store,
		logger: logger,
	}
}

// GetOrCreate returns the persisted session identifier, synthesizing and
// persisting a new one when none exists.
func (i *Identity) GetOrCreate() (string, error) {
	id, ok, err := i.store.Get(stateKey)
	if err != nil {
		return "", fmt.Errorf("failed to load session identifier: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = newSessionID()
	if err := i.store.Put(stateKey, id); err != nil {
		return "", fmt.Errorf("failed to persist session identifier: %w", err)
	}
	i.logger.Debug("Created new session identifier", "session_id", id)
	return id, nil
}

// AdoptFromLink takes a session reference carried by a shareable link and
// makes it this profile's identifier, overwriting any stored value.
func (i *Identity) AdoptFromLink(candidateID string) (string, error) {
	if candidateID == "" || !sessionIDPattern.MatchString(candidateID) {
		return "", apperrors.NewValidationError("session reference has an invalid format")
	}
	if err := i.store.Put(stateKey, candidateID); err != nil {
		return "", fmt.Errorf("failed to persist adopted session identifier: %w", err)
	}
	i.logger.Info("Adopted session identifier from link", "session_id", candidateID)
	return candidateID, nil
}

// Reset discards the persisted identifier so the next GetOrCreate
// synthesizes a fresh one.
func (i *Identity) Reset() error {
	if err := i.store.Delete(stateKey); err != nil {
		return fmt.Errorf("failed to reset session identifier: %w", err)
	}
	return nil
}

// newSessionID joins two v4 UUIDs. A single v4 carries 122 random bits;
// two keep collisions out of reach even across very large fleets.
func newSessionID() string {
	return uuid.NewString() + "-" + uuid.NewString()
}
