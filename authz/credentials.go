package authz

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// Argon2id parameters for operator secret hashing.
const (
	SaltLen           = 16
	Argon2Time        = 1
	Argon2Memory      = 64 * 1024 // 64 MiB
	Argon2Parallelism = 4
	Argon2KeyLen      = 32
)

// credential is a stored operator secret: salt(16B) || argon2id digest(32B).
type credential [SaltLen + Argon2KeyLen]byte

// CredentialStore holds Argon2id-hashed operator secrets keyed by account.
// It authenticates operators; authorization of the authenticated account is
// the StaticAuthorizer's job.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[escrow.AccountID]credential
}

// NewCredentialStore creates an empty credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{creds: make(map[escrow.AccountID]credential)}
}

// SetSecret stores the Argon2id digest of the operator's secret, replacing
// any previous credential for the account.
func (s *CredentialStore) SetSecret(account escrow.AccountID, secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}

	var cred credential
	if _, err := rand.Read(cred[:SaltLen]); err != nil {
		return fmt.Errorf("authz: generate salt: %w", err)
	}

	digest := argon2.IDKey(
		[]byte(secret),
		cred[:SaltLen],
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)
	copy(cred[SaltLen:], digest)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[account] = cred
	return nil
}

// VerifySecret checks the presented secret against the stored credential in
// constant time.
func (s *CredentialStore) VerifySecret(account escrow.AccountID, secret string) error {
	s.mu.RLock()
	cred, ok := s.creds[account]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownOperator
	}

	digest := argon2.IDKey(
		[]byte(secret),
		cred[:SaltLen],
		Argon2Time,
		Argon2Memory,
		Argon2Parallelism,
		Argon2KeyLen,
	)

	if subtle.ConstantTimeCompare(digest, cred[SaltLen:]) != 1 {
		return ErrBadSecret
	}
	return nil
}

// RemoveSecret deletes the account's credential if present.
func (s *CredentialStore) RemoveSecret(account escrow.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, account)
}
