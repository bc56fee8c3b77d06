// Package authz provides authorization collaborators for the escrow ledger:
// a static role authorizer implementing escrow.Authorizer and an Argon2id
// operator credential store for embedders that authenticate operators before
// invoking the administrative surface.
package authz

import (
	"sync"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// StaticAuthorizer grants actions from a fixed in-memory table. Admin
// accounts are authorized for every action; other accounts only for the
// actions they were explicitly granted.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	admins map[escrow.AccountID]bool
	grants map[escrow.AccountID]map[escrow.Action]bool
}

// Compile-time interface check.
var _ escrow.Authorizer = (*StaticAuthorizer)(nil)

// NewStaticAuthorizer creates an authorizer with the given admin accounts.
func NewStaticAuthorizer(admins ...escrow.AccountID) *StaticAuthorizer {
	a := &StaticAuthorizer{
		admins: make(map[escrow.AccountID]bool),
		grants: make(map[escrow.AccountID]map[escrow.Action]bool),
	}
	for _, admin := range admins {
		a.admins[admin] = true
	}
	return a
}

// Grant authorizes the account for a single action.
func (a *StaticAuthorizer) Grant(account escrow.AccountID, action escrow.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.grants[account]
	if !ok {
		m = make(map[escrow.Action]bool)
		a.grants[account] = m
	}
	m[action] = true
}

// Revoke removes a single-action grant. Admin accounts are unaffected.
func (a *StaticAuthorizer) Revoke(account escrow.AccountID, action escrow.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.grants[account], action)
}

// IsAuthorized reports whether the caller may perform the action.
func (a *StaticAuthorizer) IsAuthorized(caller escrow.AccountID, action escrow.Action) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.admins[caller] {
		return true
	}
	return a.grants[caller][action]
}
