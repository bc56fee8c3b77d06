// Package escrow implements the pooled-contribution escrow and
// prize-distribution ledger.
//
// Parties contribute a fungible asset into named pools during a contribution
// window; an operator later marks a pool as distributing and payouts are
// settled against an earmarked budget using the pool's prize-calculation
// policy. The package owns the pool state machine and the exactly-once
// accounting semantics (no double contribution, no double payout); asset
// custody, authorization and the prize formula itself are external
// collaborators injected at construction time.
package escrow

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// PoolID uniquely identifies a pool (32 bytes).
type PoolID = chainhash.Hash

// ContributionID uniquely identifies a contribution within a pool (32 bytes).
type ContributionID = chainhash.Hash

// AccountID identifies an account on the asset ledger.
type AccountID [20]byte

// IsZero returns true if the account is the zero account.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// String returns the hex encoding of the account.
func (a AccountID) String() string {
	return hex.EncodeToString(a[:])
}

// AccountFromHex decodes a 40-character hex string into an AccountID.
func AccountFromHex(s string) (AccountID, error) {
	var a AccountID
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	if len(b) != len(a) {
		return a, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccount, len(a), len(b))
	}
	copy(a[:], b)
	return a, nil
}

// DerivePoolID derives a pool identifier from a human-readable label.
// The identifier is SHA256(SHA256(label)).
func DerivePoolID(label string) PoolID {
	return chainhash.DoubleHashH([]byte(label))
}

// DeriveContributionID derives a contribution identifier from a
// human-readable label. The identifier is SHA256(SHA256(label)).
func DeriveContributionID(label string) ContributionID {
	return chainhash.DoubleHashH([]byte(label))
}

// Status is the lifecycle state of a pool.
type Status uint8

// Pool lifecycle states. NotSet is the zero value of a pool that was never
// created and is never re-entered.
const (
	StatusNotSet Status = iota
	StatusActive
	StatusDistributing
	StatusFunded
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNotSet:
		return "not-set"
	case StatusActive:
		return "active"
	case StatusDistributing:
		return "distributing"
	case StatusFunded:
		return "funded"
	case StatusPaused:
		return "paused"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// valid returns true for a known non-NotSet status value.
func (s Status) valid() bool {
	return s >= StatusActive && s <= StatusPaused
}

// Pool is the record of a single contribution pool. Amounts are in
// indivisible asset units; the contribution window is half-open
// [ContributionStart, ContributionEnd) in Unix seconds.
type Pool struct {
	ID                 PoolID
	Destination        AccountID // receives AmountCollected once funded
	ContributionStart  int64
	ContributionEnd    int64
	Status             Status
	AmountLimit        uint64 // cap on AmountCollected; 0 = unlimited
	AmountCollected    uint64
	AmountDistributing uint64 // earmarked payout budget
	Paidout            uint64 // sum of contribution payouts
	Calculator         string // registered prize calculator name
	Contributions      map[ContributionID]*Contribution
}

// Contribution is a single depositor's stake within a pool. Amount is set
// exactly once on acceptance; Paidout moves from zero to a positive value at
// most once, at settlement.
type Contribution struct {
	Owner   AccountID
	Amount  uint64
	Paidout uint64
}

// ContributionRef locates a contribution across pools.
type ContributionRef struct {
	Pool         PoolID
	Contribution ContributionID
}

// clone returns a deep copy of the pool.
func (p *Pool) clone() *Pool {
	cp := *p
	cp.Contributions = make(map[ContributionID]*Contribution, len(p.Contributions))
	for id, c := range p.Contributions {
		cc := *c
		cp.Contributions[id] = &cc
	}
	return &cp
}
