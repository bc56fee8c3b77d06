package escrow

import "fmt"

// DepositPayloadSize is the exact length of a deposit payload:
// pool_id(32) || contribution_id(32).
const DepositPayloadSize = 64

// EncodeDepositPayload encodes the pool and contribution identifiers into the
// 64-byte payload carried by a settlement transfer.
func EncodeDepositPayload(pool PoolID, contribution ContributionID) []byte {
	buf := make([]byte, DepositPayloadSize)
	copy(buf[0:32], pool[:])
	copy(buf[32:64], contribution[:])
	return buf
}

// DecodeDepositPayload decodes a settlement payload into its pool and
// contribution identifiers. Any length other than 64 bytes is rejected.
func DecodeDepositPayload(data []byte) (PoolID, ContributionID, error) {
	var pool PoolID
	var contribution ContributionID
	if len(data) != DepositPayloadSize {
		return pool, contribution, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidPayload, DepositPayloadSize, len(data))
	}
	copy(pool[:], data[0:32])
	copy(contribution[:], data[32:64])
	return pool, contribution, nil
}
