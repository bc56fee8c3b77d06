package escrow

// ContributionsOf returns every (pool, contribution) pair ever accepted for
// the depositor, in acceptance order. The index is append-only; entries are
// never removed.
func (l *Ledger) ContributionsOf(owner AccountID) ([]ContributionRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.WalletRefs(owner)
}
