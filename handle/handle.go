// Package handle resolves human-readable payout destination handles of the
// form alias@domain to asset ledger accounts over DNS.
//
// A domain publishes the account for an alias in a TXT record at
// _prizepool.<alias>.<domain> containing "account=<40 hex chars>", and
// optionally advertises its operator API endpoints with SRV records at
// _prizepool._tcp.<domain>. Lookups go through a pluggable resolver; a
// DNSSEC-validating resolver is available for deployments that require
// authenticated answers.
package handle

import (
	"fmt"
	"strings"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// TXTPrefix is the DNS label under which account records are published.
const TXTPrefix = "_prizepool"

// Handle is a parsed alias@domain destination handle.
type Handle struct {
	Alias  string
	Domain string
}

// String returns the canonical alias@domain form.
func (h Handle) String() string {
	return h.Alias + "@" + h.Domain
}

// Parse splits and validates an alias@domain handle. The alias and domain
// are lowercased; neither may be empty or contain further '@' characters.
func Parse(raw string) (Handle, error) {
	var h Handle
	raw = strings.TrimSpace(raw)
	at := strings.Index(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return h, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	if strings.Contains(raw[at+1:], "@") {
		return h, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	h.Alias = strings.ToLower(raw[:at])
	h.Domain = strings.ToLower(raw[at+1:])
	if strings.ContainsAny(h.Alias, " \t") || strings.ContainsAny(h.Domain, " \t") || !strings.Contains(h.Domain, ".") {
		return h, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}
	return h, nil
}

// ResolveAccount resolves a handle to its published account using the
// default DNS resolver.
func ResolveAccount(raw string) (escrow.AccountID, error) {
	return ResolveAccountWithResolver(raw, DefaultDNSResolver)
}

// ResolveAccountWithResolver resolves a handle to its published account using
// the provided resolver.
//
// The TXT record set at _prizepool.<alias>.<domain> is scanned for the first
// entry of the form "account=<40 hex chars>"; other entries are ignored.
func ResolveAccountWithResolver(raw string, resolver DNSResolver) (escrow.AccountID, error) {
	var account escrow.AccountID

	h, err := Parse(raw)
	if err != nil {
		return account, err
	}

	qname := fmt.Sprintf("%s.%s.%s", TXTPrefix, h.Alias, h.Domain)
	records, err := resolver.LookupTXT(qname)
	if err != nil {
		return account, fmt.Errorf("%w: TXT lookup for %s: %w", ErrDNSLookupFailed, qname, err)
	}

	for _, record := range records {
		value, ok := strings.CutPrefix(strings.TrimSpace(record), "account=")
		if !ok {
			continue
		}
		account, err = escrow.AccountFromHex(strings.TrimSpace(value))
		if err != nil {
			return account, fmt.Errorf("%w: record %q: %w", ErrNoAccountRecord, record, err)
		}
		return account, nil
	}

	return account, fmt.Errorf("%w: no account= TXT entry at %s", ErrNoAccountRecord, qname)
}
