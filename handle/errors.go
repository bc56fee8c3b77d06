package handle

import "errors"

var (
	// ErrInvalidHandle indicates the handle is not of the form alias@domain.
	ErrInvalidHandle = errors.New("handle: invalid handle (expected alias@domain)")

	// ErrDNSLookupFailed indicates a DNS query error.
	ErrDNSLookupFailed = errors.New("handle: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the response was not authenticated
	// by the upstream resolver.
	ErrDNSSECValidationFailed = errors.New("handle: DNSSEC validation failed")

	// ErrNoEndpoints indicates no SRV records were found for the domain.
	ErrNoEndpoints = errors.New("handle: no endpoints found")

	// ErrNoAccountRecord indicates no account TXT record was found for the
	// handle.
	ErrNoAccountRecord = errors.New("handle: no account record found")
)
