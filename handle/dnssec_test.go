package handle

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDNSSECResolverDefaults(t *testing.T) {
	r := NewDNSSECResolver("")
	assert.Equal(t, "8.8.8.8:53", r.Upstream)
	assert.NotNil(t, r.exchange)
}

func TestNewDNSSECResolverCustom(t *testing.T) {
	r := NewDNSSECResolver("1.1.1.1:53")
	assert.Equal(t, "1.1.1.1:53", r.Upstream)
}

// stubbedResolver returns a resolver whose exchange replies to every query
// via build, recording the outgoing message.
func stubbedResolver(build func(query *dns.Msg) (*dns.Msg, error)) (*DNSSECResolver, **dns.Msg) {
	r := NewDNSSECResolver("")
	var sent *dns.Msg
	r.exchange = func(msg *dns.Msg, _ string) (*dns.Msg, error) {
		sent = msg
		return build(msg)
	}
	return r, &sent
}

// authenticatedReply builds a validated (AD flag set) reply carrying answers.
func authenticatedReply(query *dns.Msg, answers ...dns.RR) (*dns.Msg, error) {
	resp := new(dns.Msg)
	resp.SetReply(query)
	resp.AuthenticatedData = true
	resp.Answer = answers
	return resp, nil
}

func txtRecord(name string, strs ...string) *dns.TXT {
	return &dns.TXT{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeTXT, Class: dns.ClassINET},
		Txt: strs,
	}
}

func srvRecord(name, target string, port, priority, weight uint16) *dns.SRV {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Name: name, Rrtype: dns.TypeSRV, Class: dns.ClassINET},
		Target:   target,
		Port:     port,
		Priority: priority,
		Weight:   weight,
	}
}

func TestDNSSECLookupTXT(t *testing.T) {
	r, sent := stubbedResolver(func(query *dns.Msg) (*dns.Msg, error) {
		name := query.Question[0].Name
		return authenticatedReply(query,
			txtRecord(name, "account=", "abcdef"), // multi-string records join
			txtRecord(name, "v=spf1 -all"),
		)
	})

	records, err := r.LookupTXT("_prizepool.alice.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"account=abcdef", "v=spf1 -all"}, records)

	// The outgoing query is a recursive EDNS0 query with the DO bit set.
	query := *sent
	require.Len(t, query.Question, 1)
	assert.Equal(t, "_prizepool.alice.example.com.", query.Question[0].Name)
	assert.True(t, query.RecursionDesired)
	opt := query.IsEdns0()
	require.NotNil(t, opt)
	assert.True(t, opt.Do())
}

func TestDNSSECLookupSRV(t *testing.T) {
	r, sent := stubbedResolver(func(query *dns.Msg) (*dns.Msg, error) {
		name := query.Question[0].Name
		return authenticatedReply(query,
			srvRecord(name, "api.example.com.", 443, 10, 5),
		)
	})

	_, srvs, err := r.LookupSRV("prizepool", "tcp", "example.com")
	require.NoError(t, err)
	require.Len(t, srvs, 1)
	assert.Equal(t, "api.example.com", srvs[0].Target) // trailing dot trimmed
	assert.Equal(t, uint16(443), srvs[0].Port)
	assert.Equal(t, uint16(10), srvs[0].Priority)
	assert.Equal(t, uint16(5), srvs[0].Weight)

	query := *sent
	assert.Equal(t, "_prizepool._tcp.example.com.", query.Question[0].Name)
}

func TestDNSSECMissingADFlag(t *testing.T) {
	r, _ := stubbedResolver(func(query *dns.Msg) (*dns.Msg, error) {
		resp := new(dns.Msg)
		resp.SetReply(query)
		// Upstream answered but did not validate DNSSEC.
		resp.Answer = []dns.RR{txtRecord(query.Question[0].Name, "account=abcdef")}
		return resp, nil
	})

	_, err := r.LookupTXT("_prizepool.alice.example.com")
	assert.ErrorIs(t, err, ErrDNSSECValidationFailed)

	_, _, err = r.LookupSRV("prizepool", "tcp", "example.com")
	assert.ErrorIs(t, err, ErrDNSSECValidationFailed)
}

func TestDNSSECExchangeFailure(t *testing.T) {
	r, _ := stubbedResolver(func(*dns.Msg) (*dns.Msg, error) {
		return nil, errors.New("i/o timeout")
	})

	_, err := r.LookupTXT("example.com")
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}

func TestDNSSECBadRcode(t *testing.T) {
	r, _ := stubbedResolver(func(query *dns.Msg) (*dns.Msg, error) {
		resp := new(dns.Msg)
		resp.SetReply(query)
		resp.Rcode = dns.RcodeServerFailure
		resp.AuthenticatedData = true
		return resp, nil
	})

	_, err := r.LookupTXT("example.com")
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}

func TestDNSSECEmptyAnswers(t *testing.T) {
	r, _ := stubbedResolver(func(query *dns.Msg) (*dns.Msg, error) {
		return authenticatedReply(query)
	})

	_, err := r.LookupTXT("example.com")
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, _, err = r.LookupSRV("prizepool", "tcp", "example.com")
	assert.ErrorIs(t, err, ErrDNSLookupFailed)
}
