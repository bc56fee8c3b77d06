package handle

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// mockResolver serves canned SRV and TXT answers keyed by query name.
type mockResolver struct {
	srv    map[string][]*net.SRV
	txt    map[string][]string
	srvErr error
	txtErr error
}

func (m *mockResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	if m.srvErr != nil {
		return "", nil, m.srvErr
	}
	key := "_" + service + "._" + proto + "." + name
	return "", m.srv[key], nil
}

func (m *mockResolver) LookupTXT(name string) ([]string, error) {
	if m.txtErr != nil {
		return nil, m.txtErr
	}
	records, ok := m.txt[name]
	if !ok {
		return nil, errors.New("no such host")
	}
	return records, nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Handle
		wantErr bool
	}{
		{"alice@example.com", Handle{Alias: "alice", Domain: "example.com"}, false},
		{"  Alice@Example.COM  ", Handle{Alias: "alice", Domain: "example.com"}, false},
		{"a.b@sub.example.com", Handle{Alias: "a.b", Domain: "sub.example.com"}, false},
		{"", Handle{}, true},
		{"alice", Handle{}, true},
		{"@example.com", Handle{}, true},
		{"alice@", Handle{}, true},
		{"alice@@example.com", Handle{}, true},
		{"alice@bob@example.com", Handle{}, true},
		{"alice@localhost", Handle{}, true},
		{"al ice@example.com", Handle{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHandle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleString(t *testing.T) {
	h, err := Parse("Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", h.String())
}

func TestResolveAccount(t *testing.T) {
	hex := strings.Repeat("ab", 20)
	want, err := escrow.AccountFromHex(hex)
	require.NoError(t, err)

	resolver := &mockResolver{txt: map[string][]string{
		"_prizepool.alice.example.com": {
			"v=spf1 -all", // unrelated entries are skipped
			"account=" + hex,
		},
	}}

	got, err := ResolveAccountWithResolver("alice@example.com", resolver)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveAccountErrors(t *testing.T) {
	t.Run("invalid handle", func(t *testing.T) {
		_, err := ResolveAccountWithResolver("not-a-handle", &mockResolver{})
		assert.ErrorIs(t, err, ErrInvalidHandle)
	})

	t.Run("lookup failure", func(t *testing.T) {
		resolver := &mockResolver{txtErr: errors.New("servfail")}
		_, err := ResolveAccountWithResolver("alice@example.com", resolver)
		assert.ErrorIs(t, err, ErrDNSLookupFailed)
	})

	t.Run("no account entry", func(t *testing.T) {
		resolver := &mockResolver{txt: map[string][]string{
			"_prizepool.alice.example.com": {"v=spf1 -all"},
		}}
		_, err := ResolveAccountWithResolver("alice@example.com", resolver)
		assert.ErrorIs(t, err, ErrNoAccountRecord)
	})

	t.Run("malformed account value", func(t *testing.T) {
		resolver := &mockResolver{txt: map[string][]string{
			"_prizepool.alice.example.com": {"account=not-hex"},
		}}
		_, err := ResolveAccountWithResolver("alice@example.com", resolver)
		assert.ErrorIs(t, err, ErrNoAccountRecord)
	})
}

func TestResolveEndpoints(t *testing.T) {
	resolver := &mockResolver{srv: map[string][]*net.SRV{
		"_prizepool._tcp.example.com": {
			{Target: "backup.example.com.", Port: 8443, Priority: 20, Weight: 0},
			{Target: "api2.example.com.", Port: 443, Priority: 10, Weight: 5},
			{Target: "api1.example.com.", Port: 443, Priority: 10, Weight: 10},
		},
	}}

	endpoints, err := ResolveEndpointsWithResolver("example.com", resolver)
	require.NoError(t, err)

	// Priority ascending, weight descending within a priority.
	assert.Equal(t, []string{
		"api1.example.com:443",
		"api2.example.com:443",
		"backup.example.com:8443",
	}, endpoints)
}

func TestResolveEndpointsErrors(t *testing.T) {
	_, err := ResolveEndpointsWithResolver("", &mockResolver{})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("example.com", &mockResolver{srvErr: errors.New("servfail")})
	assert.ErrorIs(t, err, ErrDNSLookupFailed)

	_, err = ResolveEndpointsWithResolver("example.com", &mockResolver{srv: map[string][]*net.SRV{}})
	assert.ErrorIs(t, err, ErrNoEndpoints)
}
