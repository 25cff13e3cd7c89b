package protocol

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTlsServerEndPointHashNoCertificates(t *testing.T) {
	_, err := tlsServerEndPointHash(tls.ConnectionState{})
	require.Error(t, err)
}

func TestTlsServerEndPointHashDefaultsToSHA256(t *testing.T) {
	raw := []byte("pretend-der-encoded-certificate")
	state := tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{
			{Raw: raw, SignatureAlgorithm: x509.SHA256WithRSA},
		},
	}
	got, err := tlsServerEndPointHash(state)
	require.NoError(t, err)
	want := sha256.Sum256(raw)
	assert.Equal(t, want[:], got)
}

func TestTlsServerEndPointHashUpgradesToSHA384(t *testing.T) {
	raw := []byte("another-pretend-certificate")
	state := tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{
			{Raw: raw, SignatureAlgorithm: x509.ECDSAWithSHA384},
		},
	}
	got, err := tlsServerEndPointHash(state)
	require.NoError(t, err)
	want := sha512.Sum384(raw)
	assert.Equal(t, want[:], got)
}

func TestTlsServerEndPointHashUpgradesToSHA512(t *testing.T) {
	raw := []byte("yet-another-certificate")
	state := tls.ConnectionState{
		PeerCertificates: []*x509.Certificate{
			{Raw: raw, SignatureAlgorithm: x509.SHA512WithRSA},
		},
	}
	got, err := tlsServerEndPointHash(state)
	require.NoError(t, err)
	want := sha512.Sum512(raw)
	assert.Equal(t, want[:], got)
}
