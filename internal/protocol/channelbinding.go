package protocol

import (
	"crypto/sha256"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"

	"github.com/pkg/errors"
)

// tlsServerEndPointHash computes the RFC 5929 tls-server-end-point
// channel-binding value: a hash of the server's leaf certificate, using
// SHA-256 unless the certificate's own signature algorithm specifies a
// stronger SHA-2 variant (MD5/SHA-1 signed certs hash with SHA-256 per
// the RFC's fallback rule).
func tlsServerEndPointHash(state tls.ConnectionState) ([]byte, error) {
	if len(state.PeerCertificates) == 0 {
		return nil, errors.New("protocol: no peer certificate available for channel binding")
	}
	cert := state.PeerCertificates[0]

	switch cert.SignatureAlgorithm {
	case x509.SHA384WithRSA, x509.ECDSAWithSHA384:
		sum := sha512.Sum384(cert.Raw)
		return sum[:], nil
	case x509.SHA512WithRSA, x509.ECDSAWithSHA512:
		sum := sha512.Sum512(cert.Raw)
		return sum[:], nil
	default:
		sum := sha256.Sum256(cert.Raw)
		return sum[:], nil
	}
}
