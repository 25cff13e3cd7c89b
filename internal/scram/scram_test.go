package scram

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

// fakeServer plays the backend side of one SCRAM-SHA-256 exchange using the
// same RFC 5802 formulas, so the round trip below exercises the client
// against an independently-derived set of keys rather than against itself.
type fakeServer struct {
	username   string
	password   string
	salt       []byte
	iterations int
	nonce      string
}

func newFakeServer(username, password string) *fakeServer {
	return &fakeServer{
		username:   username,
		password:   password,
		salt:       []byte("fixedsaltbytes12"),
		iterations: 4096,
	}
}

func (s *fakeServer) firstMessage(clientFirstBare string) string {
	parts := strings.SplitN(clientFirstBare, ",", 2)
	clientNonce := strings.TrimPrefix(parts[1], "r=")
	s.nonce = clientNonce + "server-extension-xyz"
	return fmt.Sprintf("r=%s,s=%s,i=%d", s.nonce, base64.StdEncoding.EncodeToString(s.salt), s.iterations)
}

func (s *fakeServer) finalMessage(authMessage string) string {
	saltedPassword := pbkdf2.Key([]byte(s.password), s.salt, s.iterations, sha256.Size, sha256.New)
	serverKey := hmacSHA256(saltedPassword, []byte("Server Key"))
	sig := hmacSHA256(serverKey, []byte(authMessage))
	return "v=" + base64.StdEncoding.EncodeToString(sig)
}

func TestSCRAMRoundTripSucceeds(t *testing.T) {
	client := NewClient("alice", "hunter2", nil)
	assert.Equal(t, MechanismSHA256, client.Mechanism())

	clientFirst := client.ClientFirst()
	assert.True(t, strings.HasPrefix(string(clientFirst), "n,,n=alice,r="))

	server := newFakeServer("alice", "hunter2")
	clientFirstBare := strings.TrimPrefix(string(clientFirst), "n,,")
	serverFirst := server.firstMessage(clientFirstBare)

	clientFinal, err := client.ClientFinal([]byte(serverFirst))
	require.NoError(t, err)
	assert.Contains(t, string(clientFinal), "p=")

	// Recompute the auth message the same way the client did, to build a
	// matching server-final-message.
	parts := strings.SplitN(string(clientFinal), ",p=", 2)
	clientFinalWithoutProof := parts[0]
	authMessage := clientFirstBare + "," + serverFirst + "," + clientFinalWithoutProof
	serverFinal := server.finalMessage(authMessage)

	err = client.VerifyServerFinal([]byte(serverFinal))
	assert.NoError(t, err)
}

func TestSCRAMRejectsForgedServerSignature(t *testing.T) {
	client := NewClient("alice", "hunter2", nil)
	clientFirst := client.ClientFirst()
	server := newFakeServer("alice", "hunter2")
	clientFirstBare := strings.TrimPrefix(string(clientFirst), "n,,")
	serverFirst := server.firstMessage(clientFirstBare)

	_, err := client.ClientFinal([]byte(serverFirst))
	require.NoError(t, err)

	forged := "v=" + base64.StdEncoding.EncodeToString([]byte("not-the-real-signature!"))
	err = client.VerifyServerFinal([]byte(forged))
	require.Error(t, err)
}

func TestSCRAMRejectsNonExtendingServerNonce(t *testing.T) {
	client := NewClient("alice", "hunter2", nil)
	client.ClientFirst()
	_, err := client.ClientFinal([]byte("r=totally-different-nonce,s=" + base64.StdEncoding.EncodeToString([]byte("salt")) + ",i=4096"))
	require.Error(t, err)
}

func TestSCRAMPlusAdvertisesChannelBindingMechanism(t *testing.T) {
	client := NewClient("bob", "pw", []byte("cert-hash-bytes"))
	assert.Equal(t, MechanismSHA256Plus, client.Mechanism())
	assert.True(t, strings.HasPrefix(string(client.ClientFirst()), "p=tls-server-end-point,,n=bob,r="))
}
