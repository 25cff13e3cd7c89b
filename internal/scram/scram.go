// Package scram implements the client side of SCRAM-SHA-256 (RFC 5802,
// RFC 7677) and its channel-bound variant SCRAM-SHA-256-PLUS, the only
// SASL mechanism the driver negotiates (spec §4.9).
package scram

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// Mechanism names advertised by the server in an AuthenticationSASL
// message.
const (
	MechanismSHA256     = "SCRAM-SHA-256"
	MechanismSHA256Plus = "SCRAM-SHA-256-PLUS"
)

// Client drives one SCRAM-SHA-256 exchange from client-first-message
// through verifying the server's final signature. It holds no network
// state; internal/protocol/startup.go feeds it server messages and sends
// back whatever ClientFirst/ClientFinal produce.
type Client struct {
	username string
	password string

	clientNonce      string
	clientFirstBare  string
	serverFirst      string
	saltedPassword   []byte
	authMessage      string

	channelBinding []byte // non-nil only for SCRAM-SHA-256-PLUS
	mechanism      string
}

// NewClient starts a SCRAM exchange. channelBinding is the TLS
// tls-server-end-point certificate hash; pass nil to use plain
// SCRAM-SHA-256 (the driver only attempts -PLUS when it dialed over TLS
// and the server advertised it, per spec §4.9).
func NewClient(username, password string, channelBinding []byte) *Client {
	mechanism := MechanismSHA256
	if channelBinding != nil {
		mechanism = MechanismSHA256Plus
	}
	return &Client{
		username:       username,
		password:       password,
		clientNonce:    randomNonce(),
		channelBinding: channelBinding,
		mechanism:      mechanism,
	}
}

// Mechanism returns the mechanism name to advertise in
// SASLInitialResponse.
func (c *Client) Mechanism() string { return c.mechanism }

func randomNonce() string {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failing means the OS entropy source is broken
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// gs2Header is the GS2 channel-binding flag header per RFC 5802 §6.1.
func (c *Client) gs2Header() string {
	if c.channelBinding != nil {
		return "p=tls-server-end-point,,"
	}
	return "n,,"
}

// ClientFirst builds the client-first-message sent as the
// SASLInitialResponse payload.
func (c *Client) ClientFirst() []byte {
	c.clientFirstBare = fmt.Sprintf("n=%s,r=%s", saslEscape(c.username), c.clientNonce)
	msg := c.gs2Header() + c.clientFirstBare
	return []byte(msg)
}

// ClientFinal consumes the server-first-message (the payload of an
// AuthenticationSASLContinue) and returns the client-final-message to
// send as the SASLResponse.
func (c *Client) ClientFinal(serverFirstMessage []byte) ([]byte, error) {
	c.serverFirst = string(serverFirstMessage)

	fields, err := parseFields(c.serverFirst)
	if err != nil {
		return nil, err
	}
	serverNonce, ok := fields["r"]
	if !ok || !strings.HasPrefix(serverNonce, c.clientNonce) {
		return nil, errors.New("scram: server nonce does not extend client nonce")
	}
	saltB64, ok := fields["s"]
	if !ok {
		return nil, errors.New("scram: server-first-message missing salt")
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, errors.Wrap(err, "scram: decoding salt")
	}
	iterStr, ok := fields["i"]
	if !ok {
		return nil, errors.New("scram: server-first-message missing iteration count")
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return nil, errors.New("scram: invalid iteration count")
	}

	c.saltedPassword = pbkdf2.Key([]byte(c.password), salt, iterations, sha256.Size, sha256.New)

	channelBindingB64 := base64.StdEncoding.EncodeToString([]byte(c.gs2Header() + string(c.channelBindingData())))
	clientFinalWithoutProof := fmt.Sprintf("c=%s,r=%s", channelBindingB64, serverNonce)

	c.authMessage = c.clientFirstBare + "," + c.serverFirst + "," + clientFinalWithoutProof

	clientKey := hmacSHA256(c.saltedPassword, []byte("Client Key"))
	storedKey := sha256.Sum256(clientKey)
	clientSignature := hmacSHA256(storedKey[:], []byte(c.authMessage))
	clientProof := xorBytes(clientKey, clientSignature)

	final := clientFinalWithoutProof + ",p=" + base64.StdEncoding.EncodeToString(clientProof)
	return []byte(final), nil
}

// channelBindingData returns the raw channel-binding data appended after
// the GS2 header in "c=" — the TLS certificate hash for -PLUS, empty
// otherwise.
func (c *Client) channelBindingData() []byte {
	return c.channelBinding
}

// VerifyServerFinal checks the server-final-message's signature (the
// payload of an AuthenticationSASLFinal) against the expected
// ServerSignature, proving the server actually knows the stored key.
func (c *Client) VerifyServerFinal(serverFinalMessage []byte) error {
	fields, err := parseFields(string(serverFinalMessage))
	if err != nil {
		return err
	}
	if errMsg, ok := fields["e"]; ok {
		return errors.Errorf("scram: server reported error: %s", errMsg)
	}
	sigB64, ok := fields["v"]
	if !ok {
		return errors.New("scram: server-final-message missing verifier")
	}
	gotSig, err := base64.StdEncoding.DecodeString(sigB64)
	if err != nil {
		return errors.Wrap(err, "scram: decoding server signature")
	}

	serverKey := hmacSHA256(c.saltedPassword, []byte("Server Key"))
	wantSig := hmacSHA256(serverKey, []byte(c.authMessage))
	if !hmac.Equal(gotSig, wantSig) {
		return errors.New("scram: server signature mismatch, possible MITM")
	}
	return nil
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// saslEscape applies the SASLprep-adjacent ',' and '=' escaping RFC 5802
// requires in the "n=" username attribute.
func saslEscape(s string) string {
	s = strings.ReplaceAll(s, "=", "=3D")
	s = strings.ReplaceAll(s, ",", "=2C")
	return s
}

// parseFields splits a comma-separated attr=value message into a map.
func parseFields(msg string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, part := range strings.Split(msg, ",") {
		if part == "" {
			continue
		}
		idx := strings.IndexByte(part, '=')
		if idx < 0 {
			return nil, errors.Errorf("scram: malformed attribute %q", part)
		}
		fields[part[:idx]] = part[idx+1:]
	}
	return fields, nil
}
