// Package token encodes and validates continuation tokens: self-contained,
// signed descriptions of "what to run next" that a caller can hand back to
// resume an earlier operation. A token is a JSON payload in base64url with
// an HMAC-SHA256 signature; validation fails closed and replay recomputes
// the original result digest to detect a drifted workspace.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/output"
)

// DefaultTTL bounds token lifetime when the config does not override it.
const DefaultTTL = 24 * time.Hour

// KeyFileName is the signing key file inside the state directory.
const KeyFileName = "token.key"

const keySize = 32

// Context ties a token to the request that issued it.
type Context struct {
	RequestID     string `json:"requestId"`
	SourceToken   string `json:"sourceToken,omitempty"`
	ResultsDigest string `json:"resultsDigest,omitempty"`
}

// NextAction is one suggested follow-up operation.
type NextAction struct {
	Command     string                 `json:"command"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// Payload is the full token body. Signature covers every other field.
type Payload struct {
	Command     string                 `json:"command"`
	Action      string                 `json:"action"`
	Context     Context                `json:"context"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	NextActions []NextAction           `json:"nextActions,omitempty"`
	IssuedAt    time.Time              `json:"issuedAt"`
	ExpiresAt   time.Time              `json:"expiresAt"`
	Signature   string                 `json:"signature,omitempty"`
}

// Codec signs and validates tokens with a per-workspace key.
type Codec struct {
	key []byte
	ttl time.Duration

	now func() time.Time // test hook
}

// NewCodec loads the signing key from stateDir, generating one on first use.
func NewCodec(stateDir string, ttl time.Duration) (*Codec, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key, err := loadOrCreateKey(filepath.Join(stateDir, KeyFileName))
	if err != nil {
		return nil, err
	}
	return &Codec{key: key, ttl: ttl, now: time.Now}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != keySize {
			return nil, errors.Newf(errors.TokenInvalid, "signing key at %s has wrong size", path)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.New(errors.InternalError, "cannot read signing key", err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.New(errors.InternalError, "cannot generate signing key", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.New(errors.InternalError, "cannot create state directory", err)
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, errors.New(errors.InternalError, "cannot write signing key", err)
	}
	return key, nil
}

// Encode fills in issue metadata, signs the payload, and renders the token.
func (c *Codec) Encode(p *Payload) (string, error) {
	if p.Command == "" || p.Action == "" {
		return "", errors.Newf(errors.InvalidParameter, "token payload needs command and action")
	}
	if p.Context.RequestID == "" {
		p.Context.RequestID = uuid.NewString()
	}
	now := c.now().UTC()
	if p.IssuedAt.IsZero() {
		p.IssuedAt = now
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = p.IssuedAt.Add(c.ttl)
	}

	sig, err := c.sign(p)
	if err != nil {
		return "", err
	}
	p.Signature = sig

	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot marshal token payload", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode validates a token and returns its payload. Every failure mode is
// TOKEN_INVALID: undecodable, unsigned, tampered, or expired.
func (c *Codec) Decode(tok string) (*Payload, error) {
	data, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return nil, errors.New(errors.TokenInvalid, "token is not valid base64url", err)
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.New(errors.TokenInvalid, "token payload is not valid JSON", err)
	}
	if p.Signature == "" {
		return nil, errors.Newf(errors.TokenInvalid, "token is unsigned")
	}

	supplied := p.Signature
	p.Signature = ""
	expected, err := c.sign(&p)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(supplied), []byte(expected)) {
		return nil, errors.Newf(errors.TokenInvalid, "token signature does not verify")
	}
	p.Signature = supplied

	if c.now().UTC().After(p.ExpiresAt) {
		return nil, errors.Newf(errors.TokenInvalid, "token expired at %s", p.ExpiresAt.Format(time.RFC3339))
	}
	return &p, nil
}

// sign computes the hex HMAC-SHA256 over the deterministic encoding of the
// payload with its signature field cleared.
func (c *Codec) sign(p *Payload) (string, error) {
	clone := *p
	clone.Signature = ""
	data, err := output.DeterministicEncode(&clone)
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot encode token payload for signing", err)
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ResultsDigest hashes an operation's result set deterministically, for
// storing in Context.ResultsDigest and re-checking on replay.
func ResultsDigest(v interface{}) (string, error) {
	data, err := output.DeterministicEncode(v)
	if err != nil {
		return "", errors.New(errors.InternalError, "cannot encode results for digest", err)
	}
	return extract.Digest(data), nil
}

// CheckDigest compares a replayed result digest against the one recorded in
// the token. A mismatch is a warning, not a hard failure: the caller decides
// whether the drifted results still serve.
func CheckDigest(p *Payload, current string) error {
	if p.Context.ResultsDigest == "" || p.Context.ResultsDigest == current {
		return nil
	}
	return errors.New(errors.DigestMismatch,
		"workspace results changed since this token was issued", nil).
		WithDetails(map[string]interface{}{
			"recorded": p.Context.ResultsDigest,
			"current":  current,
		})
}
