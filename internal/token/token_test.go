package token

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalpel/internal/errors"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(t.TempDir(), 0)
	require.NoError(t, err)
	return c
}

func samplePayload() *Payload {
	return &Payload{
		Command: "symbols",
		Action:  "resume",
		Parameters: map[string]interface{}{
			"selector": "function:main",
			"file":     "app.js",
		},
		NextActions: []NextAction{
			{Command: "context", Description: "show the match in context"},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Encode(samplePayload())
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	p, err := c.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "symbols", p.Command)
	assert.Equal(t, "resume", p.Action)
	assert.NotEmpty(t, p.Context.RequestID, "encode must assign a request id")
	assert.NotEmpty(t, p.Signature)
	assert.True(t, p.ExpiresAt.After(p.IssuedAt))
	assert.Equal(t, "function:main", p.Parameters["selector"])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c := newTestCodec(t)

	for name, tok := range map[string]string{
		"not base64": "!!!not-base64!!!",
		"not json":   "bm90LWpzb24",
		"empty":      "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(tok)
			assert.Equal(t, errors.TokenInvalid, errors.CodeOf(err))
		})
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Encode(samplePayload())
	require.NoError(t, err)

	p, err := c.Decode(tok)
	require.NoError(t, err)

	// Re-encode with a modified field but the old signature.
	p.Parameters["selector"] = "function:other"
	forged, err := forge(p)
	require.NoError(t, err)

	_, err = c.Decode(forged)
	assert.Equal(t, errors.TokenInvalid, errors.CodeOf(err))
}

func TestDecodeRejectsForeignKey(t *testing.T) {
	a := newTestCodec(t)
	b := newTestCodec(t)

	tok, err := a.Encode(samplePayload())
	require.NoError(t, err)

	_, err = b.Decode(tok)
	assert.Equal(t, errors.TokenInvalid, errors.CodeOf(err))
}

func TestDecodeRejectsExpired(t *testing.T) {
	c := newTestCodec(t)

	past := time.Now().UTC().Add(-48 * time.Hour)
	p := samplePayload()
	p.IssuedAt = past
	p.ExpiresAt = past.Add(time.Hour)

	tok, err := c.Encode(p)
	require.NoError(t, err)

	_, err = c.Decode(tok)
	assert.Equal(t, errors.TokenInvalid, errors.CodeOf(err))
}

func TestKeyPersistsAcrossCodecs(t *testing.T) {
	dir := t.TempDir()

	a, err := NewCodec(dir, 0)
	require.NoError(t, err)
	tok, err := a.Encode(samplePayload())
	require.NoError(t, err)

	b, err := NewCodec(dir, 0)
	require.NoError(t, err)
	_, err = b.Decode(tok)
	assert.NoError(t, err, "same state dir means same key")

	info, err := os.Stat(filepath.Join(dir, KeyFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestResultsDigest(t *testing.T) {
	type result struct {
		Name string `json:"name"`
		Line int    `json:"line"`
	}

	a, err := ResultsDigest([]result{{"x", 1}, {"y", 2}})
	require.NoError(t, err)
	b, err := ResultsDigest([]result{{"x", 1}, {"y", 2}})
	require.NoError(t, err)
	assert.Equal(t, a, b, "digest must be deterministic")

	changed, err := ResultsDigest([]result{{"x", 1}, {"y", 3}})
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}

func TestCheckDigest(t *testing.T) {
	p := samplePayload()
	p.Context.ResultsDigest = "abc"

	assert.NoError(t, CheckDigest(p, "abc"))
	assert.NoError(t, CheckDigest(&Payload{}, "anything"), "tokens without a digest skip the check")

	err := CheckDigest(p, "def")
	assert.Equal(t, errors.DigestMismatch, errors.CodeOf(err))
}

func TestEncodeRequiresCommandAndAction(t *testing.T) {
	c := newTestCodec(t)

	_, err := c.Encode(&Payload{Command: "symbols"})
	assert.Equal(t, errors.InvalidParameter, errors.CodeOf(err))
}

// forge re-serializes a payload without re-signing it.
func forge(p *Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}
