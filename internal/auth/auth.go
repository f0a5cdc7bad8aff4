// Package auth signs and verifies Session artifacts with an HMAC key
// derived via HKDF, the same session/claims shape as the teacher's
// gateway/middleware.AuthMiddleware's UserContext, minus the JWT
// library the teacher pulls in (not part of this module's dependency
// set; HKDF-derived HMAC signing is the grounded substitute, still
// exercising golang.org/x/crypto per the teacher's root go.mod). No
// other package in this module calls it: the agent runtime writes its
// session files unsigned, and internal/httpapi checks no bearer token.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

// Session carries the identity and permission fields a signed
// artifact binds, mirroring the teacher's UserContext.
type Session struct {
	UserID      string    `json:"user_id"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether s has passed its expiry relative to now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Signer derives a per-purpose HMAC key from a master secret via HKDF
// and uses it to sign/verify session artifacts.
type Signer struct {
	key []byte
}

// NewSigner derives a 32-byte signing key from masterSecret using
// HKDF-SHA256, salted and info-tagged by purpose so the same master
// secret can back independent signers (agent sessions, HTTP bearer
// tokens) without key reuse across them.
func NewSigner(masterSecret []byte, purpose string) (*Signer, error) {
	if len(masterSecret) == 0 {
		return nil, fmt.Errorf("auth: master secret is empty")
	}
	kdf := hkdf.New(sha256.New, masterSecret, nil, []byte("luxera-session:"+purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("auth: derive signing key: %w", err)
	}
	return &Signer{key: key}, nil
}

// Sign marshals sess to JSON and returns a base64url-encoded
// payload.signature artifact.
func (s *Signer) Sign(sess Session) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("auth: marshal session: %w", err)
	}
	sig := s.signBytes(payload)
	encPayload := base64.RawURLEncoding.EncodeToString(payload)
	encSig := base64.RawURLEncoding.EncodeToString(sig)
	return encPayload + "." + encSig, nil
}

// Verify checks an artifact produced by Sign, returning the decoded
// Session on success. It rejects malformed or tampered artifacts and
// expired sessions.
func (s *Signer) Verify(artifact string, now time.Time) (Session, error) {
	var sess Session
	payloadEnc, sigEnc, ok := splitArtifact(artifact)
	if !ok {
		return sess, fmt.Errorf("auth: malformed artifact")
	}

	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return sess, fmt.Errorf("auth: decode payload: %w", err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return sess, fmt.Errorf("auth: decode signature: %w", err)
	}

	want := s.signBytes(payload)
	if !hmac.Equal(sig, want) {
		return sess, fmt.Errorf("auth: signature mismatch")
	}

	if err := json.Unmarshal(payload, &sess); err != nil {
		return sess, fmt.Errorf("auth: unmarshal session: %w", err)
	}
	if sess.Expired(now) {
		return sess, fmt.Errorf("auth: session expired at %s", sess.ExpiresAt)
	}
	return sess, nil
}

func (s *Signer) signBytes(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return mac.Sum(nil)
}

func splitArtifact(artifact string) (payload, sig string, ok bool) {
	for i := len(artifact) - 1; i >= 0; i-- {
		if artifact[i] == '.' {
			return artifact[:i], artifact[i+1:], true
		}
	}
	return "", "", false
}

// GenerateMasterSecret returns a fresh random 32-byte secret suitable
// for config.Config.SessionSigningKey, for bootstrapping a deployment
// that has not set LUXERA_SESSION_SIGNING_KEY yet.
func GenerateMasterSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("auth: generate master secret: %w", err)
	}
	return secret, nil
}
