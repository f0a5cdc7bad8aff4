package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner([]byte("a-test-master-secret-value-123456"), "agent_session")
	require.NoError(t, err)
	return s
}

func TestSignVerify_RoundTrips(t *testing.T) {
	s := testSigner(t)
	now := time.Now()
	sess := Session{UserID: "agent", Roles: []string{"agent"}, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	artifact, err := s.Sign(sess)
	require.NoError(t, err)

	got, err := s.Verify(artifact, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "agent", got.UserID)
}

func TestVerify_RejectsTamperedPayload(t *testing.T) {
	s := testSigner(t)
	now := time.Now()
	sess := Session{UserID: "agent", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	artifact, err := s.Sign(sess)
	require.NoError(t, err)

	tampered := artifact + "x"
	_, err = s.Verify(tampered, now)
	assert.Error(t, err)
}

func TestVerify_RejectsExpiredSession(t *testing.T) {
	s := testSigner(t)
	now := time.Now()
	sess := Session{UserID: "agent", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}

	artifact, err := s.Sign(sess)
	require.NoError(t, err)

	_, err = s.Verify(artifact, now)
	assert.Error(t, err)
}

func TestNewSigner_RejectsEmptySecret(t *testing.T) {
	_, err := NewSigner(nil, "agent_session")
	assert.Error(t, err)
}

func TestNewSigner_DifferentPurposesDeriveDifferentKeys(t *testing.T) {
	secret := []byte("shared-master-secret-value-abcdef")
	a, err := NewSigner(secret, "agent_session")
	require.NoError(t, err)
	b, err := NewSigner(secret, "http_bearer")
	require.NoError(t, err)

	now := time.Now()
	sess := Session{UserID: "agent", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	artifact, err := a.Sign(sess)
	require.NoError(t, err)

	_, err = b.Verify(artifact, now)
	assert.Error(t, err)
}
