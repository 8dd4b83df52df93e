package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "bcm-backend", time.Hour)
	userID, orgID := uuid.New(), uuid.New()

	issued, err := m.Generate(userID, orgID, "a@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Equal(t, "bearer", issued.TokenType)

	claims, err := m.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, claims.ID)

	gotUser, gotOrg, err := claims.ParseIDs()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, orgID, gotOrg)
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestTokenManagerRejectsForeignSecret(t *testing.T) {
	issued, err := NewTokenManager("one", "bcm-backend", time.Hour).Generate(uuid.New(), uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("two", "bcm-backend", time.Hour).Validate(issued.Token)
	assert.Error(t, err)
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", "bcm-backend", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	issued, err := m.Generate(uuid.New(), uuid.New(), "a@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(issued.Token)
	assert.Error(t, err)
}

func TestTokenManagerRejectsWrongIssuer(t *testing.T) {
	issued, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(uuid.New(), uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "bcm-backend", time.Hour).Validate(issued.Token)
	assert.Error(t, err)
}
