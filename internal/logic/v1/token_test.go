package v1

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	codec := NewTokenCodec([]byte("super-secret"), 0, WithClock(clock.Now))
	assert.Equal(t, DefaultTokenTTL, codec.TTL())

	tok, err := codec.Issue("user-123")
	require.NoError(t, err)

	claims, err := codec.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.SubjectID())
	assert.Equal(t, "user-123", claims.Subject)
	assert.True(t, clock.t.Equal(claims.IssuedAt.Time))
	assert.True(t, clock.t.Add(4*time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestTokenCodec_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	codec := NewTokenCodec([]byte("k"), 4*time.Hour, WithClock(clock.Now))

	tok, err := codec.Issue("u1")
	require.NoError(t, err)

	clock.Advance(4*time.Hour - time.Second)
	_, err = codec.Verify(tok)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	tok, err := NewTokenCodec([]byte("right-secret"), time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenCodec([]byte("wrong-secret"), time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Tampered(t *testing.T) {
	codec := NewTokenCodec([]byte("k"), time.Hour)
	tok, err := codec.Issue("u3")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged, err := NewTokenCodec([]byte("k"), time.Hour).Issue("someone-else")
	require.NoError(t, err)
	parts[1] = strings.Split(forged, ".")[1]

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UID:              "u4",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenCodec([]byte("k"), time.Hour).Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_RequiresExpiry(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{UID: "u5"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenCodec([]byte("k"), time.Hour).Verify(noExp)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_Malformed(t *testing.T) {
	_, err := NewTokenCodec([]byte("k"), time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}
