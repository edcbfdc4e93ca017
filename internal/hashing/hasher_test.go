package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-storefront/internal/config"
)

func newTestHasher(pepper string) *Hasher {
	return NewHasher(&config.HashingConfig{
		Argon2MemoryCost:  1024,
		Argon2TimeCost:    1,
		Argon2Parallelism: 1,
		Pepper:            pepper,
	})
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher("pepper")

	encoded, err := h.HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.VerifyPassword("hunter2", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPassword("hunter3", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher("")

	a, err := h.HashPassword("same")
	require.NoError(t, err)
	b, err := h.HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPepperMustMatch(t *testing.T) {
	encoded, err := newTestHasher("one").HashPassword("secret")
	require.NoError(t, err)

	ok, err := newTestHasher("two").VerifyPassword("secret", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := newTestHasher("")

	_, err := h.VerifyPassword("x", "plaintext")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = h.VerifyPassword("x", "$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)

	_, err = h.VerifyPassword("x", "$argon2id$v=19$m=1,t=1,p=1$!!$AAAA")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
