package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	SetCost(bcrypt.MinCost)
	t.Cleanup(func() { SetCost(bcrypt.DefaultCost) })

	hash, err := Hash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, Verify("s3cret!", hash))
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("s3cret!", "not-a-hash"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("secret", "secret"))
	assert.ErrorIs(t, Validate("short", "short"), ErrTooShort)
	assert.ErrorIs(t, Validate("secret", "secreT"), ErrMismatch)

	long := strings.Repeat("a", maxBytes+1)
	assert.ErrorIs(t, Validate(long, long), ErrTooLong)
	_, err := Hash(long)
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestNeedsRehash(t *testing.T) {
	SetCost(bcrypt.MinCost)
	hash, err := Hash("s3cret!")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	SetCost(bcrypt.MinCost + 1)
	t.Cleanup(func() { SetCost(bcrypt.DefaultCost) })
	assert.True(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("garbage"))
}
