package password

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-service/internal/domain"
)

var bcryptForm = regexp.MustCompile(`^\$2[ab]\$\d+\$`)

func TestHash_Format(t *testing.T) {
	t.Parallel()
	h := &Hasher{Cost: 4}

	got, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.Len(t, got, 60)
	assert.Regexp(t, bcryptForm, got)
	assert.NotContains(t, got, "secret123")
}

func TestHash_DefaultCostIsTen(t *testing.T) {
	t.Parallel()
	got, err := NewHasher().Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got[4:], "10$"), "got %q", got)
}

func TestHash_SaltPerCall(t *testing.T) {
	t.Parallel()
	h := &Hasher{Cost: 4}

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same-password", a))
	assert.True(t, h.Verify("same-password", b))
}

func TestVerify_Mismatch(t *testing.T) {
	t.Parallel()
	h := &Hasher{Cost: 4}

	for _, pw := range []string{"p", "secret123", "üñíçødé pass"} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, h.Verify(pw, hashed))
		assert.False(t, h.Verify(pw+"x", hashed))
		assert.False(t, h.Verify("", hashed))
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()
	assert.False(t, NewHasher().Verify("secret123", "not-a-hash"))
	assert.False(t, NewHasher().Verify("secret123", ""))
}

func TestHash_Errors(t *testing.T) {
	t.Parallel()
	h := &Hasher{Cost: 4}

	_, err := h.Hash("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrHashing))

	_, err = h.Hash(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrHashing))

	_, err = (&Hasher{Cost: 99}).Hash("secret123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrHashing))
}
