package auth_test

import (
	"strings"
	"testing"

	"securevault/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher() *auth.Hasher {
	// Reduced work factors to keep tests fast
	return auth.NewHasher(8*1024, 1, 1)
}

func TestHasher_Hash(t *testing.T) {
	hasher := newTestHasher()

	hash, err := hasher.Hash("Correct!Horse9Battery")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=8192,t=1,p=1", parts[3])
}

func TestHasher_HashUnique(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.Hash("Correct!Horse9Battery")
	require.NoError(t, err)
	second, err := hasher.Hash("Correct!Horse9Battery")
	require.NoError(t, err)

	// Fresh salt per hash
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify(first, "Correct!Horse9Battery"))
	assert.True(t, hasher.Verify(second, "Correct!Horse9Battery"))
}

func TestHasher_Verify(t *testing.T) {
	hasher := newTestHasher()

	hash, err := hasher.Hash("Correct!Horse9Battery")
	require.NoError(t, err)

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{
			name:     "correct password",
			hash:     hash,
			password: "Correct!Horse9Battery",
			want:     true,
		},
		{
			name:     "wrong password",
			hash:     hash,
			password: "Wrong!Horse9Battery",
			want:     false,
		},
		{
			name:     "empty password",
			hash:     hash,
			password: "",
			want:     false,
		},
		{
			name:     "empty hash fails closed",
			hash:     "",
			password: "Correct!Horse9Battery",
			want:     false,
		},
		{
			name:     "malformed hash fails closed",
			hash:     "$argon2id$v=19$garbage",
			password: "Correct!Horse9Battery",
			want:     false,
		},
		{
			name:     "wrong algorithm fails closed",
			hash:     strings.Replace(hash, "argon2id", "argon2i", 1),
			password: "Correct!Horse9Battery",
			want:     false,
		},
		{
			name:     "bad salt encoding fails closed",
			hash:     "$argon2id$v=19$m=8192,t=1,p=1$!!!!$aGVsbG8",
			password: "Correct!Horse9Battery",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Verify(tt.hash, tt.password))
		})
	}
}

func TestHasher_VerifyDifferentWorkFactors(t *testing.T) {
	// A hash made with other work factors still verifies; parameters come
	// from the encoded hash, not the hasher
	strong := auth.NewHasher(16*1024, 2, 2)
	hash, err := strong.Hash("Correct!Horse9Battery")
	require.NoError(t, err)

	weak := newTestHasher()
	assert.True(t, weak.Verify(hash, "Correct!Horse9Battery"))
	assert.False(t, weak.Verify(hash, "Wrong!Horse9Battery"))
}
