package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCredential(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantScheme Scheme
		wantErr    error
	}{
		{name: "bearer", input: "Bearer abc.def.ghi", wantScheme: SchemeBearer},
		{name: "system", input: "System abc.def.ghi", wantScheme: SchemeSystem},
		{name: "empty", input: "", wantErr: ErrMissingToken},
		{name: "no token", input: "Bearer", wantErr: ErrMissingToken},
		{name: "unknown scheme", input: "Basic abc", wantErr: ErrInvalidScheme},
		{name: "lowercase scheme", input: "bearer abc", wantErr: ErrInvalidScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheme, token, err := SplitCredential(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, scheme)
			assert.Equal(t, "abc.def.ghi", token)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	require.NotNil(t, claims.IssuedAt)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	token, err := GenerateToken("secret", "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestOTPVerify(t *testing.T) {
	code, hash, err := GenerateOTP()
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, VerifyOTP(code, hash))

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}
	assert.False(t, VerifyOTP(wrong, hash))
}
