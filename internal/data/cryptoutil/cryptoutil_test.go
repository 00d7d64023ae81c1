package cryptoutil

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestAESGCMEncryptor_RoundTrip(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	ct, err := enc.Encrypt([]byte("bearer-token"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "v1:"))
	assert.NotContains(t, ct, "bearer-token")

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("bearer-token"), pt)
}

func TestAESGCMEncryptor_NonceVaries(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	a, err := enc.Encrypt([]byte("same"))
	require.NoError(t, err)
	b, err := enc.Encrypt([]byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESGCMEncryptor_ReadsNoopPayload(t *testing.T) {
	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	legacy := plainPrefix + base64.StdEncoding.EncodeToString([]byte("legacy"))
	pt, err := enc.Decrypt(legacy)
	require.NoError(t, err)
	assert.Equal(t, []byte("legacy"), pt)
}

func TestAESGCMEncryptor_Errors(t *testing.T) {
	_, err := NewAESGCMEncryptor([]byte("short"))
	require.Error(t, err)

	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	_, err = enc.Decrypt("v2:abc")
	assert.ErrorContains(t, err, "unknown ciphertext version")

	_, err = enc.Decrypt("v1:" + base64.StdEncoding.EncodeToString([]byte("x")))
	assert.ErrorContains(t, err, "too short")

	other := testKey()
	other[0] = 0xff
	otherEnc, err := NewAESGCMEncryptor(other)
	require.NoError(t, err)
	ct, err := otherEnc.Encrypt([]byte("secret"))
	require.NoError(t, err)
	_, err = enc.Decrypt(ct)
	assert.Error(t, err, "wrong key must not decrypt")
}

func TestNoopEncryptor(t *testing.T) {
	var enc NoopEncryptor
	ct, err := enc.Encrypt([]byte("plain"))
	require.NoError(t, err)

	pt, err := enc.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), pt)

	_, err = enc.Decrypt("v1:xyz")
	assert.Error(t, err)
}

func TestSealJSON_OpenJSON(t *testing.T) {
	type record struct {
		Token string `json:"userToken"`
	}

	enc, err := NewAESGCMEncryptor(testKey())
	require.NoError(t, err)

	for name, e := range map[string]Encryptor{"aes": enc, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			sealed, err := SealJSON(e, record{Token: "tok"})
			require.NoError(t, err)

			var got record
			require.NoError(t, OpenJSON(e, sealed, &got))
			assert.Equal(t, "tok", got.Token)
		})
	}

	var got record
	assert.Error(t, OpenJSON(nil, plainPrefix+base64.StdEncoding.EncodeToString([]byte("{")), &got))
}
