package signature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/rpmhdr/internal/testutil"
)

func TestDescribe(t *testing.T) {
	entity := testutil.NewSigningKey(t)
	sig := testutil.SignDetached(t, entity, []byte("header bytes"))

	infos, err := Describe(sig)
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, 4, info.Version)
	assert.Equal(t, entity.PrimaryKey.KeyId, info.KeyID)
	assert.Equal(t, "EdDSA", info.PubKeyAlgo)
	assert.Equal(t, "SHA-256", info.Hash)
	assert.WithinDuration(t, time.Now(), info.CreatedAt, time.Hour)
}

func TestDescribe_Garbage(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, ErrNoSignature)

	_, err = Describe([]byte{0xAB, 0xAB, 0xAB, 0xAB})
	assert.Error(t, err)
}

func TestKeyIDString(t *testing.T) {
	assert.Equal(t, "0123456789ABCDEF", KeyIDString(0x0123456789abcdef))
	assert.Equal(t, "00000000000000FF", KeyIDString(0xff))
}

func TestDescribe_Version3(t *testing.T) {
	created := time.Date(2013, 7, 1, 12, 0, 0, 0, time.UTC)
	sig := testutil.SignatureV3(0x2EB161FA73E94D3F, created)

	infos, err := Describe(sig)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, Info{
		Version:    3,
		SigType:    0,
		KeyID:      0x2EB161FA73E94D3F,
		PubKeyAlgo: "RSA",
		Hash:       "SHA-256",
		CreatedAt:  created,
	}, infos[0])
}

func TestDescribe_MixedVersions(t *testing.T) {
	entity := testutil.NewSigningKey(t)
	created := time.Date(2013, 7, 1, 12, 0, 0, 0, time.UTC)
	data := append(testutil.SignDetached(t, entity, []byte("header bytes")), testutil.SignatureV3(0x1234, created)...)

	infos, err := Describe(data)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 4, infos[0].Version)
	assert.Equal(t, entity.PrimaryKey.KeyId, infos[0].KeyID)
	assert.Equal(t, 3, infos[1].Version)
	assert.Equal(t, uint64(0x1234), infos[1].KeyID)
}

func TestDescribe_TruncatedVersion3(t *testing.T) {
	sig := testutil.SignatureV3(0x1234, time.Unix(0, 0))
	// keep the framing valid but cut the fixed fields short
	short := append([]byte{0x88, 10}, sig[2:12]...)

	_, err := Describe(short)
	assert.Error(t, err)
}
