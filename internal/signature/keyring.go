package signature

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// LoadKeyRing reads public keys from an armored or binary key file
func LoadKeyRing(path string) (openpgp.EntityList, error) {
	if path == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	// Try to parse as armored key first
	entityList, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try as binary key
		entityList, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in key file")
	}

	return entityList, nil
}

// Verify checks the detached signature sig over signed against keyring and
// returns the signing entity
func Verify(keyring openpgp.KeyRing, signed, sig []byte) (*openpgp.Entity, error) {
	// go-crypto skips packets it cannot parse and would only report a
	// missing signature.
	if infos, err := Describe(sig); err == nil && infos[0].Version < 4 {
		return nil, fmt.Errorf("%w %d (key %s)", ErrUnsupportedVersion, infos[0].Version, KeyIDString(infos[0].KeyID))
	}

	signer, err := openpgp.CheckDetachedSignature(keyring, bytes.NewReader(signed), bytes.NewReader(sig), nil)
	if err != nil {
		return nil, fmt.Errorf("signature check failed: %w", err)
	}
	return signer, nil
}
