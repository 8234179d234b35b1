package jwtx

import (
	"fmt"
	"math/rand/v2"

	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
)

// KeyManager owns the signing keys of one process and the KeySet used to
// verify tokens they produce.
//
// Keys are ephemeral: they only live in memory, so every session token
// becomes invalid when the process restarts. Sessions are short and sign-in
// is cheap, so that is acceptable here.
type KeyManager struct {
	Verifier *EdDSAVerifier
	KeySet   *KeySet

	signers []Signer
}

// KeyManagerOptions configures NewEphemeralKeyManager.
type KeyManagerOptions struct {
	// Issuer is stamped into and required on every token.
	Issuer string

	// NumKeys is how many signing keys to generate. Defaults to 2, capped at 10.
	NumKeys int
}

// NewEphemeralKeyManager generates fresh Ed25519 keys.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 2
	}
	numKeys = min(numKeys, 10)

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := range numKeys {
		kid, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate key id: %w", err)
		}

		key, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}

		signer, err := NewSignerEdDSA("squadgate-"+kid, key)
		if err != nil {
			return nil, fmt.Errorf("jwtx: signer %d: %w", i+1, err)
		}
		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: add signer %d: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, opts.Issuer),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// IsReady reports whether keys are loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns one of the signing keys at random.
func (km *KeyManager) GetSigner() Signer {
	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))]
}
