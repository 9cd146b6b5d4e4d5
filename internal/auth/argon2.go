package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/go-crypt/crypt"
	"github.com/go-crypt/crypt/algorithm"
	"github.com/go-crypt/crypt/algorithm/argon2"
)

// ErrInvalidHash is returned when a stored digest is not a valid argon2id PHC string.
var ErrInvalidHash = errors.New("invalid argon2id hash")

// Params are the argon2id cost parameters.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams matches the node-argon2 defaults for argon2id.
func DefaultParams() Params {
	return Params{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and verifies argon2id digests in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
//
// Verification uses the parameters embedded in the digest, not the hasher's own.
type Hasher struct {
	params  Params
	random  io.Reader
	hasher  *argon2.Hasher
	decoder *crypt.Decoder
	dummy   string
}

// NewHasher creates a hasher and precomputes the dummy digest used to
// equalize the cost of verifying unknown usernames.
func NewHasher(params Params) (*Hasher, error) {
	return newHasher(params, rand.Reader)
}

func newHasher(params Params, random io.Reader) (*Hasher, error) {
	if params.SaltLength == 0 || params.KeyLength == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return nil, fmt.Errorf("argon2id params must be non-zero: %+v", params)
	}

	hasher, err := argon2.New(
		argon2.WithVariant(argon2.VariantID),
		argon2.WithM(params.MemoryKiB),
		argon2.WithT(int(params.Iterations)),
		argon2.WithP(int(params.Parallelism)),
		argon2.WithS(int(params.SaltLength)),
		argon2.WithK(int(params.KeyLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("configure argon2id: %w", err)
	}

	decoder := crypt.NewDecoder()
	if err := argon2.RegisterDecoderArgon2id(decoder); err != nil {
		return nil, fmt.Errorf("register argon2id decoder: %w", err)
	}

	h := &Hasher{params: params, random: random, hasher: hasher, decoder: decoder}

	seed := make([]byte, 32)
	if _, err := io.ReadFull(random, seed); err != nil {
		return nil, fmt.Errorf("generate dummy password: %w", err)
	}
	dummy, err := h.Hash(base64.RawStdEncoding.EncodeToString(seed))
	if err != nil {
		return nil, fmt.Errorf("generate dummy digest: %w", err)
	}
	h.dummy = dummy

	return h, nil
}

// Params returns the parameters used for new digests.
func (h *Hasher) Params() Params {
	return h.params
}

// Hash derives a new digest for password with a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest, err := h.hasher.HashWithSalt(password, salt)
	if err != nil {
		return "", fmt.Errorf("derive argon2id key: %w", err)
	}
	return digest.Encode(), nil
}

// Verify reports whether password matches encoded. A malformed digest is an
// error, not a mismatch.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	digest, err := h.decode(encoded)
	if err != nil {
		return false, err
	}

	ok, err := digest.MatchAdvanced(password)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return ok, nil
}

// VerifyDummy spends the same work as Verify against a digest that no
// password matches. Call it when the user does not exist. The dummy uses the
// hasher's current parameters, so the cost only matches stored digests
// created with the same m, t and p.
func (h *Hasher) VerifyDummy(password string) {
	_, _ = h.Verify(password, h.dummy)
}

func (h *Hasher) decode(encoded string) (algorithm.Digest, error) {
	digest, err := h.decoder.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return digest, nil
}
