package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// argon2id parameters for newly created digests. Existing digests carry their
// own parameters and are verified with those.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonSaltLen        = 16
	argonKeyLen  uint32 = 32
)

// Upper bounds on parameters read back from stored digests.
const (
	maxArgonTime    uint32 = 16
	maxArgonMemory  uint32 = 512 * 1024
	maxArgonThreads uint8  = 16
	maxArgonKeyLen         = 128
)

// PasswordHasher produces salted one-way digests and checks plaintexts against them.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns false with a nil error on mismatch and ErrCorruptCredential
	// when the digest cannot be parsed.
	Verify(plaintext, digest string) (bool, error)
}

// NewPasswordHasher returns a hasher creating digests with the named algorithm.
// Verification accepts digests of every supported algorithm so switching the
// configured algorithm keeps existing accounts usable.
func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid bcrypt cost %d", bcryptCost)
	}

	b := &bcryptHasher{cost: bcryptCost}
	a := &argon2Hasher{}

	switch algorithm {
	case HasherBcrypt, "":
		return &hasherSet{primary: b, bcrypt: b, argon: a}, nil
	case HasherArgon2id:
		return &hasherSet{primary: a, bcrypt: b, argon: a}, nil
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algorithm)
	}
}

type hasherSet struct {
	primary PasswordHasher
	bcrypt  *bcryptHasher
	argon   *argon2Hasher
}

func (h *hasherSet) Hash(plaintext string) (string, error) {
	return h.primary.Hash(plaintext)
}

func (h *hasherSet) Verify(plaintext, digest string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return h.argon.Verify(plaintext, digest)
	case strings.HasPrefix(digest, "$2"):
		return h.bcrypt.Verify(plaintext, digest)
	default:
		return false, ErrCorruptCredential
	}
}

type bcryptHasher struct {
	cost int
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
}

type argon2Hasher struct{}

// Hash encodes the digest in PHC form: $argon2id$v=19$m=..,t=..,p=..$salt$hash
func (h *argon2Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *argon2Hasher) Verify(plaintext, digest string) (bool, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != HasherArgon2id {
		return false, ErrCorruptCredential
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrCorruptCredential
	}

	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrCorruptCredential
	}
	if memory == 0 || iterations == 0 || threads == 0 ||
		memory > maxArgonMemory || iterations > maxArgonTime || threads > maxArgonThreads {
		return false, ErrCorruptCredential
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return false, ErrCorruptCredential
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > maxArgonKeyLen {
		return false, ErrCorruptCredential
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
