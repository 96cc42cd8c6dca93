package hash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

type HashAlgorithm string

const (
	MD5    HashAlgorithm = "md5"
	SHA1   HashAlgorithm = "sha1"
	SHA256 HashAlgorithm = "sha256"
	SHA512 HashAlgorithm = "sha512"
)

type Hasher interface {
	Algorithm() HashAlgorithm
	Calculate(data []byte) (string, error)
	CalculateReader(reader io.Reader) (string, error)
	Verify(data []byte, expectedHash string) (bool, error)
	Ref(sum string) string
}

type FileHasher struct {
	algorithm HashAlgorithm
}

// ParseAlgorithm maps a configured name such as "SHA256" to a supported algorithm.
func ParseAlgorithm(name string) (HashAlgorithm, error) {
	algorithm := HashAlgorithm(strings.ToLower(strings.TrimSpace(name)))
	if _, err := digestSize(algorithm); err != nil {
		return "", err
	}
	return algorithm, nil
}

func NewFileHasher(algorithm HashAlgorithm) *FileHasher {
	return &FileHasher{
		algorithm: algorithm,
	}
}

func (h *FileHasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

func (h *FileHasher) Calculate(data []byte) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *FileHasher) CalculateReader(reader io.Reader) (string, error) {
	hasher, err := h.getHasher()
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func (h *FileHasher) Verify(data []byte, expectedHash string) (bool, error) {
	calculatedHash, err := h.Calculate(data)
	if err != nil {
		return false, err
	}

	return calculatedHash == expectedHash, nil
}

// Ref formats a digest as "<algorithm>:<hex>".
func (h *FileHasher) Ref(sum string) string {
	return string(h.algorithm) + ":" + sum
}

// ParseRef splits "<algorithm>:<hex>" and checks the digest is well formed.
func ParseRef(ref string) (HashAlgorithm, string, error) {
	algo, sum, ok := strings.Cut(ref, ":")
	if !ok {
		return "", "", fmt.Errorf("malformed reference: %q", ref)
	}

	size, err := digestSize(HashAlgorithm(algo))
	if err != nil {
		return "", "", err
	}

	decoded, err := hex.DecodeString(sum)
	if err != nil || len(decoded) != size {
		return "", "", fmt.Errorf("malformed %s digest: %q", algo, sum)
	}

	return HashAlgorithm(algo), strings.ToLower(sum), nil
}

func (h *FileHasher) getHasher() (hash.Hash, error) {
	switch h.algorithm {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", h.algorithm)
	}
}

func digestSize(algorithm HashAlgorithm) (int, error) {
	switch algorithm {
	case MD5:
		return md5.Size, nil
	case SHA1:
		return sha1.Size, nil
	case SHA256:
		return sha256.Size, nil
	case SHA512:
		return sha512.Size, nil
	default:
		return 0, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}
