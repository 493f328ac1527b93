package util

import (
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the legacy Keccak-256 digest used for message ids and
// Merkle tree nodes.
func Keccak256(data ...[]byte) [32]byte {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}

	var digest [32]byte
	copy(digest[:], hash.Sum(nil))
	return digest
}
