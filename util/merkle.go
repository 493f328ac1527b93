package util

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// TreeDepth is the fixed depth of the incremental Merkle tree.
	TreeDepth = 32

	// MaxLeaves is the maximum number of leaves an incremental tree of
	// TreeDepth can hold.
	MaxLeaves = 1<<TreeDepth - 1

	merkleTreeEncodedSize = 4 + TreeDepth*32
)

// ErrTreeFull is returned when inserting into a tree that already holds
// MaxLeaves leaves.
var ErrTreeFull = errors.New("merkle tree is full")

// zeroHashes[i] is the root of a zero subtree of depth i.
var zeroHashes [TreeDepth][32]byte

func init() {
	for i := 1; i < TreeDepth; i++ {
		zeroHashes[i] = Keccak256(zeroHashes[i-1][:], zeroHashes[i-1][:])
	}
}

// MerkleTree is an append-only incremental Merkle tree of fixed depth. Only
// the branch of intermediate hashes and the leaf count are kept; the root is
// recomputed on demand in O(depth).
type MerkleTree struct {
	Branch [TreeDepth][32]byte
	Count  uint32
}

// Insert appends a leaf. The count increases by exactly one and previously
// inserted leaves are never overwritten.
func (t *MerkleTree) Insert(leaf [32]byte) error {
	if uint64(t.Count) >= MaxLeaves {
		return ErrTreeFull
	}

	t.Count++
	size := t.Count
	node := leaf

	for i := 0; i < TreeDepth; i++ {
		if size&1 == 1 {
			t.Branch[i] = node
			return nil
		}
		node = Keccak256(t.Branch[i][:], node[:])
		size /= 2
	}

	// unreachable while Count <= MaxLeaves
	return ErrTreeFull
}

// Root returns the current root, a deterministic function of the ordered leaf
// sequence inserted so far.
func (t *MerkleTree) Root() [32]byte {
	index := t.Count

	var node [32]byte
	for i := 0; i < TreeDepth; i++ {
		if (index>>i)&1 == 1 {
			node = Keccak256(t.Branch[i][:], node[:])
		} else {
			node = Keccak256(node[:], zeroHashes[i][:])
		}
	}

	return node
}

// Marshal encodes the tree as big-endian count followed by the branch nodes.
func (t *MerkleTree) Marshal() []byte {
	bz := make([]byte, merkleTreeEncodedSize)
	binary.BigEndian.PutUint32(bz[0:4], t.Count)
	for i := 0; i < TreeDepth; i++ {
		copy(bz[4+i*32:4+(i+1)*32], t.Branch[i][:])
	}
	return bz
}

// UnmarshalMerkleTree decodes a tree produced by Marshal.
func UnmarshalMerkleTree(bz []byte) (MerkleTree, error) {
	if len(bz) != merkleTreeEncodedSize {
		return MerkleTree{}, fmt.Errorf("invalid merkle tree encoding: expected %d bytes, got %d", merkleTreeEncodedSize, len(bz))
	}

	tree := MerkleTree{Count: binary.BigEndian.Uint32(bz[0:4])}
	for i := 0; i < TreeDepth; i++ {
		copy(tree.Branch[i][:], bz[4+i*32:4+(i+1)*32])
	}
	return tree, nil
}

type merkleTreeJSON struct {
	Branch []string `json:"branch"`
	Count  uint32   `json:"count"`
}

func (t MerkleTree) MarshalJSON() ([]byte, error) {
	branch := make([]string, TreeDepth)
	for i := range t.Branch {
		branch[i] = hex.EncodeToString(t.Branch[i][:])
	}
	return json.Marshal(merkleTreeJSON{Branch: branch, Count: t.Count})
}

func (t *MerkleTree) UnmarshalJSON(bz []byte) error {
	var aux merkleTreeJSON
	if err := json.Unmarshal(bz, &aux); err != nil {
		return err
	}
	if len(aux.Branch) != TreeDepth {
		return fmt.Errorf("invalid merkle tree branch length: %d", len(aux.Branch))
	}

	tree := MerkleTree{Count: aux.Count}
	for i, node := range aux.Branch {
		decoded, err := hex.DecodeString(node)
		if err != nil {
			return err
		}
		if len(decoded) != 32 {
			return fmt.Errorf("invalid branch node length: %d", len(decoded))
		}
		copy(tree.Branch[i][:], decoded)
	}

	*t = tree
	return nil
}
