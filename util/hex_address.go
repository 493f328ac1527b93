package util

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// HexAddressLength is the byte length of every hook identifier.
const HexAddressLength = 32

// HexAddress is the 32-byte identifier under which a hook instance is
// addressable. The layout packs a module specifier hash, the hook type and a
// monotonically assigned internal id:
//
//	[0:20]  keccak256(module specifier)[12:]
//	[20:24] hook type (big endian)
//	[24:32] internal id (big endian)
type HexAddress [HexAddressLength]byte

// NewHexAddress derives a fresh hook identifier for the given module
// specifier, hook type and internal id.
func NewHexAddress(module string, hookType uint32, internalId uint64) HexAddress {
	var addr HexAddress

	moduleHash := Keccak256([]byte(module))
	copy(addr[0:20], moduleHash[12:])
	binary.BigEndian.PutUint32(addr[20:24], hookType)
	binary.BigEndian.PutUint64(addr[24:32], internalId)

	return addr
}

// DecodeHexAddress parses a 0x-prefixed (or bare) hex string into a HexAddress.
func DecodeHexAddress(s string) (HexAddress, error) {
	s = strings.TrimPrefix(s, "0x")

	bz, err := hex.DecodeString(s)
	if err != nil {
		return HexAddress{}, err
	}

	if len(bz) != HexAddressLength {
		return HexAddress{}, fmt.Errorf("invalid hex address length: expected %d bytes, got %d", HexAddressLength, len(bz))
	}

	var addr HexAddress
	copy(addr[:], bz)
	return addr, nil
}

// NewZeroAddress returns the all-zero hook identifier.
func NewZeroAddress() HexAddress {
	return HexAddress{}
}

func (h HexAddress) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h HexAddress) Bytes() []byte {
	return h[:]
}

// GetType extracts the hook type tag embedded in the identifier.
func (h HexAddress) GetType() uint32 {
	return binary.BigEndian.Uint32(h[20:24])
}

// GetInternalId extracts the internal id under which the hook state is stored.
func (h HexAddress) GetInternalId() uint64 {
	return binary.BigEndian.Uint64(h[24:32])
}

func (h HexAddress) IsZeroAddress() bool {
	return h == HexAddress{}
}

func (h HexAddress) Equal(other HexAddress) bool {
	return bytes.Equal(h[:], other[:])
}

// MarshalText implements encoding.TextMarshaler so identifiers render as
// 0x-hex in genesis JSON.
func (h HexAddress) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HexAddress) UnmarshalText(text []byte) error {
	addr, err := DecodeHexAddress(string(text))
	if err != nil {
		return err
	}
	*h = addr
	return nil
}
