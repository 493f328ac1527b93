package util

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// StandardHookMetadataVariant tags the standard metadata layout.
	StandardHookMetadataVariant uint16 = 1

	// MetadataPrefixLength is the fixed byte length of the metadata header:
	// variant (2) | msgValue (32) | gasLimit (32) | refund address (20).
	MetadataPrefixLength = 86

	refundAddressLength = 20
)

// StandardHookMetadata parametrizes hook behavior for a single dispatch. It
// is supplied by the caller per dispatch, consumed by every hook in the call
// chain and discarded after.
type StandardHookMetadata struct {
	Variant  uint16
	MsgValue math.Int
	GasLimit math.Int
	// Address is the 20-byte refund/payer account resolved from the
	// metadata's refundAddress field.
	Address sdk.AccAddress
	// CustomHookMetadata is passed through uninterpreted; bridge-specific
	// hooks decode it further.
	CustomHookMetadata []byte
}

// NewStandardHookMetadata returns metadata with the standard variant and all
// numeric fields zeroed.
func NewStandardHookMetadata() StandardHookMetadata {
	return StandardHookMetadata{
		Variant:  StandardHookMetadataVariant,
		MsgValue: math.ZeroInt(),
		GasLimit: math.ZeroInt(),
	}
}

// ParseStandardHookMetadata decodes a metadata blob. An empty blob decodes to
// defaults; a non-empty blob shorter than the fixed header is rejected rather
// than zero-padded, so caller encoding bugs surface immediately.
func ParseStandardHookMetadata(bz []byte) (StandardHookMetadata, error) {
	if len(bz) == 0 {
		return NewStandardHookMetadata(), nil
	}

	if len(bz) < MetadataPrefixLength {
		return StandardHookMetadata{}, fmt.Errorf("malformed hook metadata: expected at least %d bytes, got %d", MetadataPrefixLength, len(bz))
	}

	metadata := StandardHookMetadata{
		Variant:  binary.BigEndian.Uint16(bz[0:2]),
		MsgValue: math.NewIntFromBigInt(new(big.Int).SetBytes(bz[2:34])),
		GasLimit: math.NewIntFromBigInt(new(big.Int).SetBytes(bz[34:66])),
	}

	// an all-zero refund address means no payer was supplied
	if refund := bz[66:86]; !isZero(refund) {
		metadata.Address = sdk.AccAddress(append([]byte(nil), refund...))
	}

	if len(bz) > MetadataPrefixLength {
		metadata.CustomHookMetadata = bz[MetadataPrefixLength:]
	}

	return metadata, nil
}

// Bytes encodes the metadata as the exact inverse of ParseStandardHookMetadata.
func (m StandardHookMetadata) Bytes() ([]byte, error) {
	bz := make([]byte, MetadataPrefixLength, MetadataPrefixLength+len(m.CustomHookMetadata))

	binary.BigEndian.PutUint16(bz[0:2], m.Variant)

	if err := putUint256(bz[2:34], m.MsgValue, "msgValue"); err != nil {
		return nil, err
	}
	if err := putUint256(bz[34:66], m.GasLimit, "gasLimit"); err != nil {
		return nil, err
	}

	if len(m.Address) > refundAddressLength {
		return nil, fmt.Errorf("refund address exceeds %d bytes", refundAddressLength)
	}
	copy(bz[86-len(m.Address):86], m.Address)

	return append(bz, m.CustomHookMetadata...), nil
}

func isZero(bz []byte) bool {
	for _, b := range bz {
		if b != 0 {
			return false
		}
	}
	return true
}

func putUint256(dst []byte, value math.Int, field string) error {
	if value.IsNil() {
		return nil
	}
	if value.IsNegative() {
		return fmt.Errorf("%s must not be negative", field)
	}
	if value.BigInt().BitLen() > 256 {
		return fmt.Errorf("%s exceeds 256 bits", field)
	}

	value.BigInt().FillBytes(dst)
	return nil
}
