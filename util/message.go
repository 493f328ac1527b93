package util

import (
	"encoding/binary"
	"fmt"
)

// MessagePrefixLength is the fixed byte length of the message header:
// version (1) | nonce (4) | origin (4) | sender (32) | destination (4) | recipient (32).
const MessagePrefixLength = 77

// HyperlaneMessage is one cross-chain dispatch. It is produced once on the
// origin chain and never mutated; its content hash is the canonical id every
// hook operates on.
type HyperlaneMessage struct {
	Version     uint8
	Nonce       uint32
	Origin      uint32
	Sender      HexAddress
	Destination uint32
	Recipient   HexAddress
	Body        []byte
}

// ParseHyperlaneMessage decodes the wire format. Blobs shorter than the fixed
// header are rejected.
func ParseHyperlaneMessage(bz []byte) (HyperlaneMessage, error) {
	if len(bz) < MessagePrefixLength {
		return HyperlaneMessage{}, fmt.Errorf("invalid hyperlane message: expected at least %d bytes, got %d", MessagePrefixLength, len(bz))
	}

	message := HyperlaneMessage{
		Version:     bz[0],
		Nonce:       binary.BigEndian.Uint32(bz[1:5]),
		Origin:      binary.BigEndian.Uint32(bz[5:9]),
		Destination: binary.BigEndian.Uint32(bz[41:45]),
		Body:        bz[MessagePrefixLength:],
	}
	copy(message.Sender[:], bz[9:41])
	copy(message.Recipient[:], bz[45:77])

	return message, nil
}

// Bytes encodes the message into its wire format.
func (m HyperlaneMessage) Bytes() []byte {
	bz := make([]byte, MessagePrefixLength+len(m.Body))

	bz[0] = m.Version
	binary.BigEndian.PutUint32(bz[1:5], m.Nonce)
	binary.BigEndian.PutUint32(bz[5:9], m.Origin)
	copy(bz[9:41], m.Sender[:])
	binary.BigEndian.PutUint32(bz[41:45], m.Destination)
	copy(bz[45:77], m.Recipient[:])
	copy(bz[MessagePrefixLength:], m.Body)

	return bz
}

// Id returns the keccak256 content hash of the encoded message.
func (m HyperlaneMessage) Id() HexAddress {
	return HexAddress(Keccak256(m.Bytes()))
}

func (m HyperlaneMessage) String() string {
	return m.Id().String()
}
