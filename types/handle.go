// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ciphertext layout: 4 byte version | 32 byte handle | payload
const (
	HandleLength         = 32
	CiphertextVersionLen = 4
	CiphertextHeaderLen  = CiphertextVersionLen + HandleLength

	// CiphertextVersion protocol version expected in front of every ciphertext
	CiphertextVersion uint32 = 1
	// HandleTypeEuint256 handle type of an encrypted uint256
	HandleTypeEuint256 uint8 = 8
)

// Handle opaque reference to an encrypted value, the zero handle means "absent"
type Handle [HandleLength]byte

// BytesToHandle right aligned like common.BytesToHash
func BytesToHandle(b []byte) Handle {
	var h Handle
	if len(b) > HandleLength {
		b = b[len(b)-HandleLength:]
	}
	copy(h[HandleLength-len(b):], b)
	return h
}

// HexToHandle parse 0x prefixed hex
func HexToHandle(s string) (Handle, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return Handle{}, err
	}
	if len(b) != HandleLength {
		return Handle{}, ErrMalformedHandle
	}
	return BytesToHandle(b), nil
}

// IsZero sentinel check
func (h Handle) IsZero() bool {
	return h == Handle{}
}

// Hex 0x prefixed
func (h Handle) Hex() string {
	return hexutil.Encode(h[:])
}

// String implements fmt.Stringer
func (h Handle) String() string {
	return h.Hex()
}

// Hash same bytes as a common.Hash
func (h Handle) Hash() common.Hash {
	return common.Hash(h)
}

// MarshalText hex encoding for json
func (h Handle) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// UnmarshalText hex decoding for json
func (h *Handle) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Handle", input, h[:])
}

// Ciphertext versioned blob returned by the encryption service
type Ciphertext struct {
	Version uint32
	Handle  Handle
	Payload []byte
	Raw     []byte
}

// ParseCiphertext splits a blob into version, handle and payload
func ParseCiphertext(raw []byte) (*Ciphertext, error) {
	if len(raw) < CiphertextHeaderLen {
		return nil, ErrMalformedCiphertext
	}
	ct := &Ciphertext{
		Version: binary.BigEndian.Uint32(raw[:CiphertextVersionLen]),
		Handle:  BytesToHandle(raw[CiphertextVersionLen:CiphertextHeaderLen]),
		Payload: common.CopyBytes(raw[CiphertextHeaderLen:]),
		Raw:     common.CopyBytes(raw),
	}
	return ct, nil
}

// EncodeCiphertext inverse of ParseCiphertext
func EncodeCiphertext(version uint32, handle Handle, payload []byte) []byte {
	out := make([]byte, CiphertextHeaderLen+len(payload))
	binary.BigEndian.PutUint32(out, version)
	copy(out[CiphertextVersionLen:], handle[:])
	copy(out[CiphertextHeaderLen:], payload)
	return out
}

// AttestedValue plaintext plus the attesting service signatures
type AttestedValue struct {
	Value      *big.Int
	Signatures [][]byte
}

// RevealedChoice one player's decrypted choice, only kept in memory
type RevealedChoice struct {
	Player     common.Address
	Handle     Handle
	Value      *big.Int
	Signatures [][]byte
}
