// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inco 加密网关与可证明解密服务的客户端
package inco

import (
	"context"
	"math/big"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ilog = log.New("module", "inco")

// Namespace rpc namespace of the gateway
const Namespace = "lightning"

// EncryptService remote encryption gateway
type EncryptService interface {
	Encrypt(ctx context.Context, value *big.Int, account, dapp common.Address, handleType uint8) ([]byte, error)
}

// DecryptService remote attested decryption
type DecryptService interface {
	AttestedDecrypt(ctx context.Context, req *DecryptRequest) ([]*DecryptResult, error)
}

// DecryptRequest handles to reveal, signed by the requesting wallet
type DecryptRequest struct {
	Account   common.Address `json:"account"`
	Handles   []types.Handle `json:"handles"`
	Signature hexutil.Bytes  `json:"signature"`
}

// DecryptResult one revealed handle. Plaintext is nil when the service could not reveal it.
type DecryptResult struct {
	Handle     types.Handle    `json:"handle"`
	Plaintext  *hexutil.Big    `json:"plaintext"`
	Signatures []hexutil.Bytes `json:"signatures"`
}

// DecryptDigest message a wallet signs to request decryption of handles
func DecryptDigest(account common.Address, handles []types.Handle) []byte {
	data := make([][]byte, 0, len(handles)+1)
	data = append(data, account.Bytes())
	for i := range handles {
		data = append(data, handles[i][:])
	}
	return crypto.Keccak256(data...)
}

// AttestationDigest message an attester signs for one revealed value
func AttestationDigest(handle types.Handle, value *big.Int) []byte {
	return crypto.Keccak256(handle[:], common.LeftPadBytes(value.Bytes(), 32))
}

// VerifyAttestation signature over (handle, value) was produced by attester
func VerifyAttestation(handle types.Handle, value *big.Int, sig []byte, attester common.Address) bool {
	pub, err := crypto.SigToPub(AttestationDigest(handle, value), sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == attester
}
