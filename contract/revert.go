// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type dataError interface {
	ErrorData() interface{}
}

// RevertReason decodes custom error data attached to a failed call or gas estimate
func RevertReason(err error) (string, bool) {
	var de dataError
	if !errors.As(err, &de) {
		return "", false
	}
	var data []byte
	switch v := de.ErrorData().(type) {
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return "", false
		}
		data = b
	case []byte:
		data = v
	default:
		return "", false
	}
	return DecodeRevertData(data)
}

// DecodeRevertData matches the selector against the contract errors, then Error(string)
func DecodeRevertData(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	for name, e := range ParsedABI.Errors {
		if !bytes.Equal(e.ID[:4], data[:4]) {
			continue
		}
		args, err := e.Inputs.Unpack(data[4:])
		if err != nil {
			return name, true
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		return name + "(" + strings.Join(parts, ", ") + ")", true
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason, true
	}
	return "", false
}
