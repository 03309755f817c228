// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"math/big"
	"reflect"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// fieldReader yields *big.Int for integer fields and common.Address for address fields
type fieldReader func(f Field) (interface{}, error)

// DecodeGame structured decode of a getGame return value
func DecodeGame(output []byte) (*types.Game, error) {
	out, err := ParsedABI.Unpack(MethodGetGame, output)
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedRecord, err.Error())
	}
	if len(out) != 1 {
		return nil, errors.Wrapf(types.ErrMalformedRecord, "getGame returned %d values", len(out))
	}
	return gameFromTuple(out[0])
}

// DecodeGameRaw slices the abi encoded record by GameLayout without the abi decoder
func DecodeGameRaw(output []byte) (*types.Game, error) {
	if len(output) < GameRecordSize {
		return nil, errors.Wrapf(types.ErrMalformedRecord, "record is %d bytes, want %d", len(output), GameRecordSize)
	}
	return assembleGame(func(f Field) (interface{}, error) {
		// same padding rules as the abi decoder: a uint8 slot must be zero above the
		// low byte, an address keeps its last 20 bytes whatever the padding holds
		if f.Kind == KindUint8 {
			for _, p := range output[f.Slot*SlotSize : f.Offset] {
				if p != 0 {
					return nil, errors.Wrapf(types.ErrMalformedRecord, "field %s has non-zero padding", f.Name)
				}
			}
		}
		b := output[f.Offset : f.Offset+f.Width]
		switch f.Kind {
		case KindAddress:
			return common.BytesToAddress(b), nil
		default:
			return new(big.Int).SetBytes(b), nil
		}
	})
}

// DecodeGameHex raw decode of an eth_call hex result
func DecodeGameHex(result string) (*types.Game, error) {
	output, err := hexutil.Decode(result)
	if err != nil {
		return nil, errors.Wrap(types.ErrMalformedRecord, err.Error())
	}
	return DecodeGameRaw(output)
}

// gameFromTuple reads the anonymous struct built by the abi decoder
func gameFromTuple(tuple interface{}) (*types.Game, error) {
	rv := reflect.ValueOf(tuple)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.NumField() != len(GameLayout) {
		return nil, errors.Wrapf(types.ErrMalformedRecord, "unexpected tuple %T", tuple)
	}
	rt := rv.Type()
	return assembleGame(func(f Field) (interface{}, error) {
		if tag := rt.Field(f.Slot).Tag.Get("json"); tag != f.Name {
			return nil, errors.Wrapf(types.ErrMalformedRecord, "tuple field %d is %q, want %q", f.Slot, tag, f.Name)
		}
		switch v := rv.Field(f.Slot).Interface().(type) {
		case *big.Int:
			return v, nil
		case uint8:
			return new(big.Int).SetUint64(uint64(v)), nil
		case common.Address:
			return v, nil
		default:
			return nil, errors.Wrapf(types.ErrMalformedRecord, "tuple field %s has type %T", f.Name, v)
		}
	})
}

func assembleGame(read fieldReader) (*types.Game, error) {
	g := &types.Game{}
	for _, f := range GameLayout {
		v, err := read(f)
		if err != nil {
			return nil, err
		}
		if f.Kind == KindAddress {
			addr, ok := v.(common.Address)
			if !ok {
				return nil, errors.Wrapf(types.ErrMalformedRecord, "field %s is not an address", f.Name)
			}
			switch f.Name {
			case FieldCreator:
				g.Creator = addr
			case FieldWinner:
				g.Winner = addr
			}
			continue
		}
		n, ok := v.(*big.Int)
		if !ok || n == nil {
			return nil, errors.Wrapf(types.ErrMalformedRecord, "field %s is not an integer", f.Name)
		}
		switch f.Name {
		case FieldEntryFee:
			g.EntryFee = new(big.Int).Set(n)
			continue
		case FieldPrizePool:
			g.PrizePool = new(big.Int).Set(n)
			continue
		}
		if !n.IsUint64() {
			return nil, errors.Wrapf(types.ErrValueOverflow, "field %s = %s", f.Name, n)
		}
		u := n.Uint64()
		switch f.Name {
		case FieldGameID:
			g.ID = u
		case FieldStatus:
			status, err := types.ParseStatus(u)
			if err != nil {
				return nil, errors.Wrapf(err, "status %d", u)
			}
			g.Status = status
		case FieldDeadline:
			g.Deadline = u
		case FieldPlayerCount:
			g.PlayerCount = u
		case FieldWinningNumber:
			g.WinningNumber = u
		}
	}
	return g, nil
}
