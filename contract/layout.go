// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// SlotSize abi word size
const SlotSize = 32

// FieldKind abi type of one record field
type FieldKind int

// field kinds used by the game record
const (
	KindUint256 FieldKind = iota
	KindUint8
	KindAddress
)

// Field position of one value inside the abi encoded record.
// Offset and Width address the significant bytes, the rest of the slot is padding.
type Field struct {
	Name   string
	Slot   int
	Offset int
	Width  int
	Kind   FieldKind
}

func newField(name string, slot int, kind FieldKind) Field {
	width := SlotSize
	switch kind {
	case KindUint8:
		width = 1
	case KindAddress:
		width = 20
	}
	return Field{
		Name:   name,
		Slot:   slot,
		Offset: slot*SlotSize + SlotSize - width,
		Width:  width,
		Kind:   kind,
	}
}

// game record field names, identical to the abi tuple component names
const (
	FieldGameID        = "gameId"
	FieldCreator       = "creator"
	FieldStatus        = "status"
	FieldEntryFee      = "entryFee"
	FieldDeadline      = "deadline"
	FieldPlayerCount   = "playerCount"
	FieldWinner        = "winner"
	FieldWinningNumber = "winningNumber"
	FieldPrizePool     = "prizePool"
)

// GameLayout the getGame return tuple. Both the structured and the raw decoder read
// fields through this table.
var GameLayout = []Field{
	newField(FieldGameID, 0, KindUint256),
	newField(FieldCreator, 1, KindAddress),
	newField(FieldStatus, 2, KindUint8),
	newField(FieldEntryFee, 3, KindUint256),
	newField(FieldDeadline, 4, KindUint256),
	newField(FieldPlayerCount, 5, KindUint256),
	newField(FieldWinner, 6, KindAddress),
	newField(FieldWinningNumber, 7, KindUint256),
	newField(FieldPrizePool, 8, KindUint256),
}

// GameRecordSize byte length of one encoded game record
var GameRecordSize = len(GameLayout) * SlotSize

func (k FieldKind) matches(t *abi.Type) bool {
	switch k {
	case KindUint256:
		return t.T == abi.UintTy && t.Size == 256
	case KindUint8:
		return t.T == abi.UintTy && t.Size == 8
	case KindAddress:
		return t.T == abi.AddressTy
	}
	return false
}

// checkLayout the abi tuple and GameLayout must describe the same record
func checkLayout(parsed abi.ABI) error {
	method, ok := parsed.Methods[MethodGetGame]
	if !ok {
		return fmt.Errorf("abi has no %s method", MethodGetGame)
	}
	if len(method.Outputs) != 1 || method.Outputs[0].Type.T != abi.TupleTy {
		return fmt.Errorf("%s must return one tuple", MethodGetGame)
	}
	tuple := method.Outputs[0].Type
	if len(tuple.TupleElems) != len(GameLayout) {
		return fmt.Errorf("%s tuple has %d fields, layout has %d", MethodGetGame, len(tuple.TupleElems), len(GameLayout))
	}
	for i, f := range GameLayout {
		if f.Slot != i {
			return fmt.Errorf("layout field %s at slot %d, want %d", f.Name, f.Slot, i)
		}
		if tuple.TupleRawNames[i] != f.Name {
			return fmt.Errorf("tuple field %d is %s, layout says %s", i, tuple.TupleRawNames[i], f.Name)
		}
		if !f.Kind.matches(tuple.TupleElems[i]) {
			return fmt.Errorf("tuple field %s has type %s", f.Name, tuple.TupleElems[i].String())
		}
	}
	return nil
}
