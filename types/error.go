// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"fmt"
)

// validation errors
var (
	ErrInvalidParam        = errors.New("ErrInvalidParam")
	ErrNumberOutOfRange    = errors.New("ErrNumberOutOfRange")
	ErrZeroAddress         = errors.New("ErrZeroAddress")
	ErrZeroHandle          = errors.New("ErrZeroHandle")
	ErrMalformedHandle     = errors.New("ErrMalformedHandle")
	ErrMalformedCiphertext = errors.New("ErrMalformedCiphertext")
	ErrCiphertextVersion   = errors.New("ErrCiphertextVersion")
	ErrEmptyBatch          = errors.New("ErrEmptyBatch")
	ErrNoAccount           = errors.New("ErrNoAccount")
)

// lifecycle guard errors
var (
	ErrGameNotOpen         = errors.New("ErrGameNotOpen")
	ErrGameNotCalculating  = errors.New("ErrGameNotCalculating")
	ErrDeadlinePassed      = errors.New("ErrDeadlinePassed")
	ErrDeadlineNotReached  = errors.New("ErrDeadlineNotReached")
	ErrGameFull            = errors.New("ErrGameFull")
	ErrAlreadyJoined       = errors.New("ErrAlreadyJoined")
	ErrNoPlayers           = errors.New("ErrNoPlayers")
	ErrNotCreator          = errors.New("ErrNotCreator")
	ErrRefundUnavailable   = errors.New("ErrRefundUnavailable")
	ErrInvalidTransition   = errors.New("ErrInvalidTransition")
	ErrMissingDecryption   = errors.New("ErrMissingDecryption")
	ErrResolutionInFlight  = errors.New("ErrResolutionInFlight")
	ErrGameNotFound        = errors.New("ErrGameNotFound")
	ErrUnknownStatus       = errors.New("ErrUnknownStatus")
	ErrPrizePoolMismatch   = errors.New("ErrPrizePoolMismatch")
	ErrDurationOutOfBounds = errors.New("ErrDurationOutOfBounds")
)

// service, integrity and chain errors
var (
	ErrDecryptExhausted = errors.New("ErrDecryptExhausted")
	ErrBatchLength      = errors.New("ErrBatchLength")
	ErrBatchOrder       = errors.New("ErrBatchOrder")
	ErrMissingValue     = errors.New("ErrMissingValue")
	ErrMalformedRecord  = errors.New("ErrMalformedRecord")
	ErrValueOverflow    = errors.New("ErrValueOverflow")
	ErrTxNotSubmitted   = errors.New("ErrTxNotSubmitted")
	ErrTxReverted       = errors.New("ErrTxReverted")
	ErrTxPending        = errors.New("ErrTxPending")
)

// queue errors
var (
	ErrTimeout       = errors.New("ErrTimeout")
	ErrIsClosed      = errors.New("ErrIsClosed")
	ErrHandlerExists = errors.New("ErrHandlerExists")
)

// ErrorKind classifies failures so callers can decide whether to retry
type ErrorKind int

// error kinds
const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindTransient
	KindIntegrity
	KindNotSubmitted
	KindReverted
	KindPending
)

var kindNames = map[ErrorKind]string{
	KindUnknown:      "unknown",
	KindValidation:   "validation",
	KindTransient:    "transient",
	KindIntegrity:    "integrity",
	KindNotSubmitted: "not-submitted",
	KindReverted:     "reverted",
	KindPending:      "pending",
}

func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Error carries the kind and the offending identifier (game id, player, handle or tx hash)
type Error struct {
	Kind ErrorKind
	ID   string
	Err  error
}

// NewError wraps err with kind and id
func NewError(kind ErrorKind, id string, err error) error {
	return &Error{Kind: kind, ID: id, Err: err}
}

func (e *Error) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

// Unwrap for errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause for github.com/pkg/errors
func (e *Error) Cause() error {
	return e.Err
}

// KindOf returns the kind of the outermost *Error in the chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IDOf returns the offending identifier of the outermost *Error in the chain
func IDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.ID
	}
	return ""
}

// Retryable the operation may be retried from scratch by the caller
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindNotSubmitted, KindReverted:
		return true
	}
	return false
}
