// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"fmt"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// EtherDecimals wei per ether exponent
const EtherDecimals = 18

// FormatEther wei to an ether string with fixed places
func FormatEther(wei *big.Int, places int32) string {
	if wei == nil {
		return decimal.Zero.StringFixed(places)
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).StringFixed(places)
}

// ParseEther ether string to wei, rejects negative amounts and sub-wei precision
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse ether amount %q", s)
	}
	if d.Sign() < 0 {
		return nil, errors.Errorf("negative ether amount %q", s)
	}
	wei := d.Shift(EtherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, errors.Errorf("ether amount %q below one wei", s)
	}
	return wei.BigInt(), nil
}

// ShortenAddress 0x12...5678 style
func ShortenAddress(addr ethcommon.Address, startChars, endChars int) string {
	s := addr.Hex()
	if startChars+endChars+2 >= len(s) {
		return s
	}
	return s[:startChars+2] + "..." + s[len(s)-endChars:]
}

// MaskAddress minimal form for public boards: 0x12••••ab
func MaskAddress(addr ethcommon.Address) string {
	s := addr.Hex()
	return s[:4] + "••••" + s[len(s)-2:]
}

// FormatRemaining 1h 5m / 5m 3s / 3s / Expired
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
