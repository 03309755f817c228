// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	assert.True(t, Handle{}.IsZero())
	h := BytesToHandle([]byte{1, 2})
	assert.False(t, h.IsZero())
	assert.Equal(t, byte(2), h[31])
	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000102", h.Hex())

	back, err := HexToHandle(h.Hex())
	require.NoError(t, err)
	assert.Equal(t, h, back)
	_, err = HexToHandle("0x0102")
	assert.Equal(t, ErrMalformedHandle, err)
	_, err = HexToHandle("zz")
	assert.Error(t, err)

	data, err := json.Marshal(struct{ H Handle }{h})
	require.NoError(t, err)
	var out struct{ H Handle }
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, h, out.H)
}

func TestCiphertext(t *testing.T) {
	h := BytesToHandle([]byte{0xaa})
	raw := EncodeCiphertext(CiphertextVersion, h, []byte("payload"))
	assert.Len(t, raw, CiphertextHeaderLen+7)
	assert.Equal(t, []byte{0, 0, 0, 1}, raw[:4])

	ct, err := ParseCiphertext(raw)
	require.NoError(t, err)
	assert.Equal(t, CiphertextVersion, ct.Version)
	assert.Equal(t, h, ct.Handle)
	assert.Equal(t, []byte("payload"), ct.Payload)
	assert.Equal(t, raw, ct.Raw)

	// header only is still well formed
	_, err = ParseCiphertext(raw[:CiphertextHeaderLen])
	assert.NoError(t, err)
	_, err = ParseCiphertext(raw[:CiphertextHeaderLen-1])
	assert.Equal(t, ErrMalformedCiphertext, err)
}
