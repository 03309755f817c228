// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dapp = common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013")

func defaultInco() *types.Inco {
	return &types.Inco{Version: 1, HandleType: types.HandleTypeEuint256, MaxAttempts: 5, BaseDelay: 1000, Multiplier: 1.5}
}

type fakeTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (f *fakeTimer) Start(d time.Duration) {
	f.delays = append(f.delays, d)
	f.c <- time.Now()
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time {
	return f.c
}

// flakyService fails the first failures calls, then delegates
type flakyService struct {
	next     DecryptService
	failures int
	calls    int
}

func (f *flakyService) AttestedDecrypt(ctx context.Context, req *DecryptRequest) ([]*DecryptResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("gateway unavailable")
	}
	return f.next.AttestedDecrypt(ctx, req)
}

type env struct {
	gw     *LocalGateway
	client *Client
	player *KeyCredential
}

func newEnv(t *testing.T, version uint32) *env {
	attester, err := crypto.GenerateKey()
	require.Nil(t, err)
	playerKey, err := crypto.GenerateKey()
	require.Nil(t, err)
	gw := NewLocalGateway(attester, version)
	srv, err := NewServer(gw)
	require.Nil(t, err)
	t.Cleanup(srv.Stop)
	c := NewClient(rpc.DialInProc(srv))
	t.Cleanup(c.Close)
	return &env{gw: gw, client: c, player: NewKeyCredential(playerKey)}
}

func (e *env) seal(t *testing.T, values ...uint64) []types.Handle {
	enc := NewEncrypter(e.client, dapp, defaultInco())
	handles := make([]types.Handle, len(values))
	for i, v := range values {
		ct, err := enc.Encrypt(context.Background(), v, e.player.Address())
		require.Nil(t, err)
		handles[i] = ct.Handle
	}
	return handles
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	e := newEnv(t, 1)
	enc := NewEncrypter(e.client, dapp, defaultInco())
	ct, err := enc.Encrypt(context.Background(), 7, e.player.Address())
	require.Nil(t, err)
	assert.Equal(t, uint32(1), ct.Version)
	assert.False(t, ct.Handle.IsZero())
	assert.Equal(t, ct.Handle[:], ct.Raw[types.CiphertextVersionLen:types.CiphertextHeaderLen])

	dec := NewDecrypter(e.client, e.player, defaultInco())
	vals, err := dec.DecryptBatch(context.Background(), []types.Handle{ct.Handle})
	require.Nil(t, err)
	require.Equal(t, 1, len(vals))
	assert.Equal(t, int64(7), vals[0].Value.Int64())
	require.Equal(t, 1, len(vals[0].Signatures))
	assert.True(t, VerifyAttestation(ct.Handle, vals[0].Value, vals[0].Signatures[0], e.gw.Attester()))
	assert.False(t, VerifyAttestation(ct.Handle, big.NewInt(8), vals[0].Signatures[0], e.gw.Attester()))
}

func TestDecryptBatchKeepsOrder(t *testing.T) {
	e := newEnv(t, 1)
	handles := e.seal(t, 3, 1, 10, 3)
	dec := NewDecrypter(e.client, e.player, defaultInco())
	vals, err := dec.DecryptBatch(context.Background(), handles)
	require.Nil(t, err)
	got := make([]int64, len(vals))
	for i, v := range vals {
		got[i] = v.Value.Int64()
	}
	assert.Equal(t, []int64{3, 1, 10, 3}, got)
}

func TestDecryptAccessControl(t *testing.T) {
	e := newEnv(t, 1)
	handles := e.seal(t, 4)
	otherKey, err := crypto.GenerateKey()
	require.Nil(t, err)
	other := NewKeyCredential(otherKey)

	dec := NewDecrypter(e.client, other, &types.Inco{MaxAttempts: 1})
	_, err = dec.DecryptBatch(context.Background(), handles)
	assert.True(t, errors.Is(err, types.ErrDecryptExhausted))

	e.gw.AllowReader(dapp, other.Address())
	vals, err := dec.DecryptBatch(context.Background(), handles)
	require.Nil(t, err)
	assert.Equal(t, int64(4), vals[0].Value.Int64())
}

func TestEncryptValidation(t *testing.T) {
	e := newEnv(t, 1)
	enc := NewEncrypter(e.client, dapp, defaultInco())
	for _, v := range []uint64{0, 11, 100} {
		_, err := enc.Encrypt(context.Background(), v, e.player.Address())
		assert.True(t, errors.Is(err, types.ErrNumberOutOfRange), "value %d", v)
		assert.Equal(t, types.KindValidation, types.KindOf(err))
	}
	_, err := enc.Encrypt(context.Background(), 5, common.Address{})
	assert.True(t, errors.Is(err, types.ErrZeroAddress))

	noDapp := NewEncrypter(e.client, common.Address{}, defaultInco())
	_, err = noDapp.Encrypt(context.Background(), 5, e.player.Address())
	assert.True(t, errors.Is(err, types.ErrZeroAddress))
}

func TestEncryptVersionMismatch(t *testing.T) {
	e := newEnv(t, 2)
	enc := NewEncrypter(e.client, dapp, defaultInco())
	_, err := enc.Encrypt(context.Background(), 5, e.player.Address())
	assert.True(t, errors.Is(err, types.ErrCiphertextVersion))
	assert.Equal(t, types.KindIntegrity, types.KindOf(err))
}

type staticEncrypt []byte

func (s staticEncrypt) Encrypt(ctx context.Context, value *big.Int, account, dapp common.Address, handleType uint8) ([]byte, error) {
	return s, nil
}

func TestEncryptMalformed(t *testing.T) {
	player := common.HexToAddress("0x01")
	enc := NewEncrypter(staticEncrypt(make([]byte, 20)), dapp, defaultInco())
	_, err := enc.Encrypt(context.Background(), 5, player)
	assert.True(t, errors.Is(err, types.ErrMalformedCiphertext))

	enc = NewEncrypter(staticEncrypt(types.EncodeCiphertext(1, types.Handle{}, []byte{1})), dapp, defaultInco())
	_, err = enc.Encrypt(context.Background(), 5, player)
	assert.True(t, errors.Is(err, types.ErrZeroHandle))
}

func TestDecryptRetrySchedule(t *testing.T) {
	e := newEnv(t, 1)
	handles := e.seal(t, 2, 9)
	flaky := &flakyService{next: e.client, failures: 4}
	timer := newFakeTimer()
	dec := NewDecrypter(flaky, e.player, defaultInco())
	dec.SetTimer(timer)

	vals, err := dec.DecryptBatch(context.Background(), handles)
	require.Nil(t, err)
	assert.Equal(t, 5, flaky.calls)
	assert.Equal(t, []time.Duration{
		1000 * time.Millisecond,
		1500 * time.Millisecond,
		2250 * time.Millisecond,
		3375 * time.Millisecond,
	}, timer.delays)
	assert.Equal(t, int64(2), vals[0].Value.Int64())
	assert.Equal(t, int64(9), vals[1].Value.Int64())
}

func TestDecryptExhausted(t *testing.T) {
	e := newEnv(t, 1)
	handles := e.seal(t, 2)
	flaky := &flakyService{next: e.client, failures: 100}
	timer := newFakeTimer()
	dec := NewDecrypter(flaky, e.player, defaultInco())
	dec.SetTimer(timer)

	vals, err := dec.DecryptBatch(context.Background(), handles)
	assert.Nil(t, vals)
	assert.True(t, errors.Is(err, types.ErrDecryptExhausted))
	assert.Equal(t, types.KindTransient, types.KindOf(err))
	assert.Equal(t, 5, flaky.calls)
	assert.Equal(t, 4, len(timer.delays))
}

// cancelService fails every call and cancels the caller on call cancelAt
type cancelService struct {
	cancel   context.CancelFunc
	cancelAt int
	calls    int
}

func (c *cancelService) AttestedDecrypt(ctx context.Context, req *DecryptRequest) ([]*DecryptResult, error) {
	c.calls++
	if c.calls == c.cancelAt {
		c.cancel()
	}
	return nil, errors.New("gateway unavailable")
}

func TestDecryptAbandoned(t *testing.T) {
	e := newEnv(t, 1)
	handles := e.seal(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := &cancelService{cancel: cancel, cancelAt: 2}
	timer := newFakeTimer()
	dec := NewDecrypter(svc, e.player, defaultInco())
	dec.SetTimer(timer)

	vals, err := dec.DecryptBatch(ctx, handles)
	assert.Nil(t, vals)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, types.ErrDecryptExhausted))
	assert.Equal(t, 2, svc.calls)
	assert.Equal(t, 1, len(timer.delays))
}

type shortService struct {
	calls int
	res   []*DecryptResult
}

func (s *shortService) AttestedDecrypt(ctx context.Context, req *DecryptRequest) ([]*DecryptResult, error) {
	s.calls++
	return s.res, nil
}

func TestDecryptIntegrityNotRetried(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	cred := NewKeyCredential(key)
	handles := []types.Handle{{1}, {2}}

	svc := &shortService{res: []*DecryptResult{{Handle: handles[0]}}}
	dec := NewDecrypter(svc, cred, defaultInco())
	dec.SetTimer(newFakeTimer())
	vals, err := dec.DecryptBatch(context.Background(), handles)
	assert.Nil(t, vals)
	assert.True(t, errors.Is(err, types.ErrBatchLength))
	assert.Equal(t, types.KindIntegrity, types.KindOf(err))
	assert.Equal(t, 1, svc.calls)

	svc = &shortService{res: []*DecryptResult{{Handle: handles[0]}, {Handle: handles[1]}}}
	dec = NewDecrypter(svc, cred, defaultInco())
	_, err = dec.DecryptBatch(context.Background(), handles)
	assert.True(t, errors.Is(err, types.ErrMissingValue))
	assert.Equal(t, 1, svc.calls)
}

func TestDecryptRejectsZeroHandle(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	svc := &shortService{}
	dec := NewDecrypter(svc, NewKeyCredential(key), defaultInco())

	_, err = dec.DecryptBatch(context.Background(), []types.Handle{{1}, {}})
	assert.True(t, errors.Is(err, types.ErrZeroHandle))
	assert.Equal(t, "handle 1", types.IDOf(err))

	_, err = dec.DecryptBatch(context.Background(), nil)
	assert.True(t, errors.Is(err, types.ErrEmptyBatch))
	assert.Equal(t, 0, svc.calls)
}

func TestDecryptDigest(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	cred := NewKeyCredential(key)
	handles := []types.Handle{{1}, {2}}
	sig, err := cred.SignDecrypt(handles)
	require.Nil(t, err)
	pub, err := crypto.SigToPub(DecryptDigest(cred.Address(), handles), sig)
	require.Nil(t, err)
	assert.Equal(t, cred.Address(), crypto.PubkeyToAddress(*pub))
	assert.NotEqual(t, DecryptDigest(cred.Address(), handles), DecryptDigest(cred.Address(), handles[:1]))
}
