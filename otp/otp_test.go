// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/apperr"
	"github.com/danielhkuo/quickly-vote/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type delivered struct {
	voterID, phone, code string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []delivered
	err  error
}

func (s *recordingSink) Deliver(_ context.Context, voterID, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, delivered{voterID, phone, code})
	return s.err
}

func (s *recordingSink) last(t *testing.T) delivered {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.sent, "no code delivered")
	return s.sent[len(s.sent)-1]
}

type fakeRemote struct {
	startErr error
	checkErr error
	approve  string
	starts   []string // channels requested
	checks   int
}

func (r *fakeRemote) Start(_ context.Context, phone, channel string) (string, error) {
	r.starts = append(r.starts, channel)
	if r.startErr != nil {
		return "", r.startErr
	}
	return "VE123", nil
}

func (r *fakeRemote) Check(_ context.Context, phone, code string) (bool, error) {
	r.checks++
	if r.checkErr != nil {
		return false, r.checkErr
	}
	return code == r.approve, nil
}

type memVoters struct {
	mu      sync.Mutex
	byID    map[string]models.Voter
	inserts int
	findErr error
}

func newMemVoters() *memVoters {
	return &memVoters{byID: make(map[string]models.Voter)}
}

func (m *memVoters) FindVoter(_ context.Context, voterID string) (models.Voter, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return models.Voter{}, false, m.findErr
	}
	v, ok := m.byID[voterID]
	return v, ok, nil
}

func (m *memVoters) InsertVoter(_ context.Context, v models.Voter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[v.VoterID]; ok {
		return false, nil
	}
	m.byID[v.VoterID] = v
	m.inserts++
	return true, nil
}

type harness struct {
	clock    *fakeClock
	ledger   *MemoryLedger
	sink     *recordingSink
	voters   *memVoters
	issuer   *Issuer
	verifier *Verifier
}

func newLocalHarness() *harness {
	h := &harness{
		clock:  newFakeClock(),
		ledger: NewMemoryLedger(),
		sink:   &recordingSink{},
		voters: newMemVoters(),
	}
	ch := LocalOnly{Sink: h.sink}
	h.issuer = NewIssuer(h.ledger, ch, WithClock(h.clock.Now))
	h.verifier = NewVerifier(h.ledger, ch, h.voters, WithClock(h.clock.Now))
	return h
}

func TestIssueAndVerifyWithinWindow(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	receipt, err := h.issuer.Issue(ctx, "v12345", "+1 415 555 2671")
	require.NoError(t, err)
	assert.Equal(t, ViaConsole, receipt.Via)
	assert.Equal(t, TTL, receipt.TTL)
	assert.Equal(t, "V12345", receipt.VoterID)

	sent := h.sink.last(t)
	assert.Equal(t, "V12345", sent.voterID)
	assert.Equal(t, "+14155552671", sent.phone)
	assert.Len(t, sent.code, 6)

	h.clock.Advance(29 * time.Second)
	require.NoError(t, h.verifier.Verify(ctx, "V12345", sent.code))

	assert.Equal(t, 1, h.voters.inserts)
	voter := h.voters.byID["V12345"]
	assert.Equal(t, "+14155552671", voter.Phone)
	assert.NotEmpty(t, voter.ID)

	// One-time use
	err = h.verifier.Verify(ctx, "V12345", sent.code)
	assert.ErrorIs(t, err, apperr.ErrNoOTP)
	assert.Equal(t, 1, h.voters.inserts)
}

func TestVerifyExactlyAtExpiryStillValid(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)

	h.clock.Advance(TTL)
	assert.NoError(t, h.verifier.Verify(ctx, "V12345", h.sink.last(t).code))
}

func TestVerifyAfterExpiry(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)
	code := h.sink.last(t).code

	h.clock.Advance(31 * time.Second)
	err = h.verifier.Verify(ctx, "V12345", code)
	assert.ErrorIs(t, err, apperr.ErrExpired)

	// Expired entries are deleted, not kept around
	_, ok := h.ledger.Get("V12345")
	assert.False(t, ok)

	err = h.verifier.Verify(ctx, "V12345", code)
	assert.ErrorIs(t, err, apperr.ErrNoOTP)
	assert.Zero(t, h.voters.inserts)
}

func TestWrongCodeAllowsRetry(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	h.issuer.opts.newCode = func() (string, error) { return "424242", nil }
	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)

	err = h.verifier.Verify(ctx, "V12345", "000000")
	assert.ErrorIs(t, err, apperr.ErrInvalidCode)

	_, ok := h.ledger.Get("V12345")
	assert.True(t, ok, "failed attempt must not consume the entry")

	assert.NoError(t, h.verifier.Verify(ctx, "V12345", "424242"))
	assert.Equal(t, 1, h.voters.inserts)
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	codes := []string{"111111", "222222"}
	h.issuer.opts.newCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)
	_, err = h.issuer.Issue(ctx, "V12345", "+14155550000")
	require.NoError(t, err)

	err = h.verifier.Verify(ctx, "V12345", "111111")
	assert.ErrorIs(t, err, apperr.ErrInvalidCode)

	require.NoError(t, h.verifier.Verify(ctx, "V12345", "222222"))
	assert.Equal(t, "+14155550000", h.voters.byID["V12345"].Phone)
}

func TestReverifyExistingVoterIsNoop(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
		require.NoError(t, err)
		require.NoError(t, h.verifier.Verify(ctx, "V12345", h.sink.last(t).code))
	}

	assert.Equal(t, 1, h.voters.inserts)
	assert.Len(t, h.voters.byID, 1)
}

func TestIssueRejectsInvalidInput(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	_, err := h.issuer.Issue(ctx, "12345", "+14155552671")
	assert.ErrorIs(t, err, apperr.ErrInvalidVoterID)

	_, err = h.issuer.Issue(ctx, "V12345", "555-2671")
	assert.ErrorIs(t, err, apperr.ErrInvalidPhone)

	assert.Zero(t, h.ledger.Len())
	assert.Empty(t, h.sink.sent)
}

func TestIssueSucceedsWhenDeliveryFails(t *testing.T) {
	h := newLocalHarness()
	h.sink.err = errors.New("sink down")

	receipt, err := h.issuer.Issue(context.Background(), "V12345", "+14155552671")
	require.NoError(t, err)
	assert.Equal(t, ViaConsole, receipt.Via)

	_, ok := h.ledger.Get("V12345")
	assert.True(t, ok)
}

func TestVerifyRejectsInvalidVoterID(t *testing.T) {
	h := newLocalHarness()
	err := h.verifier.Verify(context.Background(), "bad", "123456")
	assert.ErrorIs(t, err, apperr.ErrInvalidVoterID)
}

func TestVerifyStoreFailureKeepsEntry(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)

	h.voters.findErr = errors.New("db down")
	err = h.verifier.Verify(ctx, "V12345", h.sink.last(t).code)
	assert.ErrorIs(t, err, apperr.ErrDB)

	_, ok := h.ledger.Get("V12345")
	assert.True(t, ok)
}

func TestRemoteIssueAndVerify(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger()
	remote := &fakeRemote{approve: "987654"}
	fallback := &recordingSink{}
	voters := newMemVoters()
	ch := RemoteVerify{Client: remote, Fallback: fallback}

	issuer := NewIssuer(ledger, ch, WithClock(clock.Now))
	verifier := NewVerifier(ledger, ch, voters, WithClock(clock.Now))
	ctx := context.Background()

	receipt, err := issuer.Issue(ctx, "V12345", "whatsapp:+14155552671")
	require.NoError(t, err)
	assert.Equal(t, ViaTwilioVerify, receipt.Via)
	assert.Equal(t, []string{"whatsapp"}, remote.starts)
	assert.Empty(t, fallback.sent)

	entry, ok := ledger.Get("V12345")
	require.True(t, ok)
	assert.Equal(t, ModeRemote, entry.Mode)
	assert.Empty(t, entry.Code, "remote entries never hold a code")

	err = verifier.Verify(ctx, "V12345", "111111")
	assert.ErrorIs(t, err, apperr.ErrInvalidCode)

	require.NoError(t, verifier.Verify(ctx, "V12345", "987654"))
	assert.Equal(t, 2, remote.checks)
	assert.Equal(t, "whatsapp:+14155552671", voters.byID["V12345"].Phone)

	_, ok = ledger.Get("V12345")
	assert.False(t, ok)
}

func TestRemoteCheckTransportFailure(t *testing.T) {
	ledger := NewMemoryLedger()
	remote := &fakeRemote{checkErr: errors.New("timeout")}
	ch := RemoteVerify{Client: remote, Fallback: &recordingSink{}}

	issuer := NewIssuer(ledger, ch)
	verifier := NewVerifier(ledger, ch, newMemVoters())
	ctx := context.Background()

	_, err := issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)
	assert.Equal(t, []string{"sms"}, remote.starts)

	err = verifier.Verify(ctx, "V12345", "123456")
	assert.ErrorIs(t, err, apperr.ErrVerifyError)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "timeout", ae.Detail)
}

func TestRemoteStartFailureFallsBackToLocal(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger()
	remote := &fakeRemote{startErr: errors.New("twilio 503")}
	fallback := &recordingSink{}
	voters := newMemVoters()
	ch := RemoteVerify{Client: remote, Fallback: fallback}

	issuer := NewIssuer(ledger, ch, WithClock(clock.Now))
	verifier := NewVerifier(ledger, ch, voters, WithClock(clock.Now))
	ctx := context.Background()

	receipt, err := issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)
	assert.Equal(t, ViaConsole, receipt.Via)

	entry, ok := ledger.Get("V12345")
	require.True(t, ok)
	assert.Equal(t, ModeLocal, entry.Mode)

	// Local entry is checked locally; the remote is never consulted
	require.NoError(t, verifier.Verify(ctx, "V12345", fallback.last(t).code))
	assert.Zero(t, remote.checks)
	assert.Equal(t, 1, voters.inserts)
}

func TestRemoteStartFailureWithCodeErrorLeavesNoEntry(t *testing.T) {
	clock := newFakeClock()
	ledger := NewMemoryLedger()
	remote := &fakeRemote{startErr: errors.New("twilio 503")}
	ch := RemoteVerify{Client: remote, Fallback: &recordingSink{}}

	issuer := NewIssuer(ledger, ch, WithClock(clock.Now), WithCodeGenerator(func() (string, error) {
		return "", errors.New("entropy exhausted")
	}))
	verifier := NewVerifier(ledger, ch, newMemVoters(), WithClock(clock.Now))
	ctx := context.Background()

	_, err := issuer.Issue(ctx, "V12345", "+14155552671")
	require.Error(t, err)

	_, ok := ledger.Get("V12345")
	assert.False(t, ok, "remote entry must be removed when no code was issued")

	assert.ErrorIs(t, verifier.Verify(ctx, "V12345", "123456"), apperr.ErrNoOTP)
	assert.Zero(t, remote.checks)
}

func TestConcurrentVerifyCreatesOneVoter(t *testing.T) {
	h := newLocalHarness()
	ctx := context.Background()

	_, err := h.issuer.Issue(ctx, "V12345", "+14155552671")
	require.NoError(t, err)
	code := h.sink.last(t).code

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.verifier.Verify(ctx, "V12345", code)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.voters.inserts)
	assert.Zero(t, h.ledger.Len())
}
