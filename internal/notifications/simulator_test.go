package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type captureNotifier struct {
	mu        sync.Mutex
	sent      []Notification
	err       error
	perm      Permission
	permCalls int
}

func (c *captureNotifier) Send(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) RequestPermission(context.Context) Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permCalls++
	return c.perm
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *fakeRecorder) ObserveNotification(kind, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, kind+"/"+result)
}

// immediate runs scheduled funcs synchronously and remembers the delay.
type immediate struct {
	delays []time.Duration
}

func (i *immediate) schedule(d time.Duration, f func()) {
	i.delays = append(i.delays, d)
	f()
}

func newSim(n Notifier, perm Permission, approve bool, sched *immediate) *Simulator {
	return NewSimulator(n, SimulatorConfig{
		ReviewDelay: 8 * time.Second,
		Permission:  perm,
		Decide:      func() bool { return approve },
		Schedule:    sched.schedule,
	}, quietLogger())
}

func TestRecordSubmitted_NotifiesAdmin(t *testing.T) {
	n := &captureNotifier{}
	s := newSim(n, PermissionGranted, true, &immediate{})

	s.RecordSubmitted(context.Background(), "João Silva", "ABC1D23")

	require.Len(t, n.sent, 1)
	got := n.sent[0]
	assert.Equal(t, KindRecordSubmitted, got.Kind)
	assert.Equal(t, AudienceAdmin, got.Audience)
	assert.Equal(t, "Novo Registro Recebido", got.Title)
	assert.Equal(t, "João Silva enviou um novo registro para ABC1D23.", got.Body)
}

func TestScheduleReview_Approved(t *testing.T) {
	n := &captureNotifier{}
	sched := &immediate{}
	s := newSim(n, PermissionGranted, true, sched)

	s.ScheduleReview("1", "ABC1D23")

	assert.Equal(t, []time.Duration{8 * time.Second}, sched.delays)
	require.Len(t, n.sent, 1)
	assert.Equal(t, KindRecordApproved, n.sent[0].Kind)
	assert.Equal(t, "Registro Aprovado", n.sent[0].Title)
	assert.Equal(t, "Seu registro de abastecimento para ABC1D23 foi aprovado.", n.sent[0].Body)
	assert.Equal(t, "driver:1", n.sent[0].Audience)
}

func TestScheduleReview_Rejected(t *testing.T) {
	n := &captureNotifier{}
	s := newSim(n, PermissionGranted, false, &immediate{})

	s.ScheduleReview("1", "ABC1D23")

	require.Len(t, n.sent, 1)
	assert.Equal(t, KindRecordRejected, n.sent[0].Kind)
	assert.Equal(t, "Registro Rejeitado", n.sent[0].Title)
	assert.Equal(t, "Seu registro para ABC1D23 foi rejeitado. Verifique os dados.", n.sent[0].Body)
}

func TestSend_SkippedWithoutPermission(t *testing.T) {
	for _, perm := range []Permission{PermissionDenied, PermissionDefault} {
		n := &captureNotifier{}
		rec := &fakeRecorder{}
		s := newSim(n, perm, true, &immediate{}).WithRecorder(rec)

		s.RecordSubmitted(context.Background(), "x", "y")
		s.ScheduleReview("1", "y")

		assert.Empty(t, n.sent, perm)
		assert.Equal(t, []string{"record_submitted/skipped", "record_approved/skipped"}, rec.seen)
	}
}

func TestSend_FailureIsSwallowed(t *testing.T) {
	n := &captureNotifier{err: errors.New("boom")}
	rec := &fakeRecorder{}
	s := newSim(n, PermissionGranted, true, &immediate{}).WithRecorder(rec)

	assert.NotPanics(t, func() { s.RecordSubmitted(context.Background(), "x", "y") })
	assert.Equal(t, []string{"record_submitted/error"}, rec.seen)
}

func TestInit_RequestsOnceWhenUndecided(t *testing.T) {
	n := &captureNotifier{perm: PermissionGranted}
	s := newSim(n, PermissionDefault, true, &immediate{})

	assert.Equal(t, PermissionGranted, s.Init(context.Background()))
	assert.Equal(t, PermissionGranted, s.Init(context.Background()))
	assert.Equal(t, 1, n.permCalls)
}

func TestInit_DeniedStaysDenied(t *testing.T) {
	n := &captureNotifier{perm: PermissionDenied}
	s := newSim(n, PermissionDefault, true, &immediate{})

	assert.Equal(t, PermissionDenied, s.Init(context.Background()))
	n.perm = PermissionGranted
	assert.Equal(t, PermissionDenied, s.Init(context.Background()), "no retries")
	assert.Equal(t, 1, n.permCalls)
}

func TestInit_DecidedPermissionIsNotRequested(t *testing.T) {
	n := &captureNotifier{perm: PermissionGranted}
	s := newSim(n, PermissionDenied, true, &immediate{})

	assert.Equal(t, PermissionDenied, s.Init(context.Background()))
	assert.Equal(t, 0, n.permCalls)
}

func TestRandomDecider_Extremes(t *testing.T) {
	always := RandomDecider(1)
	never := RandomDecider(0)

	for i := 0; i < 100; i++ {
		assert.True(t, always())
		assert.False(t, never())
	}
}

func TestScheduleReview_RealTimerFires(t *testing.T) {
	n := &captureNotifier{}
	s := NewSimulator(n, SimulatorConfig{
		ReviewDelay: 10 * time.Millisecond,
		Permission:  PermissionGranted,
		Decide:      func() bool { return true },
	}, quietLogger())

	s.ScheduleReview("2", "XYZ9K88")

	assert.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.sent) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestParsePermission(t *testing.T) {
	assert.Equal(t, PermissionGranted, ParsePermission(" Granted "))
	assert.Equal(t, PermissionDenied, ParsePermission("denied"))
	assert.Equal(t, PermissionDefault, ParsePermission("whatever"))
}
