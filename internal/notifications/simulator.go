package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Decider draws the simulated review outcome; true means approved.
type Decider func() bool

// RandomDecider approves with probability approvalRate.
func RandomDecider(approvalRate float64) Decider {
	return func() bool {
		return rand.Float64() < approvalRate
	}
}

// Scheduler runs f once after d. The default is time.AfterFunc.
type Scheduler func(d time.Duration, f func())

func AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Recorder receives one observation per notification attempt.
type Recorder interface {
	ObserveNotification(kind, result string)
}

type SimulatorConfig struct {
	ReviewDelay time.Duration
	Permission  Permission
	SendTimeout time.Duration
	Decide      Decider
	Schedule    Scheduler
}

// Simulator fakes the review flow with fire-and-forget timers. It keeps no
// per-record state: a timer that fires after logout still notifies.
type Simulator struct {
	notifier Notifier
	cfg      SimulatorConfig
	log      *slog.Logger
	recorder Recorder

	mu         sync.RWMutex
	permission Permission
	requested  bool
}

func NewSimulator(notifier Notifier, cfg SimulatorConfig, log *slog.Logger) *Simulator {
	if cfg.ReviewDelay <= 0 {
		cfg.ReviewDelay = 8 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	if cfg.Decide == nil {
		cfg.Decide = RandomDecider(0.7)
	}
	if cfg.Schedule == nil {
		cfg.Schedule = AfterFunc
	}
	if cfg.Permission == "" {
		cfg.Permission = PermissionDefault
	}
	if log == nil {
		log = slog.Default()
	}

	return &Simulator{
		notifier:   notifier,
		cfg:        cfg,
		log:        log,
		permission: cfg.Permission,
	}
}

func (s *Simulator) WithRecorder(r Recorder) *Simulator {
	s.recorder = r
	return s
}

// Init asks the sink for permission once, and only when the permission is still
// undecided. A denial is final and silent.
func (s *Simulator) Init(ctx context.Context) Permission {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionDefault || s.requested {
		return s.permission
	}
	s.requested = true

	pr, ok := s.notifier.(PermissionRequester)
	if !ok {
		return s.permission
	}

	s.permission = pr.RequestPermission(ctx)
	s.log.Info("notification permission", "permission", s.permission)
	return s.permission
}

func (s *Simulator) Permission() Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// RecordSubmitted tells the admin a new record arrived.
func (s *Simulator) RecordSubmitted(ctx context.Context, driverName, plate string) {
	n := newNotification(
		KindRecordSubmitted,
		AudienceAdmin,
		"Novo Registro Recebido",
		fmt.Sprintf("%s enviou um novo registro para %s.", driverName, plate),
	)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SendTimeout)
	defer cancel()

	s.send(sendCtx, n)
}

// ScheduleReview fires the simulated approve/reject outcome after the review delay.
func (s *Simulator) ScheduleReview(driverID, plate string) {
	s.cfg.Schedule(s.cfg.ReviewDelay, func() {
		var n Notification
		if s.cfg.Decide() {
			n = newNotification(
				KindRecordApproved,
				AudienceDriver(driverID),
				"Registro Aprovado",
				fmt.Sprintf("Seu registro de abastecimento para %s foi aprovado.", plate),
			)
		} else {
			n = newNotification(
				KindRecordRejected,
				AudienceDriver(driverID),
				"Registro Rejeitado",
				fmt.Sprintf("Seu registro para %s foi rejeitado. Verifique os dados.", plate),
			)
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SendTimeout)
		defer cancel()

		s.send(ctx, n)
	})
}

func (s *Simulator) send(ctx context.Context, n Notification) {
	if s.Permission() != PermissionGranted {
		s.log.DebugContext(ctx, "notification skipped, permission not granted", "kind", n.Kind)
		s.observe(n.Kind, "skipped")
		return
	}

	if err := s.notifier.Send(ctx, n); err != nil {
		s.log.WarnContext(ctx, "notification failed", "kind", n.Kind, "err", err)
		s.observe(n.Kind, "error")
		return
	}
	s.observe(n.Kind, "sent")
}

func (s *Simulator) observe(kind Kind, result string) {
	if s.recorder != nil {
		s.recorder.ObserveNotification(string(kind), result)
	}
}
