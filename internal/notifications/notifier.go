package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRecordSubmitted Kind = "record_submitted"
	KindRecordApproved  Kind = "record_approved"
	KindRecordRejected  Kind = "record_rejected"
)

// AudienceAdmin addresses "the admin". There is no real multi-user push, so every
// notification reaches whoever is listening in the current session.
const AudienceAdmin = "admin"

func AudienceDriver(driverID string) string {
	return "driver:" + driverID
}

type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Audience  string    `json:"audience"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func newNotification(kind Kind, audience, title, body string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Audience:  audience,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func ParsePermission(s string) Permission {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// PermissionRequester is implemented by sinks that can tell whether they are able to deliver.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) Permission
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Notifier

func (f Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RequestPermission grants as soon as one sink grants. Sinks that cannot be asked count as granted.
func (f Fanout) RequestPermission(ctx context.Context) Permission {
	result := PermissionDenied
	for _, sink := range f {
		pr, ok := sink.(PermissionRequester)
		if !ok {
			return PermissionGranted
		}
		if p := pr.RequestPermission(ctx); p == PermissionGranted {
			return PermissionGranted
		} else if p == PermissionDefault {
			result = PermissionDefault
		}
	}
	return result
}
