package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// Publisher delivers one snapshot. generatedAt is the cycle's reference time.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, generatedAt time.Time, snap types.Snapshot) error
}

// Multi publishes to every member in order.
type Multi struct {
	members []Publisher
}

// NewMulti returns a Multi over pubs.
func NewMulti(pubs ...Publisher) *Multi {
	return &Multi{members: pubs}
}

// Name implements Publisher.
func (m *Multi) Name() string { return "multi" }

// Len returns the number of member publishers.
func (m *Multi) Len() int { return len(m.members) }

// Publish attempts every member even if an earlier one fails, and returns
// the joined errors.
func (m *Multi) Publish(ctx context.Context, generatedAt time.Time, snap types.Snapshot) error {
	if len(m.members) == 0 {
		return errors.New("publish: no publishers configured")
	}
	var errs []error
	for _, p := range m.members {
		if err := p.Publish(ctx, generatedAt, snap); err != nil {
			slog.Error("publish: delivery failed", "publisher", p.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		slog.Info("publish: snapshot delivered", "publisher", p.Name(), "targets", len(snap))
	}
	return errors.Join(errs...)
}
