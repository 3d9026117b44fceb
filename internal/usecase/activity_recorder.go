package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/model"
	"github.com/AlfredoFernandez98/NotionPay-sub000/internal/domain/ports/repository"
)

// Activity describes one audit entry to append.
type Activity struct {
	CustomerID string
	SessionID  *string
	Type       model.ActivityType
	Status     model.ActivityStatus // SUCCESS when empty
	Metadata   map[string]interface{}
}

// ActivityRecorder appends audit entries. Entries are never updated or removed.
type ActivityRecorder struct {
	logs repository.ActivityLogRepository
	log  *zerolog.Logger
	now  func() time.Time
}

func NewActivityRecorder(logs repository.ActivityLogRepository, logger *zerolog.Logger) *ActivityRecorder {
	l := logger.With().Str("component", "ActivityRecorder").Logger()
	return &ActivityRecorder{logs: logs, log: &l, now: time.Now}
}

// Record appends the entry using tx, so it commits or rolls back with the caller.
func (r *ActivityRecorder) Record(ctx context.Context, tx repository.Tx, a Activity) (*model.ActivityLog, error) {
	if a.CustomerID == "" || a.Type == "" {
		return nil, fmt.Errorf("%w: activity needs customer and type", domain.ErrInvalidArgument)
	}
	status := a.Status
	if status == "" {
		status = model.ActivityStatusSuccess
	}
	entry := &model.ActivityLog{
		ID:         uuid.NewString(),
		CustomerID: a.CustomerID,
		SessionID:  a.SessionID,
		Type:       a.Type,
		Status:     status,
		Timestamp:  r.now(),
		Metadata:   a.Metadata,
	}
	if err := r.logs.Append(ctx, tx, entry); err != nil {
		return nil, err
	}
	r.log.Debug().Str("customer_id", a.CustomerID).Str("type", string(a.Type)).Msg("activity recorded")
	return entry, nil
}

// ListByCustomer returns the newest entries first. limit <= 0 means 50.
func (r *ActivityRecorder) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.logs.ListByCustomer(ctx, repository.NoTX, customerID, limit)
}
