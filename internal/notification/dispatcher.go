package notification

import (
	"context"

	"go.uber.org/zap"
)

type Kind string

const (
	KindAbnormalConsumption Kind = "abnormal_consumption"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is a fire-and-forget message to an operator or customer.
// Delivery is an external concern; failures never affect billing.
type Notification struct {
	Kind       Kind
	Message    string
	Severity   Severity
	TargetUser string
	TargetType string
	TargetID   string
}

// Dispatcher hands notifications to a delivery backend.
type Dispatcher interface {
	Notify(ctx context.Context, n Notification) error
}

// LogDispatcher records notifications in the structured log. It stands in
// for email/SMS/push providers wired in deployment.
type LogDispatcher struct {
	log *zap.Logger
}

func NewLogDispatcher(log *zap.Logger) Dispatcher {
	return &LogDispatcher{log: log.Named("notification.dispatcher")}
}

func (d *LogDispatcher) Notify(_ context.Context, n Notification) error {
	d.log.Info("notification dispatched",
		zap.String("kind", string(n.Kind)),
		zap.String("severity", string(n.Severity)),
		zap.String("target_user", n.TargetUser),
		zap.String("target_type", n.TargetType),
		zap.String("target_id", n.TargetID),
		zap.String("message", n.Message),
	)
	return nil
}
