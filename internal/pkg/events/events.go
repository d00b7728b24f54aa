package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/metrics"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPayrollGenerated = "payroll.generated"
	SubjectPayrollDisbursed = "payroll.disbursed"
	SubjectLeaveReviewed    = "leave.reviewed"
)

type PayrollGenerated struct {
	PayrollID  string `json:"payroll_id"`
	EmployeeID string `json:"employee_id"`
	Month      string `json:"month"`
	NetPay     string `json:"net_pay"`
	Status     string `json:"status"`
}

type PayrollDisbursed struct {
	PayrollID  string    `json:"payroll_id"`
	EmployeeID string    `json:"employee_id"`
	Month      string    `json:"month"`
	NetPay     string    `json:"net_pay"`
	PaymentRef string    `json:"payment_ref"`
	PaidAt     time.Time `json:"paid_at"`
}

type LeaveReviewed struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	LeaveType  string `json:"leave_type"`
	Status     string `json:"status"`
	Days       int    `json:"days"`
	ReviewedBy string `json:"reviewed_by"`
}

// Publisher emits domain events. Delivery is best effort: failures are
// logged and never reach the caller.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any)
}

type NATSPublisher struct {
	conn    *nats.Conn
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Connect dials the broker at url.
func Connect(url string, logger *slog.Logger, m *metrics.Metrics) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("hris-payroll"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger, metrics: m}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) {
	if err := p.publish(ctx, subject, event); err != nil {
		p.metrics.EventsPublished.WithLabelValues(subject, "failure").Inc()
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
		return
	}
	p.metrics.EventsPublished.WithLabelValues(subject, "success").Inc()
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, event any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.conn.Publish(subject, data)
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) {}
