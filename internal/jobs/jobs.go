package jobs

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"crm-backend/internal/client"
	"crm-backend/internal/config"
	"crm-backend/internal/notify"
	"crm-backend/internal/transport"

	"go.uber.org/zap"
)

// API is the subset of the CRM HTTP API the jobs call
type API interface {
	Health(ctx context.Context) (client.HealthStatus, error)
	Replenish(ctx context.Context, minStock, incrementBy int) (transport.ReplenishPayload, error)
	CRMReport(ctx context.Context) (transport.ReportResponse, error)
	RecentOrders(ctx context.Context, hours int) ([]transport.OrderResponse, error)
}

// Runner executes the periodic jobs. Scheduling is left to cron.
type Runner struct {
	api    API
	mailer notify.Mailer
	logger *zap.Logger
	now    func() time.Time
}

// NewRunner creates a Runner. mailer may be nil, which disables reminder mail.
func NewRunner(api API, mailer notify.Mailer, logger *zap.Logger) *Runner {
	return &Runner{
		api:    api,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Heartbeat records that the job host is alive along with the API health.
// An unreachable API is logged, not returned.
func (r *Runner) Heartbeat(ctx context.Context) error {
	ts := r.now().Format("02/01/2006-15:04:05")

	health, err := r.api.Health(ctx)
	if err != nil {
		r.logger.Warn("CRM is alive, API unreachable",
			zap.String("timestamp", ts),
			zap.Error(err),
		)
		return nil
	}

	if db := health.Database["status"]; db != "up" {
		r.logger.Warn("CRM is alive, database down",
			zap.String("timestamp", ts),
			zap.String("api_status", health.Status),
			zap.String("database", db),
			zap.String("database_error", health.Database["error"]),
		)
		return nil
	}

	r.logger.Info("CRM is alive",
		zap.String("timestamp", ts),
		zap.String("api_status", health.Status),
		zap.String("database", health.Database["status"]),
	)
	return nil
}

// Restock raises every product below minStock by incrementBy
func (r *Runner) Restock(ctx context.Context, minStock, incrementBy int) error {
	result, err := r.api.Replenish(ctx, minStock, incrementBy)
	if err != nil {
		r.logger.Error("Low-stock replenishment failed",
			zap.Int("min_stock", minStock),
			zap.Int("increment_by", incrementBy),
			zap.Error(err),
		)
		return fmt.Errorf("failed to replenish stock: %w", err)
	}

	r.logger.Info("Low-stock replenishment finished",
		zap.Bool("success", result.Success),
		zap.String("message", result.Message),
		zap.Int("updated_count", result.UpdatedCount),
	)
	return nil
}

// Report logs the weekly CRM summary line
func (r *Runner) Report(ctx context.Context) error {
	report, err := r.api.CRMReport(ctx)
	if err != nil {
		r.logger.Error("CRM report failed", zap.Error(err))
		return fmt.Errorf("failed to fetch CRM report: %w", err)
	}

	r.logger.Info(FormatReport(report),
		zap.String("timestamp", r.now().Format("2006-01-02 15:04:05")),
	)
	return nil
}

func FormatReport(report transport.ReportResponse) string {
	return fmt.Sprintf("Report: %d customers, %d orders, %s revenue.",
		report.TotalCustomers, report.TotalOrders, report.TotalRevenue)
}

// Reminders logs every order placed within the last hours and mails the
// customer when a mailer is configured. A failed fetch counts as no orders.
func (r *Runner) Reminders(ctx context.Context, hours int) error {
	orders, err := r.api.RecentOrders(ctx, hours)
	if err != nil {
		r.logger.Warn("Failed to fetch recent orders, treating as empty",
			zap.Int("hours", hours),
			zap.Error(err),
		)
		orders = nil
	}

	reminders := make([]notify.Reminder, len(orders))
	for i, o := range orders {
		reminders[i] = toReminder(o)

		r.logger.Info("Order reminder",
			zap.String("order_id", o.ID),
			zap.String("customer_email", reminders[i].Email),
			zap.Time("order_date", o.OrderDate),
			zap.String("total", o.TotalAmount),
		)
	}

	var sent, failed int
	if r.mailer != nil && len(reminders) > 0 {
		for i, err := range r.mailer.SendReminders(ctx, reminders) {
			if err != nil {
				failed++
				r.logger.Error("Failed to send reminder",
					zap.String("order_id", reminders[i].OrderID),
					zap.Error(err),
				)
				continue
			}
			sent++
		}
	}

	r.logger.Info("Order reminders processed",
		zap.Int("orders", len(orders)),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d reminders failed", failed, len(orders))
	}
	return nil
}

func toReminder(o transport.OrderResponse) notify.Reminder {
	r := notify.Reminder{
		OrderID:   o.ID,
		OrderDate: o.OrderDate,
		Total:     o.TotalAmount,
	}
	if o.Customer != nil {
		r.Email = o.Customer.Email
		r.CustomerName = strings.TrimSpace(o.Customer.FirstName + " " + o.Customer.LastName)
	}
	for _, item := range o.Items {
		r.Items = append(r.Items, fmt.Sprintf("%d x %s", item.Quantity, item.ProductName))
	}
	return r
}

// WriteCrontab prints one crontab line per job for the configured schedules.
// Output goes to the job logger's sink, so lines carry no redirection.
func WriteCrontab(w io.Writer, cfg config.JobsConfig) error {
	if err := cfg.Schedules.Validate(); err != nil {
		return err
	}

	lines := []struct {
		spec    string
		command string
	}{
		{cfg.Schedules.Heartbeat, "heartbeat"},
		{cfg.Schedules.Restock, "restock"},
		{cfg.Schedules.Report, "report"},
		{cfg.Schedules.Reminders, "reminders"},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", l.spec, cfg.Binary, l.command); err != nil {
			return err
		}
	}
	return nil
}
