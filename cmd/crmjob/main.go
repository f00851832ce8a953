package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"crm-backend/internal/client"
	"crm-backend/internal/config"
	"crm-backend/internal/jobs"
	"crm-backend/internal/logger"
	"crm-backend/internal/notify"
	"crm-backend/internal/service"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: crmjob <command> [flags]

Commands:
  heartbeat   log a liveness line and the API health
  restock     replenish low-stock products
  report      log the CRM summary
  reminders   log and mail reminders for recent orders
  crontab     print crontab lines for the configured schedules
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg := config.Load()

	if command == "crontab" {
		if err := jobs.WriteCrontab(os.Stdout, cfg.Jobs); err != nil {
			fmt.Fprintf(os.Stderr, "crontab: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := logger.New(cfg.Server.Env, cfg.Jobs.LogSink)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.Jobs.EndpointURL,
		client.WithTimeout(cfg.Jobs.RequestTimeout),
		client.WithRetries(cfg.Jobs.Retries),
	)

	var mailer notify.Mailer
	if cfg.SMTP.Enabled() {
		mailer = notify.NewSMTPMailer(cfg.SMTP)
	}

	runner := jobs.NewRunner(api, mailer, log.With(zap.String("job", command)))

	if err := run(ctx, runner, command, args); err != nil {
		log.Error("Job failed", zap.String("job", command), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, runner *jobs.Runner, command string, args []string) error {
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)

	switch command {
	case "heartbeat":
		if err := flags.Parse(args); err != nil {
			return err
		}
		return runner.Heartbeat(ctx)

	case "restock":
		minStock := flags.Int("min-stock", service.DefaultMinStock, "replenish products with stock below this value")
		incrementBy := flags.Int("increment-by", service.DefaultIncrementBy, "amount added to each low-stock product")
		if err := flags.Parse(args); err != nil {
			return err
		}
		return runner.Restock(ctx, *minStock, *incrementBy)

	case "report":
		if err := flags.Parse(args); err != nil {
			return err
		}
		return runner.Report(ctx)

	case "reminders":
		hours := flags.Int("hours", 24, "look back this many hours for orders")
		if err := flags.Parse(args); err != nil {
			return err
		}
		return runner.Reminders(ctx, *hours)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
