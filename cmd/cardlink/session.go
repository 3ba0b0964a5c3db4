package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/phrazzld/cardlink/internal/config"
	"github.com/phrazzld/cardlink/internal/domain"
	"github.com/phrazzld/cardlink/internal/events"
	"github.com/phrazzld/cardlink/internal/platform/logger"
	"github.com/phrazzld/cardlink/internal/scheme"
	"github.com/phrazzld/cardlink/internal/task"
)

// session holds everything a flow needs to talk to the scheme.
type session struct {
	client   *scheme.Client
	async    *scheme.Async
	runner   *task.TaskRunner
	provider *config.Provider
	emitter  *events.InMemoryEventEmitter
	logger   *slog.Logger
}

func openSession(ctx context.Context, s settings, stderr io.Writer) (*session, error) {
	level := "warn"
	if s.Verbose {
		level = "debug"
	}
	log := logger.Setup(logger.Config{Level: level, Format: "text", Output: stderr})

	client, err := scheme.NewClient(s.Scheme, log)
	if err != nil {
		return nil, err
	}

	token := s.Scheme.ClientToken
	if token == "" {
		issued, err := client.IssueClientToken(ctx, s.MerchantAppID)
		if err != nil {
			return nil, fmt.Errorf("issue client token: %w", err)
		}
		token = issued.Token
		log.Debug("client token issued", "expires_at", issued.ExpiresAt)
	}

	runner := task.NewTaskRunner(task.TaskRunnerConfig{WorkerCount: 2, QueueSize: 8}, log)
	runner.Start()

	async, err := scheme.NewAsync(client, runner, log)
	if err != nil {
		_ = runner.Stop(ctx)
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(events.EventHandlerFunc(func(ctx context.Context, event *events.FlowEvent) error {
		log.InfoContext(ctx, "flow event",
			"type", string(event.Type),
			"flow", event.Flow,
			"step", event.Step,
			"payload", string(event.Payload))
		return nil
	}))

	return &session{
		client: client,
		async:  async,
		runner: runner,
		provider: config.NewProvider(&domain.Configuration{
			Environment: "sandbox",
			PaymentMethods: []domain.PaymentMethodConfig{{
				ID:            "card-scheme",
				Type:          domain.PaymentMethodCardScheme,
				MerchantAppID: s.MerchantAppID,
			}},
		}, token),
		emitter: emitter,
		logger:  log,
	}, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.runner.Stop(ctx); err != nil {
		s.logger.Warn("task runner did not stop cleanly", "error", err)
	}
}

// otpFor returns code when set, otherwise the last OTP the sandbox sent to phone.
func (s *session) otpFor(ctx context.Context, code, phone string) (string, error) {
	if code != "" {
		return code, nil
	}
	otp, err := s.client.SandboxOTP(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("read sandbox otp (pass --otp outside the sandbox): %w", err)
	}
	return otp, nil
}
