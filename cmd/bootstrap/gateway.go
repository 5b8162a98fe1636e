package bootstrap

import (
	"log/slog"

	"ticketing-engine/internal/gateway/notify"
	"ticketing-engine/internal/gateway/payment"
	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewPaymentGateway,
		NewWebhookSigner,
		fx.Annotate(
			notify.NewLogNotifier,
			fx.As(new(commands.Notifier)),
		),
	),
)

func NewPaymentGateway(cfg config.Config) payment.Gateway {
	if cfg.Payment.Provider == "http" {
		return payment.NewHTTPGateway(cfg.Payment)
	}
	slog.Info("using stub payment gateway", "provider", cfg.Payment.Provider)
	return payment.NewStubGateway()
}

func NewWebhookSigner(cfg config.Config) *payment.Signer {
	return payment.NewSigner(cfg.Payment.WebhookSecret)
}
