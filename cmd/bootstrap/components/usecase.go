package components

import (
	"ticketing-engine/internal/domain/order"
	"ticketing-engine/internal/monitoring"
	"ticketing-engine/internal/pkg/clock"
	"ticketing-engine/internal/pkg/config"
	"ticketing-engine/internal/usecase"
	"ticketing-engine/internal/usecase/commands"
	"ticketing-engine/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	order.NewFactory,
	fx.Annotate(
		monitoring.NewRecorder,
		fx.As(new(commands.MetricsRecorder)),
	),
	func(cfg config.Config) config.PaymentConfig { return cfg.Payment },
	func(cfg config.Config) config.WorkerConfig { return cfg.Worker },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewOrderUseCase,
		commands.NewReconciliationUseCase,
		commands.NewMaintenanceUseCase,
		commands.NewNotificationUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewTicketTypeQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
