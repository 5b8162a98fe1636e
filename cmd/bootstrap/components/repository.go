package components

import (
	"ticketing-engine/internal/infra/db"
	"ticketing-engine/internal/infra/readstore"
	"ticketing-engine/internal/infra/uow"
	"ticketing-engine/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewDBTX,
		// Write side: every command repo is reached through the unit of work.
		uow.NewPostgresUoW,
		// Read side
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewTicketTypeReadStore,
			fx.As(new(queries.TicketTypeReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
