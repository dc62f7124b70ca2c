package migration

import (
	"context"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

// migrate0000 creates the database with the latest schema.
func migrate0000(ctx context.Context) error {
	return entity.MigrateTable(xcontext.DB(ctx))
}
