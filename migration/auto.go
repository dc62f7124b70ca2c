package migration

import (
	"context"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

// AutoMigrate lets gorm reconcile the schema with the current entities. When
// this migrator is called, no need to call other migrators.
func AutoMigrate(ctx context.Context) error {
	return entity.MigrateTable(xcontext.DB(ctx))
}
