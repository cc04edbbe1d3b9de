package services

import (
	"context"

	"gorm.io/gorm"

	"toolboard/realtime"
	"toolboard/utils"
)

// publishEvent puts a change event on the bus. Failures are logged and
// swallowed: the mutation has already committed and a broken feed must
// never degrade a primary CRUD action into a failure.
func publishEvent(ctx context.Context, bus realtime.Bus, ev realtime.Event) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, ev); err != nil {
		utils.Sugar.Warnf("change event publish failed table=%s kind=%s: %v", ev.Table, ev.Kind, err)
	}
}

// PingBackend adapts the connector health check for realtime collections.
func PingBackend(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
