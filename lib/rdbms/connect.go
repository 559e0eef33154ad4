package rdbms

import (
	"context"
	"database/sql"
	"time"

	"github.com/artie-labs/minisync/lib/utils"
)

const (
	connectBaseDelay = 250 * time.Millisecond
	connectMaxDelay  = 5 * time.Second
)

// Connect opens a connection pool and pings it, retrying the ping up to attempts times.
func Connect(ctx context.Context, driverName, dsn string, attempts int) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if _, err = utils.WithJitteredRetries(ctx, connectBaseDelay, connectMaxDelay, attempts, func(_ int) (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
