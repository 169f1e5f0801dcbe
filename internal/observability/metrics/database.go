package metrics

import (
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RegisterDBStats exposes db's pool statistics (open, in use, idle, waits)
// as go_sql_* series labelled db_name=name. Registering the same name twice
// is a no-op.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	err := reg.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
