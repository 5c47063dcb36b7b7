package sqlite

import "github.com/Sazadakthar786/Software-failure-detection/internal/storage/migrations"

// schemaMigrations builds the database layout. Timestamps are stored as
// fixed-width UTC text so lexical order matches chronological order.
var schemaMigrations = []migrations.Migration{
	{
		Version:     1,
		Description: "metric samples and action records",
		Up: `
-- Metric samples (classified observations)
CREATE TABLE IF NOT EXISTS metric_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    cpu REAL NOT NULL CHECK(cpu >= 0 AND cpu <= 100),
    memory REAL NOT NULL CHECK(memory >= 0 AND memory <= 100),
    disk REAL CHECK(disk IS NULL OR (disk >= 0 AND disk <= 100)),
    status TEXT NOT NULL CHECK(status IN ('Healthy', 'Failed', 'Unknown')),
    failure_type TEXT,
    affected_component TEXT,
    suggested_remedy TEXT
);

CREATE INDEX IF NOT EXISTS idx_metric_samples_timestamp ON metric_samples(timestamp);

-- Action records (one per recovery cycle)
CREATE TABLE IF NOT EXISTS action_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cycle_id TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    action TEXT NOT NULL CHECK(action IN ('restart', 'scale_up', 'rollback', 'do_nothing')),
    result TEXT NOT NULL CHECK(result IN ('recovered', 'failed')),
    reward REAL NOT NULL,
    recovery_time REAL,
    CHECK((result = 'recovered') = (recovery_time IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_action_records_timestamp ON action_records(timestamp);
`,
		Down: `
DROP TABLE IF EXISTS action_records;
DROP TABLE IF EXISTS metric_samples;
`,
	},
	{
		Version:     2,
		Description: "index action results for summary queries",
		Up:          `CREATE INDEX IF NOT EXISTS idx_action_records_result ON action_records(result);`,
		Down:        `DROP INDEX IF EXISTS idx_action_records_result;`,
	},
}
