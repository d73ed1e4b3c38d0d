package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS journal (
	id               TEXT PRIMARY KEY,
	message_uid      INTEGER NOT NULL,
	message_id       TEXT NOT NULL DEFAULT '',
	sender           TEXT NOT NULL DEFAULT '',
	subject          TEXT NOT NULL DEFAULT '',
	classification   TEXT NOT NULL,
	outcome_reason   TEXT NOT NULL DEFAULT '',
	confirmation_ref TEXT NOT NULL DEFAULT '',
	started_at       DATETIME NOT NULL,
	finished_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_message_uid ON journal(message_uid);
CREATE INDEX IF NOT EXISTS idx_journal_finished_at ON journal(finished_at);
`,
	},
}
