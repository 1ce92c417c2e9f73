package migration

var tableStatements = []string{
	`CREATE TABLE IF NOT EXISTS materials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		oracle TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		UNIQUE(oracle)
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT,
		department TEXT,
		item_type TEXT CHECK(item_type IN ('catalog','freetext')),
		material_description TEXT,
		oracle_number TEXT,
		free_text_item TEXT,
		quantity INTEGER NOT NULL DEFAULT 1,
		is_spr INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'new',
		timestamp TEXT NOT NULL DEFAULT (datetime('now')),
		status_changed_at TEXT NOT NULL DEFAULT (datetime('now')),
		new_comment_for_manager INTEGER NOT NULL DEFAULT 0,
		new_comment_for_requestor INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
		by_role TEXT CHECK(by_role IN ('requestor','manager')),
		by_name TEXT,
		text TEXT NOT NULL,
		at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id INTEGER PRIMARY KEY,
		actor_role TEXT NOT NULL,
		actor_name TEXT,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT,
		metadata TEXT,
		request_id TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
}

// legacyColumns lists request columns older databases may lack.
// SQLite rejects non-constant defaults in ADD COLUMN, so status_changed_at
// is added nullable and backfilled from the submission timestamp.
var legacyColumns = []struct {
	name     string
	ddl      string
	backfill string
}{
	{name: "batch_id", ddl: `ALTER TABLE requests ADD COLUMN batch_id TEXT`},
	{
		name:     "status_changed_at",
		ddl:      `ALTER TABLE requests ADD COLUMN status_changed_at TEXT`,
		backfill: `UPDATE requests SET status_changed_at = COALESCE(timestamp, datetime('now')) WHERE status_changed_at IS NULL`,
	},
	{name: "new_comment_for_manager", ddl: `ALTER TABLE requests ADD COLUMN new_comment_for_manager INTEGER NOT NULL DEFAULT 0`},
	{name: "new_comment_for_requestor", ddl: `ALTER TABLE requests ADD COLUMN new_comment_for_requestor INTEGER NOT NULL DEFAULT 0`},
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_requests_batch_id ON requests(batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_department_status ON requests(department, status)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_request_id ON comments(request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_logs_created_at ON activity_logs(created_at)`,
}
