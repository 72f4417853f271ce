package db

import "database/sql"

// SchemaSQL is the complete schema of a fresh database.
//
// # Schema Drift Protection
//
// This is the single source of truth for the database schema. Repository
// tests build their in-memory databases from GetSchemaSQL(), so a repository
// that references a column missing here fails with "no such column" at test
// time instead of in production.
//
// # Storage conventions
//
// Instants (due_date, start_date, completed_at, created_at, updated_at) are
// TEXT in RFC 3339 UTC form with second precision ("2024-07-08T06:00:00Z").
// All values share one width, so lexical comparison in WHERE clauses orders
// them chronologically.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	notes TEXT,
	is_default INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

-- At most one default client
CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_default ON clients(is_default) WHERE is_default = 1;

CREATE TABLE IF NOT EXISTS projects (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'On Hold', 'Completed')),
	start_date TEXT,
	due_date TEXT,
	is_default INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	FOREIGN KEY (client_id) REFERENCES clients(id)
);

-- At most one default project per client
CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_default ON projects(client_id) WHERE is_default = 1;
CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id);

CREATE TABLE IF NOT EXISTS contexts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS priorities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	rank INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'Next Action'
		CHECK (status IN ('Next Action', 'Waiting For', 'Someday/Maybe', 'Reference', 'Completed')),
	context_id TEXT NOT NULL,
	project_id TEXT NOT NULL,
	client_id TEXT,
	priority_id TEXT,
	due_date TEXT,
	start_date TEXT,
	completed_at TEXT,
	recurrence_expression TEXT,
	time_estimate INTEGER NOT NULL DEFAULT 0,
	energy_level TEXT CHECK (energy_level IN ('low', 'medium', 'high')),
	archived INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (context_id) REFERENCES contexts(id),
	FOREIGN KEY (project_id) REFERENCES projects(id),
	FOREIGN KEY (client_id) REFERENCES clients(id),
	FOREIGN KEY (priority_id) REFERENCES priorities(id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_context ON tasks(context_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);

CREATE TABLE IF NOT EXISTS task_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id TEXT NOT NULL,
	actor_id TEXT,
	action TEXT NOT NULL CHECK (action IN ('create', 'update', 'archive')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_task_events_task ON task_events(task_id);
`

// InitSchema creates a fresh schema or applies pending migrations to an
// existing one.
func InitSchema(conn *sql.DB) error {
	return RunMigrations(conn)
}

// GetSchemaSQL returns the authoritative schema, for tests and migrations.
func GetSchemaSQL() string {
	return SchemaSQL
}
