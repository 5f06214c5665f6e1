package db

// schemaSQL defines the SQLite schema for the record store. Every date column
// holds ISO text (YYYY-MM-DD), every timestamp column YYYY-MM-DD HH:MM:SS;
// empty text means unset. Report rows are kept when their project is deleted,
// so the report tables carry no foreign key.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS staff (
    id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    age INTEGER NOT NULL,
    level TEXT NOT NULL,
    role TEXT NOT NULL,
    management_title TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    customer TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_date TEXT NOT NULL,
    expected_end_date TEXT NOT NULL,
    actual_end_date TEXT NOT NULL DEFAULT '',
    budget REAL NOT NULL,
    status TEXT NOT NULL,
    pm_id TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    assignee_id TEXT NOT NULL DEFAULT 'Unassigned',
    start_date TEXT NOT NULL,
    deadline TEXT NOT NULL,
    completed_date TEXT NOT NULL DEFAULT '',
    priority TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);

CREATE TABLE IF NOT EXISTS weekly_reports (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    author_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    period_start TEXT NOT NULL,
    period_end TEXT NOT NULL,
    total_tasks INTEGER NOT NULL,
    completed_tasks INTEGER NOT NULL,
    overdue_tasks INTEGER NOT NULL,
    progress REAL NOT NULL,
    status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_weekly_project_period ON weekly_reports(project_id, period_end);

CREATE TABLE IF NOT EXISTS final_reports (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL UNIQUE,
    author_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    project_name TEXT NOT NULL,
    customer TEXT NOT NULL,
    project_start_date TEXT NOT NULL,
    actual_end_date TEXT NOT NULL,
    duration_days INTEGER NOT NULL,
    total_tasks INTEGER NOT NULL,
    completed_tasks INTEGER NOT NULL,
    ontime_tasks INTEGER NOT NULL,
    overdue_tasks INTEGER NOT NULL,
    cancelled_tasks INTEGER NOT NULL,
    overall_progress REAL NOT NULL,
    project_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_log (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    entity TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT ''
);
`
