package postgres

// schema is applied idempotently at startup. task_dependencies cascades on
// both sides so deleting a task removes every row that references it,
// whether as the dependent or the dependency.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         bigserial PRIMARY KEY,
	name       text NOT NULL UNIQUE,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
	id         bigserial PRIMARY KEY,
	project_id bigint NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
	title      text NOT NULL,
	start_at   timestamptz NOT NULL,
	end_at     timestamptz NOT NULL,
	progress   double precision NOT NULL DEFAULT 0,
	lane       integer NOT NULL DEFAULT 0,
	color      text
);

CREATE INDEX IF NOT EXISTS tasks_project_id_idx ON tasks (project_id);

CREATE TABLE IF NOT EXISTS task_dependencies (
	task_id       bigint NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	depends_on_id bigint NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	PRIMARY KEY (task_id, depends_on_id)
);
`
