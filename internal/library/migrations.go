package library

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create agents and tags",
		SQL: `
			CREATE TABLE agents (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				role        TEXT NOT NULL,
				status      TEXT NOT NULL DEFAULT 'offline',
				updated_at  TEXT NOT NULL DEFAULT ''
			);

			CREATE INDEX idx_agents_role ON agents (role);

			CREATE TABLE agent_tags (
				agent_id    TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
				position    INTEGER NOT NULL,
				tag         TEXT NOT NULL,
				PRIMARY KEY (agent_id, position)
			);
		`,
	},
	{
		Version: 2,
		Name:    "seed prebuilt agents",
		SQL: `
			INSERT INTO agents (id, name, role, status, updated_at) VALUES
				('a-1', 'CX Orchestrator', 'Support', 'online', '2h ago'),
				('a-2', 'Sales Qualifier', 'Sales', 'online', '1d ago'),
				('a-3', 'Research Synthesizer', 'Ops', 'offline', '3d ago');

			INSERT INTO agent_tags (agent_id, position, tag) VALUES
				('a-1', 0, 'routing'),
				('a-1', 1, 'handoff'),
				('a-2', 0, 'leads'),
				('a-2', 1, 'scoring'),
				('a-3', 0, 'web'),
				('a-3', 1, 'papers');
		`,
	},
}
