package flowstore

// Schema contains the DDL for the flow store.
const Schema = `
-- Flows: recorded interaction scripts, steps and variables as JSON
CREATE TABLE IF NOT EXISTS flows (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    version     INTEGER NOT NULL DEFAULT 1,
    steps       TEXT NOT NULL DEFAULT '[]',
    variables   TEXT NOT NULL DEFAULT '[]',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flows_updated ON flows(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_flows_name ON flows(name);
`
