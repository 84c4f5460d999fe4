package store

// schemaSQL holds the DDL for the extraction index.
const schemaSQL = `
-- Index of completed extraction runs. The artifact tree on disk is the
-- source of truth; this table only serves listing and lookup.
CREATE TABLE IF NOT EXISTS extractions (
    id TEXT PRIMARY KEY,
    pdf_filename TEXT NOT NULL,
    gabarito_filename TEXT,
    total_questions INTEGER NOT NULL DEFAULT 0,
    questions_with_images INTEGER NOT NULL DEFAULT 0,
    total_images INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
`
