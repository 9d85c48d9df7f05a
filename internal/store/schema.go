package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    target_id TEXT NOT NULL,
    action TEXT NOT NULL,
    input_path TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS friend_rows (
    run_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    match_score REAL NOT NULL,
    num_reviews INTEGER NOT NULL,
    average_delta REAL NOT NULL,
    reviews_in_common INTEGER NOT NULL,
    average_error REAL NOT NULL,
    PRIMARY KEY (run_id, friend_id),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS business_rows (
    run_id TEXT NOT NULL,
    business_id TEXT NOT NULL,
    relevance REAL NOT NULL,
    num_references INTEGER NOT NULL,
    total_match_scores REAL NOT NULL,
    business_reviews INTEGER NOT NULL,
    business_average REAL NOT NULL,
    predicted_average REAL NOT NULL,
    reviewer_id TEXT NOT NULL,
    reviewer_stars REAL NOT NULL,
    reviewer_contrib REAL NOT NULL,
    PRIMARY KEY (run_id, business_id),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target_id);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
