package content

// schema 内容仓库表结构
// posts.published_at 存储RFC3339字符串
const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id           INTEGER PRIMARY KEY,
	post_type    TEXT    NOT NULL DEFAULT 'post',
	post_status  TEXT    NOT NULL DEFAULT 'publish',
	slug         TEXT    NOT NULL,
	parent_id    INTEGER NOT NULL DEFAULT 0,
	published_at TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_posts_status_type ON posts (post_status, post_type);

CREATE TABLE IF NOT EXISTS taxonomies (
	name         TEXT    PRIMARY KEY,
	public       INTEGER NOT NULL DEFAULT 1,
	rewrite_slug TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS terms (
	id         INTEGER PRIMARY KEY,
	taxonomy   TEXT    NOT NULL REFERENCES taxonomies (name) ON DELETE CASCADE,
	slug       TEXT    NOT NULL,
	post_count INTEGER NOT NULL DEFAULT 0,
	UNIQUE (taxonomy, slug)
);
`
