package store

// Five tables: users, user_contacts, groups, group_members, messages.
// Exactly one of messages.receiver_id / messages.group_id is set per row;
// delivery-tracking columns apply to private messages only.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT    NOT NULL UNIQUE CHECK (length(username) BETWEEN 3 AND 50),
	nickname      TEXT,
	email         TEXT    NOT NULL UNIQUE,
	password_hash TEXT    NOT NULL,
	salt          TEXT    NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS user_contacts (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id         INTEGER NOT NULL REFERENCES users(id),
	contact_id      INTEGER NOT NULL REFERENCES users(id),
	custom_nickname TEXT,
	status          TEXT    NOT NULL CHECK (status IN ('pending', 'approved', 'blocked', 'deleted')),
	created_at      DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	updated_at      DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	CHECK (user_id <> contact_id),
	UNIQUE (user_id, contact_id)
);

CREATE TABLE IF NOT EXISTS groups (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL CHECK (length(name) BETWEEN 3 AND 50),
	creator_id INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);

CREATE TABLE IF NOT EXISTS group_members (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	group_id  INTEGER NOT NULL REFERENCES groups(id),
	user_id   INTEGER NOT NULL REFERENCES users(id),
	joined_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	UNIQUE (group_id, user_id)
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	content      TEXT    NOT NULL CHECK (length(content) BETWEEN 1 AND 500),
	is_group     BOOLEAN NOT NULL DEFAULT 0,
	sender_id    INTEGER NOT NULL REFERENCES users(id),
	receiver_id  INTEGER REFERENCES users(id),
	group_id     INTEGER REFERENCES groups(id),
	is_delivered BOOLEAN NOT NULL DEFAULT 0,
	delivered_at DATETIME,
	created_at   DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	CHECK ((receiver_id IS NULL) <> (group_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_contacts_user       ON user_contacts(user_id);
CREATE INDEX IF NOT EXISTS idx_group_members_user  ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_group_members_group ON group_members(group_id);
CREATE INDEX IF NOT EXISTS idx_messages_receiver   ON messages(receiver_id);
CREATE INDEX IF NOT EXISTS idx_messages_group      ON messages(group_id);
`
