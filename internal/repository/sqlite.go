package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/xiaot623/pingpong/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies the schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time; a single connection turns lock
	// contention into queueing. For in-memory databases it also keeps the
	// schema visible to every goroutine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		// user_low/user_high hold the unordered pair so that a single unique
		// index covers both directions.
		`CREATE TABLE IF NOT EXISTS friend_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			user_low INTEGER NOT NULL,
			user_high INTEGER NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'rejected')),
			created_at DATETIME NOT NULL,
			responded_at DATETIME,
			CHECK (from_user_id <> to_user_id),
			UNIQUE (user_low, user_high),
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_friend_requests_to ON friend_requests(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_friend_requests_from ON friend_requests(from_user_id, status)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('text', 'file')),
			text TEXT NOT NULL,
			url TEXT,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(from_user_id, to_user_id, created_at, id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user. Returns ErrDuplicate if the username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: id, Username: username, CreatedAt: now}, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetCredentials retrieves a user together with its password hash.
func (s *SQLiteStore) GetCredentials(ctx context.Context, username string) (*domain.Credentials, error) {
	var c domain.Credentials
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username).
		Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateSession stores a session token for a user.
func (s *SQLiteStore) CreateSession(ctx context.Context, token string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC())
	return err
}

// GetUserByToken resolves a session token to its user.
func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.created_at
		 FROM sessions s
		 JOIN users u ON s.user_id = u.id
		 WHERE s.token = ?`, token))
}

const friendRequestColumns = `fr.id, fr.from_user_id, fr.to_user_id,
	u_from.username, u_to.username, fr.status, fr.created_at, fr.responded_at
	FROM friend_requests fr
	JOIN users u_from ON fr.from_user_id = u_from.id
	JOIN users u_to   ON fr.to_user_id   = u_to.id`

// CreateFriendRequest inserts a pending request. Returns ErrDuplicate if any
// request already exists for the unordered pair.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, fromUserID, toUserID int64) (*domain.FriendRequest, error) {
	low, high := orderedPair(fromUserID, toUserID)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO friend_requests (from_user_id, to_user_id, user_low, user_high, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fromUserID, toUserID, low, high, domain.RequestStatusPending, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetFriendRequest(ctx, id)
}

// GetFriendRequest retrieves a friend request by ID.
func (s *SQLiteStore) GetFriendRequest(ctx context.Context, requestID int64) (*domain.FriendRequest, error) {
	return scanFriendRequest(s.db.QueryRowContext(ctx,
		`SELECT `+friendRequestColumns+` WHERE fr.id = ?`, requestID))
}

// GetFriendRequestBetween retrieves the request for an unordered pair.
func (s *SQLiteStore) GetFriendRequestBetween(ctx context.Context, userA, userB int64) (*domain.FriendRequest, error) {
	low, high := orderedPair(userA, userB)
	return scanFriendRequest(s.db.QueryRowContext(ctx,
		`SELECT `+friendRequestColumns+` WHERE fr.user_low = ? AND fr.user_high = ?`, low, high))
}

func scanFriendRequest(row *sql.Row) (*domain.FriendRequest, error) {
	var fr domain.FriendRequest
	var respondedAt sql.NullTime
	err := row.Scan(&fr.ID, &fr.FromUserID, &fr.ToUserID, &fr.FromUsername, &fr.ToUsername,
		&fr.Status, &fr.CreatedAt, &respondedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if respondedAt.Valid {
		fr.RespondedAt = &respondedAt.Time
	}
	return &fr, nil
}

// ResolveFriendRequest moves a pending request to a terminal status.
// It returns false when the request was not pending anymore.
func (s *SQLiteStore) ResolveFriendRequest(ctx context.Context, requestID int64, status domain.RequestStatus, respondedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friend_requests SET status = ?, responded_at = ? WHERE id = ? AND status = ?`,
		status, respondedAt.UTC(), requestID, domain.RequestStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AreFriends reports whether an accepted request exists for the pair.
func (s *SQLiteStore) AreFriends(ctx context.Context, userA, userB int64) (bool, error) {
	low, high := orderedPair(userA, userB)
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM friend_requests
		 WHERE user_low = ? AND user_high = ? AND status = ?
		 LIMIT 1`,
		low, high, domain.RequestStatusAccepted).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListFriends lists users with an accepted request in either direction.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID int64) ([]domain.FriendItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username
		 FROM friend_requests fr
		 JOIN users u ON u.id = CASE WHEN fr.from_user_id = ? THEN fr.to_user_id ELSE fr.from_user_id END
		 WHERE (fr.from_user_id = ? OR fr.to_user_id = ?) AND fr.status = ?
		 ORDER BY u.username`,
		userID, userID, userID, domain.RequestStatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []domain.FriendItem{}
	for rows.Next() {
		var f domain.FriendItem
		if err := rows.Scan(&f.ID, &f.Username); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// ListIncomingRequests lists pending requests addressed to the user.
func (s *SQLiteStore) ListIncomingRequests(ctx context.Context, userID int64) ([]domain.IncomingRequestItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fr.id, u_from.username
		 FROM friend_requests fr
		 JOIN users u_from ON fr.from_user_id = u_from.id
		 WHERE fr.to_user_id = ? AND fr.status = ?
		 ORDER BY fr.id`,
		userID, domain.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.IncomingRequestItem{}
	for rows.Next() {
		var it domain.IncomingRequestItem
		if err := rows.Scan(&it.RequestID, &it.FromUsername); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListOutgoingRequests lists pending requests sent by the user.
func (s *SQLiteStore) ListOutgoingRequests(ctx context.Context, userID int64) ([]domain.OutgoingRequestItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fr.id, u_to.username, fr.status
		 FROM friend_requests fr
		 JOIN users u_to ON fr.to_user_id = u_to.id
		 WHERE fr.from_user_id = ? AND fr.status = ?
		 ORDER BY fr.id`,
		userID, domain.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OutgoingRequestItem{}
	for rows.Next() {
		var it domain.OutgoingRequestItem
		if err := rows.Scan(&it.RequestID, &it.ToUsername, &it.Status); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const messageColumns = `m.id, m.from_user_id, m.to_user_id, u_from.username, u_to.username,
	m.kind, m.text, m.url, m.created_at
	FROM messages m
	JOIN users u_from ON m.from_user_id = u_from.id
	JOIN users u_to   ON m.to_user_id   = u_to.id`

// CreateMessage appends a message and returns the stored row.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (from_user_id, to_user_id, kind, text, url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.FromUserID, msg.ToUserID, msg.Kind, msg.Text, nullString(msg.URL), createdAt.UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+messageColumns+` WHERE m.id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("message %d vanished after insert", id)
	}
	return &messages[0], nil
}

// GetConversation returns the most recent limit messages exchanged between
// two users, oldest first.
func (s *SQLiteStore) GetConversation(ctx context.Context, userA, userB int64, limit int) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+`
		 WHERE (m.from_user_id = ? AND m.to_user_id = ?)
		    OR (m.from_user_id = ? AND m.to_user_id = ?)
		 ORDER BY m.created_at DESC, m.id DESC
		 LIMIT ?`,
		userA, userB, userB, userA, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func scanMessages(rows *sql.Rows) ([]domain.Message, error) {
	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var url sql.NullString
		if err := rows.Scan(&msg.ID, &msg.FromUserID, &msg.ToUserID, &msg.FromUsername, &msg.ToUsername,
			&msg.Kind, &msg.Text, &url, &msg.CreatedAt); err != nil {
			return nil, err
		}
		if url.Valid {
			msg.URL = url.String
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func orderedPair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
