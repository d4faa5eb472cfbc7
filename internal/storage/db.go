package storage

import (
	"database/sql"
	"fmt"
	"time"

	"transitionos/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single pooled connection keeps the foreign_keys pragma in effect for
	// every query and makes :memory: databases behave as one database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	// Child rows (expenses, goals, sessions) are removed by FK cascade when
	// the owning user is deleted.
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date DATETIME NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL DEFAULT 'RON',
			category TEXT NOT NULL,
			vendor TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			receipt_path TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_vendor ON expenses(vendor)`,
		`CREATE TABLE IF NOT EXISTS goals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			target_value REAL NOT NULL,
			current_value REAL NOT NULL DEFAULT 0,
			unit TEXT NOT NULL DEFAULT 'RON',
			target_date DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			is_completed INTEGER NOT NULL DEFAULT 0,
			completed_at DATETIME,
			completion_notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			duration_seconds INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user with the given username, email and password hash.
func (db *DB) CreateUser(username, email, passwordHash string) (*models.User, error) {
	result, err := db.conn.Exec(
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)",
		username, email, passwordHash,
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?",
		id,
	)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by exact username match.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?",
		username,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser removes a user and, via FK cascade, all their expenses, goals
// and sessions. The delete runs in a transaction so the cascade commits
// atomically with the parent row.
func (db *DB) DeleteUser(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// CreateExpense inserts a new expense and fills in its ID and timestamps.
func (db *DB) CreateExpense(e *models.Expense) error {
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if e.Currency == "" {
		e.Currency = models.DefaultCurrency
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	result, err := db.conn.Exec(
		`INSERT INTO expenses (user_id, date, amount, currency, category, vendor, notes, receipt_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Date, e.Amount, e.Currency, e.Category, e.Vendor, e.Notes, e.ReceiptPath, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

const expenseColumns = "id, user_id, date, amount, currency, category, vendor, notes, receipt_path, created_at, updated_at"

// GetExpense retrieves a single expense by ID.
func (db *DB) GetExpense(id int64) (*models.Expense, error) {
	row := db.conn.QueryRow(
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?",
		id,
	)

	var e models.Expense
	if err := scanExpense(row, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateExpense updates an existing expense and refreshes its update timestamp.
func (db *DB) UpdateExpense(e *models.Expense) error {
	e.UpdatedAt = time.Now().UTC()
	_, err := db.conn.Exec(
		`UPDATE expenses SET date = ?, amount = ?, currency = ?, category = ?, vendor = ?, notes = ?, receipt_path = ?, updated_at = ?
		 WHERE id = ?`,
		e.Date, e.Amount, e.Currency, e.Category, e.Vendor, e.Notes, e.ReceiptPath, e.UpdatedAt, e.ID,
	)
	return err
}

// DeleteExpense removes an expense by ID.
func (db *DB) DeleteExpense(id int64) error {
	_, err := db.conn.Exec("DELETE FROM expenses WHERE id = ?", id)
	return err
}

// ListExpenses retrieves all expenses for a user, ordered by date descending.
func (db *DB) ListExpenses(userID int64) ([]models.Expense, error) {
	rows, err := db.conn.Query(
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// RecentExpenses retrieves the n most recent expenses for a user by date.
func (db *DB) RecentExpenses(userID int64, n int) ([]models.Expense, error) {
	rows, err := db.conn.Query(
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC LIMIT ?",
		userID, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExpenses(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner, e *models.Expense) error {
	return row.Scan(&e.ID, &e.UserID, &e.Date, &e.Amount, &e.Currency, &e.Category,
		&e.Vendor, &e.Notes, &e.ReceiptPath, &e.CreatedAt, &e.UpdatedAt)
}

func collectExpenses(rows *sql.Rows) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := scanExpense(rows, &e); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateGoal inserts a new goal and fills in its ID and timestamps.
func (db *DB) CreateGoal(g *models.Goal) error {
	if g.Unit == "" {
		g.Unit = models.DefaultCurrency
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	result, err := db.conn.Exec(
		`INSERT INTO goals (user_id, category, title, description, target_value, current_value, unit, target_date, created_at, updated_at, is_completed, completed_at, completion_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Category, g.Title, g.Description, g.TargetValue, g.CurrentValue, g.Unit,
		nullTime(g.TargetDate), g.CreatedAt, g.UpdatedAt, g.IsCompleted, g.CompletedAt, g.CompletionNotes,
	)
	if err != nil {
		return err
	}

	g.ID, err = result.LastInsertId()
	return err
}

const goalColumns = "id, user_id, category, title, description, target_value, current_value, unit, target_date, created_at, updated_at, is_completed, completed_at, completion_notes"

// GetGoal retrieves a single goal by ID.
func (db *DB) GetGoal(id int64) (*models.Goal, error) {
	row := db.conn.QueryRow(
		"SELECT "+goalColumns+" FROM goals WHERE id = ?",
		id,
	)

	var g models.Goal
	if err := scanGoal(row, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGoal updates an existing goal and refreshes its update timestamp.
func (db *DB) UpdateGoal(g *models.Goal) error {
	g.UpdatedAt = time.Now().UTC()
	_, err := db.conn.Exec(
		`UPDATE goals SET category = ?, title = ?, description = ?, target_value = ?, current_value = ?, unit = ?, target_date = ?, updated_at = ?, is_completed = ?, completed_at = ?, completion_notes = ?
		 WHERE id = ?`,
		g.Category, g.Title, g.Description, g.TargetValue, g.CurrentValue, g.Unit,
		nullTime(g.TargetDate), g.UpdatedAt, g.IsCompleted, g.CompletedAt, g.CompletionNotes, g.ID,
	)
	return err
}

// DeleteGoal removes a goal by ID.
func (db *DB) DeleteGoal(id int64) error {
	_, err := db.conn.Exec("DELETE FROM goals WHERE id = ?", id)
	return err
}

// ListGoals retrieves all goals for a user, oldest first.
func (db *DB) ListGoals(userID int64) ([]models.Goal, error) {
	rows, err := db.conn.Query(
		"SELECT "+goalColumns+" FROM goals WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var g models.Goal
		if err := scanGoal(rows, &g); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// GoalByCategory retrieves a user's first goal in the given category.
// Returns sql.ErrNoRows when the user has no goal in that category.
func (db *DB) GoalByCategory(userID int64, category string) (*models.Goal, error) {
	row := db.conn.QueryRow(
		"SELECT "+goalColumns+" FROM goals WHERE user_id = ? AND category = ? ORDER BY id LIMIT 1",
		userID, category,
	)

	var g models.Goal
	if err := scanGoal(row, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func scanGoal(row rowScanner, g *models.Goal) error {
	var targetDate, completedAt sql.NullTime
	if err := row.Scan(&g.ID, &g.UserID, &g.Category, &g.Title, &g.Description,
		&g.TargetValue, &g.CurrentValue, &g.Unit, &targetDate, &g.CreatedAt, &g.UpdatedAt,
		&g.IsCompleted, &completedAt, &g.CompletionNotes); err != nil {
		return err
	}
	if targetDate.Valid {
		g.TargetDate = targetDate.Time
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// CreateSession creates a new session for a user. The session's duration is
// stored so renewals can extend it by the same amount.
func (db *DB) CreateSession(token string, userID int64, duration time.Duration) error {
	now := time.Now().UTC()
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, user_id, duration_seconds, expires_at, last_activity) VALUES (?, ?, ?, ?, ?)",
		token, userID, int64(duration.Seconds()), now.Add(duration), now,
	)
	return err
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	Duration     time.Duration
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated user.
func (db *DB) ValidateSession(token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
func (db *DB) ValidateSessionWithInfo(token string) (*SessionInfo, error) {
	row := db.conn.QueryRow(`
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at, s.duration_seconds, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > CURRENT_TIMESTAMP
	`, token)

	var u models.User
	var durationSeconds int64
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &durationSeconds, &lastActivity, &expiresAt); err != nil {
		return nil, err
	}
	return &SessionInfo{
		User:         &u,
		Duration:     time.Duration(durationSeconds) * time.Second,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(token string, newExpiresAt time.Time) error {
	now := time.Now().UTC()
	_, err := db.conn.Exec(
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		now, newExpiresAt, token,
	)
	return err
}

// DeleteSession removes a session by token.
func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// CleanExpiredSessions removes all expired sessions.
func (db *DB) CleanExpiredSessions() error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	return err
}
