package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	apperrors "bodybae/errors"
)

// PostgresStore persists everything in PostgreSQL through the stdlib driver.
type PostgresStore struct {
	DB       *sql.DB
	logger   *zap.Logger
	maxTurns int
}

// NewPostgresStore opens and pings the database. Conversation history is
// trimmed to maxTurns entries per user.
func NewPostgresStore(connStr string, maxTurns int, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, apperrors.WrapError(err, "open database")
	}
	if err := db.Ping(); err != nil {
		return nil, apperrors.WrapError(err, "ping database")
	}
	if maxTurns <= 0 {
		maxTurns = 20
	}
	logger.Info("Successfully connected to the database")
	return &PostgresStore{DB: db, logger: logger, maxTurns: maxTurns}, nil
}

// EnsureSchema creates the required tables if they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            age INT NOT NULL,
            sex TEXT NOT NULL,
            height_cm DOUBLE PRECISION NOT NULL,
            weight_kg DOUBLE PRECISION NOT NULL,
            activity_level TEXT NOT NULL,
            goal TEXT DEFAULT '',
            bmi DOUBLE PRECISION NOT NULL,
            bmi_category TEXT NOT NULL,
            bmr INT NOT NULL,
            tdee INT NOT NULL,
            protein_target_g DOUBLE PRECISION NOT NULL,
            water_target_ml INT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS conversation_turns (
            id BIGSERIAL PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_turns_user_created ON conversation_turns(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS goals (
            user_id TEXT PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
            goal_type TEXT NOT NULL,
            target_weeks INT NOT NULL,
            start_weight_kg DOUBLE PRECISION NOT NULL,
            target_weight_kg DOUBLE PRECISION NOT NULL,
            start_date TIMESTAMPTZ NOT NULL,
            completed BOOLEAN DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS progress_logs (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
            logged_at TIMESTAMPTZ NOT NULL,
            weight_kg DOUBLE PRECISION,
            workout TEXT DEFAULT '',
            calories INT,
            notes TEXT DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user_logged ON progress_logs(user_id, logged_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return apperrors.WrapError(err, "execute schema statement")
		}
	}
	return nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, profile *Profile) error {
	query := `
        INSERT INTO profiles (id, name, age, sex, height_cm, weight_kg, activity_level, goal,
            bmi, bmi_category, bmr, tdee, protein_target_g, water_target_ml, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            age = EXCLUDED.age,
            sex = EXCLUDED.sex,
            height_cm = EXCLUDED.height_cm,
            weight_kg = EXCLUDED.weight_kg,
            activity_level = EXCLUDED.activity_level,
            goal = EXCLUDED.goal,
            bmi = EXCLUDED.bmi,
            bmi_category = EXCLUDED.bmi_category,
            bmr = EXCLUDED.bmr,
            tdee = EXCLUDED.tdee,
            protein_target_g = EXCLUDED.protein_target_g,
            water_target_ml = EXCLUDED.water_target_ml
    `
	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.DB.ExecContext(ctx, query,
		profile.ID, profile.Name, profile.Age, profile.Sex, profile.HeightCm, profile.WeightKg,
		profile.ActivityLevel, profile.Goal, profile.BMI, profile.BMICategory, profile.BMR,
		profile.TDEE, profile.ProteinTargetG, profile.WaterTargetML, createdAt)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `
        SELECT id, name, age, sex, height_cm, weight_kg, activity_level, goal,
            bmi, bmi_category, bmr, tdee, protein_target_g, water_target_ml, created_at
        FROM profiles WHERE id = $1
    `
	var profile Profile
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID, &profile.Name, &profile.Age, &profile.Sex, &profile.HeightCm,
		&profile.WeightKg, &profile.ActivityLevel, &profile.Goal, &profile.BMI,
		&profile.BMICategory, &profile.BMR, &profile.TDEE, &profile.ProteinTargetG,
		&profile.WaterTargetML, &profile.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "profile %s", userID)
	}
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return &profile, nil
}

func (s *PostgresStore) CountProfiles(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return count, nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	defer tx.Rollback()

	insert := `INSERT INTO conversation_turns (user_id, role, content, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insert, userID, turn.Role, turn.Content, turn.Timestamp); err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}

	trim := `
        DELETE FROM conversation_turns
        WHERE user_id = $1 AND id NOT IN (
            SELECT id FROM conversation_turns
            WHERE user_id = $1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        )
    `
	if _, err := tx.ExecContext(ctx, trim, userID, s.maxTurns); err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}

	if err := tx.Commit(); err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}

func (s *PostgresStore) RecentTurns(ctx context.Context, userID string, n int) ([]Turn, error) {
	if n <= 0 {
		n = s.maxTurns
	}
	query := `
        SELECT role, content, created_at FROM (
            SELECT role, content, created_at FROM conversation_turns
            WHERE user_id = $1
            ORDER BY created_at DESC, id DESC
            LIMIT $2
        ) recent ORDER BY created_at ASC
    `
	rows, err := s.DB.QueryContext(ctx, query, userID, n)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.Role, &turn.Content, &turn.Timestamp); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

func (s *PostgresStore) SaveGoal(ctx context.Context, goal *Goal) error {
	query := `
        INSERT INTO goals (user_id, goal_type, target_weeks, start_weight_kg, target_weight_kg, start_date, completed)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id) DO UPDATE SET
            goal_type = EXCLUDED.goal_type,
            target_weeks = EXCLUDED.target_weeks,
            start_weight_kg = EXCLUDED.start_weight_kg,
            target_weight_kg = EXCLUDED.target_weight_kg,
            start_date = EXCLUDED.start_date,
            completed = EXCLUDED.completed
    `
	_, err := s.DB.ExecContext(ctx, query, goal.UserID, goal.Type, goal.TargetWeeks,
		goal.StartWeightKg, goal.TargetWeightKg, goal.StartDate, goal.Completed)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}

func (s *PostgresStore) GetGoal(ctx context.Context, userID string) (*Goal, error) {
	query := `
        SELECT user_id, goal_type, target_weeks, start_weight_kg, target_weight_kg, start_date, completed
        FROM goals WHERE user_id = $1
    `
	var goal Goal
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(
		&goal.UserID, &goal.Type, &goal.TargetWeeks, &goal.StartWeightKg,
		&goal.TargetWeightKg, &goal.StartDate, &goal.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.WrapErrorf(apperrors.ErrNotFound, "goal for %s", userID)
	}
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return &goal, nil
}

func (s *PostgresStore) AddProgressLog(ctx context.Context, entry *ProgressLog) error {
	query := `
        INSERT INTO progress_logs (id, user_id, logged_at, weight_kg, workout, calories, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := s.DB.ExecContext(ctx, query, entry.ID, entry.UserID, entry.LoggedAt,
		entry.WeightKg, entry.Workout, entry.Calories, entry.Notes)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	return nil
}

func (s *PostgresStore) ProgressLogs(ctx context.Context, userID string, since time.Time) ([]ProgressLog, error) {
	query := `
        SELECT id, user_id, logged_at, weight_kg, workout, calories, notes
        FROM progress_logs
        WHERE user_id = $1 AND logged_at >= $2
        ORDER BY logged_at DESC
    `
	rows, err := s.DB.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
	}
	defer rows.Close()

	var logs []ProgressLog
	for rows.Next() {
		var entry ProgressLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.LoggedAt,
			&entry.WeightKg, &entry.Workout, &entry.Calories, &entry.Notes); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrDatabaseOperation, err.Error())
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
