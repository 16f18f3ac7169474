package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sankat-mitra/api/config"
	"github.com/sankat-mitra/api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	// Build DSN (Data Source Name)
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.GO_ENV == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Println("Unable to connect to PostgreSQL with GORM:", err)
		return nil, err
	}

	// Connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Println("Running GORM AutoMigrate for all models...")

	err := s.db.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return err
	}

	log.Println("GORM AutoMigrate completed successfully!")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Println("Closing GORM PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// UpsertUser creates the user row or refreshes the mirrored profile fields.
func (s *GORMStore) UpsertUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "language", "updated_at"}),
	}).Create(user).Error
}

func (s *GORMStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GORMStore) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&model.User{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GORMStore) SetCurrentSession(ctx context.Context, userID, sessionID string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("current_session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GORMStore) CreateSession(ctx context.Context, session *model.ChatSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *GORMStore) GetSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (s *GORMStore) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *GORMStore) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	res := s.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{"title": title, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GORMStore) TouchSession(ctx context.Context, userID, sessionID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.ChatSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{"last_message_at": at, "updated_at": at}).Error
}

func (s *GORMStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.ChatSession{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendMessage writes one message. Seq and Timestamp are assigned under a
// transaction holding the previous tail row, so both are strictly greater
// than the prior message's even when two devices append at once.
func (s *GORMStore) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last model.ChatMessage
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ?", msg.SessionID).
			Order("seq DESC").
			First(&last).Error

		now := time.Now().UTC()
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			msg.Seq = 1
			msg.Timestamp = now
		case err != nil:
			return err
		default:
			msg.Seq = last.Seq + 1
			msg.Timestamp = now
			if !now.After(last.Timestamp) {
				msg.Timestamp = last.Timestamp.Add(time.Microsecond)
			}
		}

		return tx.Create(msg).Error
	})
}

func (s *GORMStore) ListMessages(ctx context.Context, userID, sessionID string) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}

func (s *GORMStore) CountMessages(ctx context.Context, userID, sessionID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	return count, err
}

// DeleteMessageBatch removes at most limit messages in one round. Postgres
// DELETE has no LIMIT, so the batch is selected by id in a subquery. Message
// rows carry no soft-delete column, so the rows go away for real and free
// their (session_id, seq) slots in the unique index.
func (s *GORMStore) DeleteMessageBatch(ctx context.Context, userID, sessionID string, limit int) (int64, error) {
	sub := s.db.Model(&model.ChatMessage{}).
		Select("id").
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("seq ASC").
		Limit(limit)

	res := s.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Delete(&model.ChatMessage{})
	return res.RowsAffected, res.Error
}

func (s *GORMStore) RecordCronJobLog(ctx context.Context, entry *model.CronJobLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GORMStore) PurgeCronJobLogs(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Delete(&model.CronJobLog{})
	return res.RowsAffected, res.Error
}
