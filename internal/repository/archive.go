package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rocketscienceinc/gridmatch-backend/internal/apperror"
	"github.com/rocketscienceinc/gridmatch-backend/internal/entity"
)

type ArchiveRepository interface {
	Migrate(ctx context.Context) error
	Save(ctx context.Context, record *entity.MatchRecord) error
	GetByGameID(ctx context.Context, gameID string) (*entity.MatchRecord, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.MatchRecord, error)
}

type matchRecordRow struct {
	GameID       string `gorm:"primaryKey;size:64"`
	Player1ID    string `gorm:"size:64;index"`
	Player2ID    string `gorm:"size:64;index"`
	Player1Score int
	Player2Score int
	Result       string `gorm:"size:16"`
	WinnerID     string `gorm:"size:64"`
	ConcededBy   string `gorm:"size:64"`
	MoveCount    int
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   time.Time
}

func (matchRecordRow) TableName() string {
	return "match_records"
}

type dbArchive struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &dbArchive{
		db: db,
	}
}

func (that *dbArchive) Migrate(ctx context.Context) error {
	if err := that.db.WithContext(ctx).AutoMigrate(&matchRecordRow{}); err != nil {
		return fmt.Errorf("can't migrate match records: %w", err)
	}

	return nil
}

// Save inserts record once; archiving the same game again is a no-op.
func (that *dbArchive) Save(ctx context.Context, record *entity.MatchRecord) error {
	row := toRow(record)

	err := that.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "game_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return storageErr("save match record", err)
	}

	return nil
}

func (that *dbArchive) GetByGameID(ctx context.Context, gameID string) (*entity.MatchRecord, error) {
	var row matchRecordRow

	err := that.db.WithContext(ctx).First(&row, "game_id = ?", gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, storageErr("get match record", err)
	}

	return fromRow(&row), nil
}

// ListByPlayer returns archived matches of playerID, most recent first.
func (that *dbArchive) ListByPlayer(ctx context.Context, playerID string) ([]*entity.MatchRecord, error) {
	var rows []matchRecordRow

	err := that.db.WithContext(ctx).
		Where("player1_id = ? OR player2_id = ?", playerID, playerID).
		Order("started_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("list match records", err)
	}

	records := make([]*entity.MatchRecord, 0, len(rows))
	for i := range rows {
		records = append(records, fromRow(&rows[i]))
	}

	return records, nil
}

func toRow(record *entity.MatchRecord) matchRecordRow {
	return matchRecordRow{
		GameID:       record.GameID,
		Player1ID:    record.Player1ID,
		Player2ID:    record.Player2ID,
		Player1Score: record.Player1Score,
		Player2Score: record.Player2Score,
		Result:       record.Result,
		WinnerID:     record.WinnerID,
		ConcededBy:   record.ConcededBy,
		MoveCount:    record.MoveCount,
		StartedAt:    record.StartedAt.UTC(),
		FinishedAt:   record.FinishedAt.UTC(),
	}
}

func fromRow(row *matchRecordRow) *entity.MatchRecord {
	return &entity.MatchRecord{
		GameID:       row.GameID,
		Player1ID:    row.Player1ID,
		Player2ID:    row.Player2ID,
		Player1Score: row.Player1Score,
		Player2Score: row.Player2Score,
		Result:       row.Result,
		WinnerID:     row.WinnerID,
		ConcededBy:   row.ConcededBy,
		MoveCount:    row.MoveCount,
		StartedAt:    row.StartedAt.UTC(),
		FinishedAt:   row.FinishedAt.UTC(),
	}
}
