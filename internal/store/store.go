// Package store records finished matches in postgres.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/td-sync/internal/engine"
)

type MatchResult struct {
	ID        string `gorm:"primaryKey;size:36"`
	Terrain   string `gorm:"size:64;not null"`
	StartedAt time.Time
	EndedAt   time.Time
	WinnerID  int
	Winner    string       `gorm:"size:64"`
	Teams     []TeamResult `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

type TeamResult struct {
	ID       uint   `gorm:"primaryKey"`
	MatchID  string `gorm:"size:36;index;not null"`
	TeamID   int
	Name     string `gorm:"size:64"`
	Lives    int
	Score    int
	Defeated bool
	Players  string `gorm:"size:512"` // comma separated display names
}

type Recorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open connects to dsn and migrates the result tables.
func Open(dsn string, log *zap.Logger) (*Recorder, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	return New(db, log)
}

// New uses an existing connection.
func New(db *gorm.DB, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&MatchResult{}, &TeamResult{}); err != nil {
		return nil, fmt.Errorf("migrate results: %w", err)
	}
	return &Recorder{db: db, log: log.Named("store")}, nil
}

// Record writes s and its teams in one transaction.
func (r *Recorder) Record(ctx context.Context, s engine.Summary) error {
	row := resultOf(s)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("record match %s: %w", s.MatchID, err)
	}
	r.log.Info("match recorded", zap.String("match", s.MatchID), zap.String("winner", row.Winner))
	return nil
}

func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func resultOf(s engine.Summary) MatchResult {
	names := make(map[engine.TeamID][]string)
	for _, p := range s.Players {
		if p.Team != 0 {
			names[p.Team] = append(names[p.Team], p.Name)
		}
	}

	row := MatchResult{
		ID:        s.MatchID,
		Terrain:   s.Terrain,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		WinnerID:  int(s.Winner),
	}
	for _, t := range s.Teams {
		if t.ID == s.Winner {
			row.Winner = t.Name
		}
		row.Teams = append(row.Teams, TeamResult{
			MatchID:  s.MatchID,
			TeamID:   int(t.ID),
			Name:     t.Name,
			Lives:    t.Lives,
			Score:    t.Score,
			Defeated: t.Defeated(),
			Players:  strings.Join(names[t.ID], ","),
		})
	}
	return row
}
