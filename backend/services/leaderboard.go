package services

import (
	"context"
	"fmt"
	"strconv"

	"learntube/backend/models"
	"learntube/backend/utils"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leaderboardKey = "leaderboard:xp"

// LeaderboardService ranks learners by XP. A Redis sorted set serves reads
// when available; the database is always the source of truth and the
// fallback, so a missing or failing Redis never breaks the feature.
type LeaderboardService struct {
	DB    *gorm.DB
	Redis *redis.Client // nil disables the cache
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Redis: rdb}
}

type LeaderboardEntry struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
	Rank   int    `json:"rank"`
}

// Record refreshes a learner's cached score after an XP change.
func (ls *LeaderboardService) Record(ctx context.Context, userID uint, xp int) error {
	if ls.Redis == nil {
		return nil
	}

	return ls.Redis.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(xp),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
}

// Top returns the highest-XP learners, best first.
func (ls *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if ls.Redis != nil {
		entries, err := ls.topFromCache(ctx, limit)
		if err == nil {
			return entries, nil
		}
		// Cache miss or Redis trouble: fall through to the database.
	}

	return ls.topFromDB(limit)
}

func (ls *LeaderboardService) topFromCache(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	scores, err := ls.Redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("leaderboard cache is empty")
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, z := range scores {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}

		var user models.User
		if err := ls.DB.Select("id", "name", "avatar").First(&user, uint(id)).Error; err != nil {
			continue
		}

		xp := int(z.Score)
		entries = append(entries, LeaderboardEntry{
			UserID: user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
			XP:     xp,
			Level:  xp/100 + 1,
			Rank:   i + 1,
		})
	}

	return entries, nil
}

func (ls *LeaderboardService) topFromDB(limit int) ([]LeaderboardEntry, error) {
	var users []models.User
	if err := ls.DB.Order("xp DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %v: %w", err, utils.ErrPersistence)
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, LeaderboardEntry{
			UserID: user.ID,
			Name:   user.Name,
			Avatar: user.Avatar,
			XP:     user.XP,
			Level:  user.Level,
			Rank:   i + 1,
		})
	}

	return entries, nil
}
