package service

import (
	"context"
	"errors"
	"fmt"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"

	"gorm.io/gorm"
)

// lookupErr turns a missing row into a NotFound error and wraps anything else.
func lookupErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("find %s %d: %w", what, id, err)
}

// requireAdmin loads the user and fails with a Permission error unless they are an admin.
func requireAdmin(ctx context.Context, users repository.UserRepository, userID uint) (*entity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Permission("admin privileges required")
		}
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	if !user.IsAdmin {
		return nil, apperror.Permission("admin privileges required")
	}
	return user, nil
}

// TallySentiments folds grouped counts into a tally with percentages of total.
// A total of zero yields zero percentages.
func TallySentiments(rows []dto.SentimentCount) (dto.SentimentTally, int64) {
	var tally dto.SentimentTally
	for _, row := range rows {
		switch row.Sentiment {
		case entity.SentimentBullish:
			tally.Bullish += row.Count
		case entity.SentimentBearish:
			tally.Bearish += row.Count
		case entity.SentimentNeutral:
			tally.Neutral += row.Count
		}
	}
	total := tally.Bullish + tally.Bearish + tally.Neutral
	if total > 0 {
		tally.BullishPercent = percent(tally.Bullish, total)
		tally.BearishPercent = percent(tally.Bearish, total)
		tally.NeutralPercent = percent(tally.Neutral, total)
	}
	return tally, total
}

func percent(count, total int64) float64 {
	return float64(count) / float64(total) * 100
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}
