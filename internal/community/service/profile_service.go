package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-stock-circle/internal/community/dto"
	"golang-stock-circle/internal/community/repository"
	"golang-stock-circle/internal/entity"
	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileService manages profiles and the follow graph.
type ProfileService interface {
	GetProfile(ctx context.Context, viewerID, userID uint) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
	Follow(ctx context.Context, followerID, followingID uint) error
	Unfollow(ctx context.Context, followerID, followingID uint) error
	ListFollowers(ctx context.Context, userID uint) ([]dto.UserResponse, error)
	ListFollowing(ctx context.Context, userID uint) ([]dto.UserResponse, error)
}

func NewProfileService(users repository.UserRepository, follows repository.FollowRepository, bcryptCost int, log *logger.Logger) ProfileService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &profileService{users: users, follows: follows, bcryptCost: bcryptCost, logger: log}
}

type profileService struct {
	users      repository.UserRepository
	follows    repository.FollowRepository
	bcryptCost int
	logger     *logger.Logger
}

func (s *profileService) GetProfile(ctx context.Context, viewerID, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}

	resp := &dto.ProfileResponse{UserResponse: toUserResponse(user)}
	if resp.FollowersCount, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if resp.FollowingCount, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return nil, err
	}

	if viewerID != 0 && viewerID != userID {
		if resp.IsFollowing, err = s.follows.Exists(ctx, viewerID, userID); err != nil {
			return nil, err
		}
		followsBack, err := s.follows.Exists(ctx, userID, viewerID)
		if err != nil {
			return nil, err
		}
		resp.IsMutual = resp.IsFollowing && followsBack
	}
	return resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	fields := map[string]interface{}{}
	if req.DisplayName != nil {
		fields["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("user %d not found", userID)
			}
			s.logger.Error("Failed to update profile", logger.ErrorField(err), logger.UintField("user_id", userID))
			return nil, err
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return lookupErr(err, "user", userID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return apperror.Validation("current password is incorrect")
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
}

func (s *profileService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return apperror.Validation("you cannot follow yourself")
	}
	if _, err := s.users.FindByID(ctx, followingID); err != nil {
		return lookupErr(err, "user", followingID)
	}

	err := s.follows.Create(ctx, &entity.Follow{FollowerID: followerID, FollowingID: followingID})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("already following user %d", followingID)
		}
		s.logger.Error("Failed to follow user", logger.ErrorField(err),
			logger.UintField("follower_id", followerID), logger.UintField("following_id", followingID))
		return err
	}
	return nil
}

func (s *profileService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	n, err := s.follows.Delete(ctx, followerID, followingID)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("not following user %d", followingID)
	}
	return nil
}

func (s *profileService) ListFollowers(ctx context.Context, userID uint) ([]dto.UserResponse, error) {
	users, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponses(users), nil
}

func (s *profileService) ListFollowing(ctx context.Context, userID uint) ([]dto.UserResponse, error) {
	users, err := s.follows.ListFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponses(users), nil
}

func toUserResponses(users []entity.User) []dto.UserResponse {
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp
}
