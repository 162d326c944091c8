package service

import (
	"context"

	"github.com/AdamBeresnev/toilescoins/internal/store"
	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/cockroachdb/errors"
)

const maxLookupResults = 10

type UserService struct {
	store *store.UserStore
}

func NewUserService(store *store.UserStore) *UserService {
	return &UserService{store: store}
}

// UserSummary is what the roster lookup exposes of an account.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func (s *UserService) FindUsersByNamePrefix(ctx context.Context, prefix string) ([]UserSummary, error) {
	found, err := s.store.FindUsersByNamePrefix(ctx, prefix, maxLookupResults)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(found))
	for _, u := range found {
		out = append(out, UserSummary{ID: u.ID, DisplayName: u.DisplayName})
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*users.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) IsAdmin(u *users.User) bool {
	return u != nil && u.IsAdmin
}

func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, users.GuestUserID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, store.ErrUserNotFound) {
		guestUser := &users.User{
			ID:          users.GuestUserID,
			DisplayName: "Guest",
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, err
		}
		return guestUser, nil
	}
	return nil, err
}
