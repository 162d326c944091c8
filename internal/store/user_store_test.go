package store

import (
	"context"
	"testing"

	users "github.com/AdamBeresnev/toilescoins/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	ctx := context.Background()

	admin, err := s.GetUser(ctx, users.SuperUserID)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	for _, name := range []string{"Maxime", "marie", "Paul", "Ma_x"} {
		require.NoError(t, s.CreateUser(ctx, &users.User{ID: "u-" + name, DisplayName: name}))
	}

	found, err := s.FindUsersByNamePrefix(ctx, "ma", 10)
	require.NoError(t, err)
	var names []string
	for _, u := range found {
		names = append(names, u.DisplayName)
	}
	assert.Equal(t, []string{"Ma_x", "marie", "Maxime"}, names)

	found, err = s.FindUsersByNamePrefix(ctx, "ma_", 10)
	require.NoError(t, err)
	require.Len(t, found, 1, "underscore is literal")

	found, err = s.FindUsersByNamePrefix(ctx, "zz", 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserStoreLedger(t *testing.T) {
	s := NewUserStore(setupTestDB(t))
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &users.User{ID: "u1", DisplayName: "Winner"}))

	require.NoError(t, s.CreditAccount(ctx, "u1", 500, "tournament t1: 1st place"))
	require.NoError(t, s.CreditAccount(ctx, "u1", 150, "tournament t2: 3rd place"))
	require.NoError(t, s.RecordWin(ctx, "u1"))
	require.NoError(t, s.RecordParticipation(ctx, "u1"))
	require.NoError(t, s.RecordParticipation(ctx, "u1"))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 650, u.Coins)
	assert.Equal(t, 1, u.Wins)
	assert.Equal(t, 2, u.Participations)

	txs, err := s.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.EqualValues(t, 500, txs[0].Amount)
	assert.Equal(t, "tournament t2: 3rd place", txs[1].Reason)

	assert.ErrorIs(t, s.CreditAccount(ctx, "ghost", 10, "nope"), ErrUserNotFound)
	assert.ErrorIs(t, s.RecordWin(ctx, "ghost"), ErrUserNotFound)
}
