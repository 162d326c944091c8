package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/config"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Ledger is the points collaborator credited when a tournament completes.
type Ledger interface {
	CreditAccount(ctx context.Context, userID string, amount int64, reason string) error
	RecordWin(ctx context.Context, userID string) error
	RecordParticipation(ctx context.Context, userID string) error
}

// ErrRewardsFailed reports a completed tournament whose podium was not
// fully paid. It is not retried.
var ErrRewardsFailed = errors.New("tournament completed but rewards were not fully disbursed")

type placement struct {
	player *bracket.Player
	place  string
	amount int64
	win    bool
}

// disburseRewards pays every registered podium player in parallel: coins for
// the place, a participation for all three and a win for the champion.
func disburseRewards(ctx context.Context, ledger Ledger, rewards config.Rewards, tournament *bracket.Tournament, podium bracket.Podium) error {
	places := []placement{
		{player: podium.Winner, place: "1st", amount: rewards.First, win: true},
		{player: podium.SecondPlace, place: "2nd", amount: rewards.Second},
		{player: podium.ThirdPlace, place: "3rd", amount: rewards.Third},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range places {
		if p.player == nil || !p.player.IsRegistered || p.player.UserID == nil {
			continue
		}
		userID := *p.player.UserID
		reason := fmt.Sprintf("%s place in %s", p.place, tournament.Name)

		g.Go(func() error {
			if p.amount > 0 {
				if err := ledger.CreditAccount(ctx, userID, p.amount, reason); err != nil {
					return errors.Wrapf(err, "credit %s", userID)
				}
			}
			if p.win {
				if err := ledger.RecordWin(ctx, userID); err != nil {
					return errors.Wrapf(err, "record win for %s", userID)
				}
			}
			if err := ledger.RecordParticipation(ctx, userID); err != nil {
				return errors.Wrapf(err, "record participation for %s", userID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return bracket.MarkCategory(errors.Wrap(err, "disburse rewards"), ErrRewardsFailed)
	}
	return nil
}
