package store

import (
	"context"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/cockroachdb/errors"
)

const TournamentsCollection = "tournaments"

// clearable are the optional top-level fields that can go back to absent. The
// update of a merged document must name them explicitly to clear them.
var clearable = []string{"winner", "secondPlace", "thirdPlace", "publicId"}

// TournamentStore maps the tournament aggregate onto a document store.
type TournamentStore struct {
	docs DocumentStore
}

func NewTournamentStore(docs DocumentStore) *TournamentStore {
	return &TournamentStore{docs: docs}
}

// Save creates the document on first save and binds the new id onto t;
// afterwards it updates the document in place.
func (s *TournamentStore) Save(ctx context.Context, t *bracket.Tournament) error {
	payload, err := stripAbsent(t)
	if err != nil {
		return err
	}

	if t.ID == "" {
		id, err := s.docs.Create(ctx, TournamentsCollection, payload)
		if err != nil {
			return err
		}
		t.ID = id
		return nil
	}

	for _, key := range clearable {
		if _, ok := payload[key]; !ok {
			payload[key] = nil
		}
	}
	return s.docs.Update(ctx, TournamentsCollection, t.ID, payload)
}

func (s *TournamentStore) Get(ctx context.Context, id string) (*bracket.Tournament, error) {
	rec, err := s.docs.GetByID(ctx, TournamentsCollection, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, errors.Wrapf(bracket.ErrTournamentNotFound, "id %q", id)
		}
		return nil, err
	}
	return decodeTournament(*rec)
}

func (s *TournamentStore) FindByPublicID(ctx context.Context, publicID string) (*bracket.Tournament, error) {
	recs, err := s.docs.QueryByField(ctx, publicQuery(publicID))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.Wrapf(bracket.ErrTournamentNotFound, "public id %q", publicID)
	}
	return decodeTournament(recs[0])
}

// ListByOwner returns the owner's tournaments, most recently updated first.
func (s *TournamentStore) ListByOwner(ctx context.Context, ownerID string) ([]*bracket.Tournament, error) {
	recs, err := s.docs.QueryByField(ctx, Query{Collection: TournamentsCollection, Field: "ownerId", Value: ownerID})
	if err != nil {
		return nil, err
	}

	tournaments := make([]*bracket.Tournament, 0, len(recs))
	for _, rec := range recs {
		t, err := decodeTournament(rec)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, nil
}

// WatchPublic pushes the published tournament to onChange now and after every
// save. onChange gets nil once nothing is published under publicID.
func (s *TournamentStore) WatchPublic(ctx context.Context, publicID string, onChange func(*bracket.Tournament)) (func(), error) {
	return s.docs.Subscribe(ctx, publicQuery(publicID), func(recs []Record) {
		if len(recs) == 0 {
			onChange(nil)
			return
		}
		t, err := decodeTournament(recs[0])
		if err != nil {
			logging.Warn("undecodable published tournament", "public_id", publicID, "error", err)
			onChange(nil)
			return
		}
		onChange(t)
	})
}

func publicQuery(publicID string) Query {
	return Query{Collection: TournamentsCollection, Field: "publicId", Value: publicID}
}

func decodeTournament(rec Record) (*bracket.Tournament, error) {
	var t bracket.Tournament
	if err := rec.Decode(&t); err != nil {
		return nil, err
	}
	t.ID = rec.ID
	return &t, nil
}
