package bracket

import (
	stderrors "errors"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestCategoriesVisibleToBothIs(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		category error
	}{
		{name: "sentinel", err: ErrNotEnoughPlayers, category: ErrValidation},
		{name: "wrapped", err: errors.Wrapf(ErrKnockoutTie, "match %q", "m1"), category: ErrValidation},
		{name: "wrapped twice", err: errors.Wrap(errors.Wrapf(ErrMatchNotFound, "match %q", "m9"), "score"), category: ErrNotFound},
		{name: "nested category", err: MarkCategory(errors.New("cycle"), ErrBrokenLink), category: ErrValidation},
		{name: "ad hoc", err: MarkCategory(errors.New("request body is empty"), ErrValidation), category: ErrValidation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tc.err, tc.category))
			assert.True(t, errors.Is(tc.err, tc.category))
			assert.False(t, stderrors.Is(tc.err, ErrForbidden))
			assert.False(t, errors.Is(tc.err, ErrForbidden))
		})
	}
}

func TestMarkCategoryKeepsMessage(t *testing.T) {
	err := MarkCategory(errors.New("disk full"), ErrNotFound)
	assert.Equal(t, "disk full", err.Error())
	assert.Nil(t, MarkCategory(nil, ErrNotFound))
}
