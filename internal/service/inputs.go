package service

import (
	"strings"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CreateTournamentInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Format          string `json:"format" validate:"required,oneof=elimination groups"`
	ThirdPlaceMatch bool   `json:"thirdPlaceMatch"`
}

// UpdateSettingsInput is a partial update; nil fields are left as they are.
type UpdateSettingsInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Format          *string `json:"format" validate:"omitempty,oneof=elimination groups"`
	ThirdPlaceMatch *bool   `json:"thirdPlaceMatch"`
}

// PlayerInput adds a registered user when UserID is set, a guest otherwise.
type PlayerInput struct {
	UserID string `json:"userId" validate:"omitempty,max=64"`
	Name   string `json:"name" validate:"required_without=UserID,max=50"`
}

type ScoreInput struct {
	Score1 *int `json:"score1" validate:"required,min=0"`
	Score2 *int `json:"score2" validate:"required,min=0"`
}

// validateInput trims string fields in place before checking v.
func validateInput(v any) error {
	switch in := v.(type) {
	case *CreateTournamentInput:
		in.Name = strings.TrimSpace(in.Name)
	case *UpdateSettingsInput:
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			in.Name = &name
		}
	case *PlayerInput:
		in.Name = strings.TrimSpace(in.Name)
		in.UserID = strings.TrimSpace(in.UserID)
	}

	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return bracket.MarkCategory(errors.Newf("%s", describe(fieldErrs)), bracket.ErrValidation)
		}
		return bracket.MarkCategory(err, bracket.ErrValidation)
	}
	return nil
}

func describe(fieldErrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_without":
			parts = append(parts, fe.Field()+" is required")
		case "max":
			parts = append(parts, fe.Field()+" must be at most "+fe.Param()+" characters")
		case "min":
			parts = append(parts, fe.Field()+" must be at least "+fe.Param())
		case "oneof":
			parts = append(parts, fe.Field()+" must be one of: "+fe.Param())
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
