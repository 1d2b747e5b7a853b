package service

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/postdesk/internal/domain"
	internal_errors "github.com/itchan-dev/postdesk/internal/errors"
)

// PostValidator checks a draft and returns its normalized (trimmed) form.
type PostValidator interface {
	Draft(draft domain.PostDraft) (domain.PostDraft, error)
}

type draftInput struct {
	Title    string `validate:"required"`
	Content  string `validate:"required"`
	Category string `validate:"required,ne=all"`
}

type DraftValidator struct {
	validate   *validator.Validate
	categories []domain.Category
}

// NewDraftValidator accepts any category when categories is empty.
func NewDraftValidator(categories []domain.Category) *DraftValidator {
	return &DraftValidator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		categories: slices.Clone(categories),
	}
}

func (v *DraftValidator) Draft(draft domain.PostDraft) (domain.PostDraft, error) {
	in := draftInput{
		Title:    strings.TrimSpace(draft.Title),
		Content:  strings.TrimSpace(draft.Content),
		Category: strings.TrimSpace(draft.Category),
	}
	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && !slices.ContainsFunc(fieldErrs, isTextField) {
			return domain.PostDraft{}, fmt.Errorf("%w: choose a category", internal_errors.InvalidInput)
		}
		return domain.PostDraft{}, fmt.Errorf("%w: please enter both a title and content", internal_errors.InvalidInput)
	}
	if len(v.categories) > 0 && !slices.Contains(v.categories, in.Category) {
		return domain.PostDraft{}, fmt.Errorf("%w: unknown category %q", internal_errors.InvalidInput, in.Category)
	}
	return domain.PostDraft{Title: in.Title, Content: in.Content, Category: in.Category}, nil
}

func isTextField(fe validator.FieldError) bool {
	return fe.Field() == "Title" || fe.Field() == "Content"
}
