package port

import (
	"context"

	"history-server/domain"
)

// CreateRuleInput carries the fields for a new normalization rule.
// Enabled defaults to true and OrderIndex to last when nil.
type CreateRuleInput struct {
	Pattern     string
	Replacement string
	Enabled     *bool
	OrderIndex  *int32
}

// UpdateRuleInput carries a partial rule update; nil fields keep their
// current value.
type UpdateRuleInput struct {
	Pattern     *string
	Replacement *string
	Enabled     *bool
	OrderIndex  *int32
}

// RuleRepository stores URL normalization rules.
type RuleRepository interface {
	// ListEnabled returns enabled rules ordered by order_index.
	ListEnabled(ctx context.Context) ([]domain.NormalizationRule, error)
	// ListAll returns every rule, disabled ones included, for admin views.
	ListAll(ctx context.Context) ([]domain.NormalizationRule, error)
	Create(ctx context.Context, input CreateRuleInput) (*domain.NormalizationRule, error)
	// Update returns nil when no rule exists with the given id.
	Update(ctx context.Context, id int32, input UpdateRuleInput) (*domain.NormalizationRule, error)
	// Delete reports whether a rule was removed.
	Delete(ctx context.Context, id int32) (bool, error)
}
