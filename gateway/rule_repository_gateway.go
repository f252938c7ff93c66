package gateway

import (
	"context"

	"history-server/domain"
	"history-server/driver"
	"history-server/port"
)

// RuleDriver is the database driver for normalization rules.
type RuleDriver interface {
	ListRules(ctx context.Context, enabledOnly bool) ([]driver.RuleModel, error)
	CreateRule(ctx context.Context, pattern, replacement string, enabled bool, orderIndex *int32) (*driver.RuleModel, error)
	UpdateRule(ctx context.Context, id int32, pattern, replacement *string, enabled *bool, orderIndex *int32) (*driver.RuleModel, error)
	DeleteRule(ctx context.Context, id int32) (bool, error)
}

// RuleRepositoryGateway adapts the rule driver to the domain and wraps
// its failures as RepositoryError.
type RuleRepositoryGateway struct {
	driver RuleDriver
}

func NewRuleRepositoryGateway(d RuleDriver) *RuleRepositoryGateway {
	return &RuleRepositoryGateway{driver: d}
}

func (g *RuleRepositoryGateway) ListEnabled(ctx context.Context) ([]domain.NormalizationRule, error) {
	models, err := g.driver.ListRules(ctx, true)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListEnabled", Err: err.Error()}
	}
	return convertRules(models), nil
}

func (g *RuleRepositoryGateway) ListAll(ctx context.Context) ([]domain.NormalizationRule, error) {
	models, err := g.driver.ListRules(ctx, false)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "ListAll", Err: err.Error()}
	}
	return convertRules(models), nil
}

func (g *RuleRepositoryGateway) Create(ctx context.Context, input port.CreateRuleInput) (*domain.NormalizationRule, error) {
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	model, err := g.driver.CreateRule(ctx, input.Pattern, input.Replacement, enabled, input.OrderIndex)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "Create", Err: err.Error()}
	}
	rule := convertRule(*model)
	return &rule, nil
}

func (g *RuleRepositoryGateway) Update(ctx context.Context, id int32, input port.UpdateRuleInput) (*domain.NormalizationRule, error) {
	model, err := g.driver.UpdateRule(ctx, id, input.Pattern, input.Replacement, input.Enabled, input.OrderIndex)
	if err != nil {
		return nil, &domain.RepositoryError{Op: "Update", Err: err.Error()}
	}
	if model == nil {
		return nil, nil
	}
	rule := convertRule(*model)
	return &rule, nil
}

func (g *RuleRepositoryGateway) Delete(ctx context.Context, id int32) (bool, error) {
	deleted, err := g.driver.DeleteRule(ctx, id)
	if err != nil {
		return false, &domain.RepositoryError{Op: "Delete", Err: err.Error()}
	}
	return deleted, nil
}

func convertRules(models []driver.RuleModel) []domain.NormalizationRule {
	rules := make([]domain.NormalizationRule, len(models))
	for i, m := range models {
		rules[i] = convertRule(m)
	}
	return rules
}

func convertRule(m driver.RuleModel) domain.NormalizationRule {
	return domain.NormalizationRule{
		ID:          m.ID,
		Pattern:     m.Pattern,
		Replacement: m.Replacement,
		Enabled:     m.Enabled,
		OrderIndex:  m.OrderIndex,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
