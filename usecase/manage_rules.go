package usecase

import (
	"context"

	"history-server/domain"
	"history-server/normalize"
	"history-server/port"
)

// ManageRulesUsecase exposes normalization-rule administration. Every
// mutation refreshes the normalizer so rule changes take effect without a
// restart.
type ManageRulesUsecase struct {
	rules      port.RuleRepository
	normalizer *normalize.Normalizer
}

func NewManageRulesUsecase(rules port.RuleRepository, normalizer *normalize.Normalizer) *ManageRulesUsecase {
	return &ManageRulesUsecase{
		rules:      rules,
		normalizer: normalizer,
	}
}

func (u *ManageRulesUsecase) List(ctx context.Context) ([]domain.NormalizationRule, error) {
	return u.rules.ListAll(ctx)
}

func (u *ManageRulesUsecase) Create(ctx context.Context, input port.CreateRuleInput) (*domain.NormalizationRule, error) {
	if input.Pattern == "" {
		return nil, &domain.InvalidQueryError{Reason: "pattern is required"}
	}
	if input.Replacement == "" {
		return nil, &domain.InvalidQueryError{Reason: "replacement is required"}
	}
	if err := normalize.ValidatePattern(input.Pattern); err != nil {
		return nil, &domain.InvalidQueryError{Reason: err.Error()}
	}

	rule, err := u.rules.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	u.refresh()
	return rule, nil
}

func (u *ManageRulesUsecase) Update(ctx context.Context, id int32, input port.UpdateRuleInput) (*domain.NormalizationRule, error) {
	if input.Pattern != nil {
		if err := normalize.ValidatePattern(*input.Pattern); err != nil {
			return nil, &domain.InvalidQueryError{Reason: err.Error()}
		}
	}

	rule, err := u.rules.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		u.refresh()
	}
	return rule, nil
}

func (u *ManageRulesUsecase) Delete(ctx context.Context, id int32) (bool, error) {
	deleted, err := u.rules.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		u.refresh()
	}
	return deleted, nil
}

// TestRule applies a candidate pattern/replacement to a URL without
// persisting anything.
func (u *ManageRulesUsecase) TestRule(pattern, replacement, testURL string) (*domain.NormalizationResult, error) {
	result, err := normalize.TestRule(pattern, replacement, testURL)
	if err != nil {
		return nil, &domain.InvalidQueryError{Reason: err.Error()}
	}
	return result, nil
}

func (u *ManageRulesUsecase) refresh() {
	if u.normalizer != nil {
		u.normalizer.Refresh()
	}
}
