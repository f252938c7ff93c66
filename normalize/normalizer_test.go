package normalize

import (
	"context"
	"testing"
	"time"

	"history-server/domain"
	"history-server/port"
)

type fakeRuleRepo struct {
	rules []domain.NormalizationRule
	calls int
	err   error
}

func (f *fakeRuleRepo) ListEnabled(ctx context.Context) ([]domain.NormalizationRule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func (f *fakeRuleRepo) ListAll(ctx context.Context) ([]domain.NormalizationRule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepo) Create(ctx context.Context, input port.CreateRuleInput) (*domain.NormalizationRule, error) {
	return nil, nil
}

func (f *fakeRuleRepo) Update(ctx context.Context, id int32, input port.UpdateRuleInput) (*domain.NormalizationRule, error) {
	return nil, nil
}

func (f *fakeRuleRepo) Delete(ctx context.Context, id int32) (bool, error) {
	return false, nil
}

func trackingRules() []domain.NormalizationRule {
	return []domain.NormalizationRule{
		{ID: 1, Pattern: `[?&]utm_[a-z]+=[^&]*`, Replacement: "", Enabled: true, OrderIndex: 0},
		{ID: 2, Pattern: `^https?://www\.`, Replacement: "https://", Enabled: true, OrderIndex: 1},
	}
}

func TestNormalizeFirstMatchingRuleWins(t *testing.T) {
	repo := &fakeRuleRepo{rules: trackingRules()}
	n := NewNormalizer(repo, time.Minute, nil)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"utm rule applies first", "https://www.example.com/p?utm_source=x", "https://www.example.com/p"},
		{"www rule when no utm", "https://www.example.com/p", "https://example.com/p"},
		{"no rule matches", "https://example.com/p", "https://example.com/p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(context.Background(), tt.url); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeDetailedReportsMatch(t *testing.T) {
	repo := &fakeRuleRepo{rules: trackingRules()}
	n := NewNormalizer(repo, time.Minute, nil)

	result, err := n.NormalizeDetailed(context.Background(), "https://www.example.com/")
	if err != nil {
		t.Fatalf("NormalizeDetailed() error = %v", err)
	}
	if !result.Matched {
		t.Error("Matched = false, want true")
	}
	if result.OriginalURL != "https://www.example.com/" || result.NormalizedURL != "https://example.com/" {
		t.Errorf("result = %+v", result)
	}

	result, err = n.NormalizeDetailed(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("NormalizeDetailed() error = %v", err)
	}
	if result.Matched {
		t.Error("Matched = true for non-matching URL, want false")
	}
}

func TestNormalizeSkipsInvalidPatterns(t *testing.T) {
	repo := &fakeRuleRepo{rules: []domain.NormalizationRule{
		{ID: 1, Pattern: "([unclosed", Replacement: "x", Enabled: true},
		{ID: 2, Pattern: `^http://`, Replacement: "https://", Enabled: true},
	}}
	n := NewNormalizer(repo, time.Minute, nil)

	if got := n.Normalize(context.Background(), "http://example.com/"); got != "https://example.com/" {
		t.Errorf("Normalize() = %q, want %q (invalid rule skipped)", got, "https://example.com/")
	}
}

func TestNormalizeRuleCacheTTL(t *testing.T) {
	repo := &fakeRuleRepo{rules: trackingRules()}
	n := NewNormalizer(repo, time.Minute, nil)

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return current }

	n.Normalize(context.Background(), "https://example.com/a")
	n.Normalize(context.Background(), "https://example.com/b")
	if repo.calls != 1 {
		t.Fatalf("repository loads within TTL = %d, want 1", repo.calls)
	}

	current = current.Add(2 * time.Minute)
	n.Normalize(context.Background(), "https://example.com/c")
	if repo.calls != 2 {
		t.Errorf("repository loads after TTL = %d, want 2", repo.calls)
	}
}

func TestNormalizeRefreshDropsCache(t *testing.T) {
	repo := &fakeRuleRepo{rules: trackingRules()}
	n := NewNormalizer(repo, time.Minute, nil)

	n.Normalize(context.Background(), "https://example.com/a")
	if repo.calls != 1 {
		t.Fatalf("repository loads = %d, want 1", repo.calls)
	}

	n.Refresh()
	n.Normalize(context.Background(), "https://example.com/b")
	if repo.calls != 2 {
		t.Errorf("repository loads after Refresh = %d, want 2", repo.calls)
	}
}

func TestNormalizeServesStaleRulesOnReloadFailure(t *testing.T) {
	repo := &fakeRuleRepo{rules: trackingRules()}
	n := NewNormalizer(repo, time.Minute, nil)

	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return current }

	if got := n.Normalize(context.Background(), "https://www.example.com/"); got != "https://example.com/" {
		t.Fatalf("Normalize() = %q", got)
	}

	repo.err = &domain.RepositoryError{Op: "ListRules", Err: "connection refused"}
	current = current.Add(2 * time.Minute)

	if got := n.Normalize(context.Background(), "https://www.example.com/"); got != "https://example.com/" {
		t.Errorf("Normalize() under reload failure = %q, want stale rules applied", got)
	}
}

func TestNormalizeFallsBackToOriginalURLWhenNoRulesAvailable(t *testing.T) {
	repo := &fakeRuleRepo{err: &domain.RepositoryError{Op: "ListRules", Err: "connection refused"}}
	n := NewNormalizer(repo, time.Minute, nil)

	if got := n.Normalize(context.Background(), "https://www.example.com/"); got != "https://www.example.com/" {
		t.Errorf("Normalize() = %q, want original URL", got)
	}
}

func TestValidatePattern(t *testing.T) {
	if err := ValidatePattern(`^https?://`); err != nil {
		t.Errorf("ValidatePattern(valid) error = %v", err)
	}
	if err := ValidatePattern("([unclosed"); err == nil {
		t.Error("ValidatePattern(invalid) error = nil, want error")
	}
}

func TestTestRule(t *testing.T) {
	result, err := TestRule(`#.*$`, "", "https://example.com/page#section")
	if err != nil {
		t.Fatalf("TestRule() error = %v", err)
	}
	if !result.Matched || result.NormalizedURL != "https://example.com/page" {
		t.Errorf("result = %+v", result)
	}

	if _, err := TestRule("([unclosed", "", "https://example.com/"); err == nil {
		t.Error("TestRule(invalid pattern) error = nil, want error")
	}
}
