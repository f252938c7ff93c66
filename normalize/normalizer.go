// Package normalize rewrites URLs to their canonical form using
// database-stored regex rules.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"history-server/domain"
	"history-server/port"
)

// DefaultRulesTTL bounds how long the in-process rule cache is trusted
// before rules are re-read from the repository.
const DefaultRulesTTL = 5 * time.Minute

type compiledRule struct {
	rule  domain.NormalizationRule
	regex *regexp.Regexp
}

// Normalizer applies ordered normalization rules to URLs. Compiled rules
// are cached in-process with a TTL; Refresh drops the cache so the next
// call reloads from the repository.
type Normalizer struct {
	repo     port.RuleRepository
	rulesTTL time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	compiled  []compiledRule
	fetchedAt time.Time
	// now is replaceable in tests
	now func() time.Time
}

func NewNormalizer(repo port.RuleRepository, rulesTTL time.Duration, logger *slog.Logger) *Normalizer {
	if rulesTTL <= 0 {
		rulesTTL = DefaultRulesTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		repo:     repo,
		rulesTTL: rulesTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Normalize rewrites url using the first matching enabled rule. Any
// failure, rule loading included, falls back to the original URL.
func (n *Normalizer) Normalize(ctx context.Context, url string) string {
	result, err := n.NormalizeDetailed(ctx, url)
	if err != nil {
		n.logger.Error("url normalization failed", "url", url, "err", err)
		return url
	}
	return result.NormalizedURL
}

// NormalizeDetailed reports which rewrite, if any, was applied.
func (n *Normalizer) NormalizeDetailed(ctx context.Context, url string) (*domain.NormalizationResult, error) {
	rules, err := n.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	for _, cr := range rules {
		rewritten := cr.regex.ReplaceAllString(url, cr.rule.Replacement)
		if rewritten == url {
			continue
		}
		n.logger.Info("url normalized", "original", url, "normalized", rewritten, "rule", cr.rule.ID)
		return &domain.NormalizationResult{
			OriginalURL:   url,
			NormalizedURL: rewritten,
			Matched:       true,
		}, nil
	}

	return &domain.NormalizationResult{
		OriginalURL:   url,
		NormalizedURL: url,
		Matched:       false,
	}, nil
}

// Refresh drops the in-process rule cache. Called when rules change.
func (n *Normalizer) Refresh() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.compiled = nil
	n.fetchedAt = time.Time{}
}

func (n *Normalizer) loadRules(ctx context.Context) ([]compiledRule, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.compiled != nil && n.now().Sub(n.fetchedAt) < n.rulesTTL {
		return n.compiled, nil
	}

	rules, err := n.repo.ListEnabled(ctx)
	if err != nil {
		// Keep serving stale rules rather than failing every insert.
		if n.compiled != nil {
			n.logger.Warn("rule reload failed, keeping cached rules", "err", err)
			return n.compiled, nil
		}
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			n.logger.Warn("skipping rule with invalid pattern", "rule", rule.ID, "pattern", rule.Pattern, "err", err)
			continue
		}
		compiled = append(compiled, compiledRule{rule: rule, regex: regex})
	}

	n.compiled = compiled
	n.fetchedAt = n.now()
	n.logger.Info("normalization rules loaded", "count", len(compiled))
	return compiled, nil
}

// ValidatePattern reports whether pattern is a compilable regex.
func ValidatePattern(pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return nil
}

// TestRule applies pattern/replacement to testURL without touching stored
// rules.
func TestRule(pattern, replacement, testURL string) (*domain.NormalizationResult, error) {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}

	rewritten := regex.ReplaceAllString(testURL, replacement)
	return &domain.NormalizationResult{
		OriginalURL:   testURL,
		NormalizedURL: rewritten,
		Matched:       rewritten != testURL,
	}, nil
}
