package l2_service

import (
	"context"
	"stockscreener/internal/domain"
	"stockscreener/internal/expression"
	"stockscreener/internal/logger"
	"strings"
)

type RuleService interface {
	Evaluate(ctx context.Context, records []domain.FeatureRecord, ruleText string, thresholds domain.Thresholds) ([]domain.ScoredRecord, []domain.ConfigurationWarning)
}

type ruleServiceHandler struct {
	Namespace expression.Namespace
}

func NewRuleService() RuleService {
	return ruleServiceHandler{
		Namespace: expression.NewNamespace(domain.FeatureFieldNames()...),
	}
}

// ParseRules turns a rule block into rules, one per non-blank line. Lines that
// only hold a comment are skipped and do not take an ordinal.
func ParseRules(text string) []domain.Rule {
	rules := []domain.Rule{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		expr := expression.StripComment(line)
		if expr == "" {
			continue
		}
		rules = append(rules, domain.Rule{
			Ordinal:    len(rules) + 1,
			Text:       line,
			Expression: expr,
		})
	}
	return rules
}

type compiledRule struct {
	Rule       domain.Rule
	Expression *expression.Expression
	CompileErr error
}

func (c compiledRule) ruleError(err error) domain.RuleEvaluationError {
	return domain.RuleEvaluationError{Ordinal: c.Rule.Ordinal, Rule: c.Rule.Text, Err: err}
}

func (h ruleServiceHandler) compile(rules []domain.Rule) []compiledRule {
	out := make([]compiledRule, len(rules))
	for i, r := range rules {
		expr, err := expression.Compile(r.Expression, h.Namespace)
		out[i] = compiledRule{
			Rule:       r,
			Expression: expr,
			CompileErr: err,
		}
	}
	return out
}

// Evaluate scores every record against every rule. A rule that cannot be
// compiled or evaluated is recorded as an ERROR for that row and scores 0;
// it never stops the other rules or rows.
func (h ruleServiceHandler) Evaluate(ctx context.Context, records []domain.FeatureRecord, ruleText string, thresholds domain.Thresholds) ([]domain.ScoredRecord, []domain.ConfigurationWarning) {
	log := logger.FromContext(ctx)

	rules := ParseRules(ruleText)
	warnings := []domain.ConfigurationWarning{}
	out := make([]domain.ScoredRecord, 0, len(records))

	if len(rules) == 0 {
		warnings = append(warnings, domain.ConfigurationWarning{
			Field:   "rules",
			Message: "no rules supplied, every ticker is scored 0 and held",
		})
		for _, record := range records {
			out = append(out, domain.ScoredRecord{
				FeatureRecord:  record,
				Score:          0,
				Rationale:      []domain.RationaleEntry{},
				RationaleText:  domain.NoRulesApplied,
				Recommendation: domain.RecommendationHold,
			})
		}
		return out, warnings
	}

	compiled := h.compile(rules)
	for _, c := range compiled {
		if c.CompileErr != nil {
			log.Warnf("rule does not compile: %s", c.ruleError(c.CompileErr).Error())
		}
	}

	for _, record := range records {
		out = append(out, evaluateRecord(record, compiled, thresholds))
	}

	return out, warnings
}

func evaluateRecord(record domain.FeatureRecord, rules []compiledRule, thresholds domain.Thresholds) domain.ScoredRecord {
	env := expression.Env(record.Fields())
	score := 0
	entries := make([]domain.RationaleEntry, 0, len(rules))
	for _, c := range rules {
		entry := domain.RationaleEntry{
			Ordinal: c.Rule.Ordinal,
			Rule:    c.Rule.Text,
		}

		err := c.CompileErr
		passed := false
		if err == nil {
			passed, err = c.Expression.EvalBool(env)
		}

		switch {
		case err != nil:
			entry.Outcome = domain.RuleOutcomeError
			entry.Reason = err.Error()
			entry.Err = c.ruleError(err)
		case passed:
			score++
			entry.Outcome = domain.RuleOutcomePassed
		default:
			entry.Outcome = domain.RuleOutcomeFailed
		}
		entries = append(entries, entry)
	}

	return domain.ScoredRecord{
		FeatureRecord:  record,
		Score:          score,
		Rationale:      entries,
		RationaleText:  domain.RenderRationale(entries),
		Recommendation: domain.Classify(score, thresholds),
	}
}
