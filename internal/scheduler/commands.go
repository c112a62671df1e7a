package scheduler

import (
	"fmt"
	"log"
	"strings"

	"RetentionSentinel/internal/model"
	"RetentionSentinel/internal/notifier"
	"RetentionSentinel/internal/recorder"
	"RetentionSentinel/internal/report"
)

// HandleCommand processes a user command and returns a reply. Commands
// work on the last loaded ledger. /retention and /churn accept an optional
// country code, /portfolio an account manager and /client a customer id.
func (s *Scheduler) HandleCommand(command string) string {
	name, raw, _ := strings.Cut(strings.TrimSpace(command), " ")
	raw = strings.TrimSpace(raw)
	arg := strings.ToUpper(raw)

	switch name {
	case "/retention", "/churn", "/goals":
	case "/portfolio":
		if raw == "" {
			return "Usage: /portfolio MANAGER"
		}
	case "/client":
		if raw == "" {
			return "Usage: /client ID"
		}
	default:
		return notifier.FormatHelp()
	}

	l, err := s.Ledger(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] %s: %v", name, err)
		return fmt.Sprintf("❌ %v", err)
	}
	ref := s.ReferenceMonth()
	scope := recorder.ScopeAll
	switch name {
	case "/portfolio":
		return s.portfolio(l, raw, ref)
	case "/client":
		p, ok := report.CustomerProfile(l, raw, ref, s.Now())
		if !ok {
			return fmt.Sprintf("No orders for customer %s by %s.", raw, ref)
		}
		return notifier.FormatProfile(ref, p)
	}
	if arg != "" && name != "/goals" {
		part, ok := report.ByCountry(l)[arg]
		if !ok {
			return fmt.Sprintf("No orders for country %s.", arg)
		}
		l, scope = part, arg
	}

	switch name {
	case "/retention":
		return notifier.FormatRetentionDigest(scope, s.Facade.Snapshot(l, ref), s.Facade.Snapshot(l, ref.AddMonths(-1)))
	case "/churn":
		set, err := s.Facade.Recommendations(s.Ctx, l, ref.AddMonths(-1), ref)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRecommendationSummary(scope, set)
	default:
		var gs []model.Goal
		if s.Goals != nil {
			gs = s.Goals.List()
		}
		rows := report.MergeGoals(gs, s.Facade.ActualBySegment(report.ByCountry(l), ref))
		return notifier.FormatGoalGaps(ref, rows)
	}
}

// portfolio replies with the roster of one account manager, matched
// case-insensitively.
func (s *Scheduler) portfolio(l *model.Ledger, manager string, ref model.YearMonth) string {
	for key, part := range report.ByAccountManager(l) {
		if strings.EqualFold(key, manager) {
			return notifier.FormatRoster(key, ref, report.Roster(part, ref))
		}
	}
	return fmt.Sprintf("No customers for %s.", manager)
}
