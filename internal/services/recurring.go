package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
)

// RecurringProcessor materializes due recurring-transaction templates into
// concrete ledger rows. For a template whose next due date is in the past
// it catches up one frequency step at a time until the due date passes
// today. Each materialized row goes through the ledger service, so account
// balances move with it.
type RecurringProcessor struct {
	repo   *database.RecurringRepo
	ledger *LedgerService
	log    *logrus.Entry
}

func NewRecurringProcessor(repo *database.RecurringRepo, ledger *LedgerService) *RecurringProcessor {
	return &RecurringProcessor{
		repo:   repo,
		ledger: ledger,
		log:    logrus.WithField("component", "recurring"),
	}
}

// ProcessDue materializes every due template and returns the number of
// transactions created. A failing template is logged and skipped; the rest
// still run.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	today := truncateToDay(now)

	templates, err := p.repo.ListDue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due templates: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"due":             len(templates),
		"processing_date": today.Format("2006-01-02"),
	}).Info("processing recurring transactions")

	created := 0
	for _, tpl := range templates {
		n, err := p.materialize(ctx, tpl, today)
		created += n
		if err != nil {
			p.log.WithError(err).WithFields(logrus.Fields{
				"template_id": tpl.ID,
				"description": tpl.Description,
			}).Error("failed to materialize recurring transaction")
		}
	}

	p.log.WithField("created", created).Info("recurring processing complete")
	return created, nil
}

// materialize catches one template up to today. Each step posts the
// concrete transaction and advances the due date in one database
// transaction, so a crash mid-run never re-posts an occurrence.
func (p *RecurringProcessor) materialize(ctx context.Context, tpl models.RecurringTransaction, today time.Time) (int, error) {
	created := 0
	dueDate := truncateToDay(tpl.NextDueDate)

	for !dueDate.After(today) {
		nextDue := NextOccurrence(dueDate, tpl.Frequency, tpl.StartDate)
		if _, err := p.ledger.PostRecurringTransaction(ctx, tpl, dueDate, nextDue); err != nil {
			return created, fmt.Errorf("post transaction due %s: %w", dueDate.Format("2006-01-02"), err)
		}
		dueDate = nextDue
		created++

		p.log.WithFields(logrus.Fields{
			"template_id": tpl.ID,
			"description": tpl.Description,
			"amount":      tpl.Amount.String(),
			"next_due":    nextDue.Format("2006-01-02"),
		}).Info("posted transaction from recurring template")
	}

	return created, nil
}

// NextOccurrence advances a due date by one frequency unit. Monthly and
// yearly schedules keep the start date's day of month, clamped to the last
// day of shorter months (a Jan 31 schedule posts Feb 28, then Mar 31).
func NextOccurrence(current time.Time, frequency models.Frequency, startDate time.Time) time.Time {
	switch frequency {
	case models.FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		year, month, _ := current.Date()
		return dateWithClampedDay(year, month+1, startDate.Day(), current.Location())
	case models.FrequencyYearly:
		year, _, _ := current.Date()
		return dateWithClampedDay(year+1, startDate.Month(), startDate.Day(), current.Location())
	default:
		// Unknown frequency: push far forward so the template never loops
		return current.AddDate(100, 0, 0)
	}
}

func dateWithClampedDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
