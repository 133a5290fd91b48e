package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/metrics"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

const (
	CommitModeTransactional = "transactional"
	CommitModeFanOut        = "fanout"
)

var _ workflow.Committer = (*TransactionalCommitter)(nil)

// TransactionalCommitter saves a whole build in one database transaction.
// A zero session means the current year.
type TransactionalCommitter struct {
	store BooklistStore
	now   func() time.Time
}

// NewTransactionalCommitter commits through store.Commit.
func NewTransactionalCommitter(store BooklistStore) *TransactionalCommitter {
	return &TransactionalCommitter{store: store, now: time.Now}
}

// Commit writes every staged class or nothing. Failures wrap
// workflow.ErrCommitFailed.
func (t *TransactionalCommitter) Commit(_ context.Context, schoolCode string, session int, staged []workflow.StagedClass) (*workflow.CommitResult, error) {
	if len(staged) == 0 {
		return nil, workflow.ErrNothingStaged
	}
	if session == 0 {
		session = t.now().Year()
	}

	res, err := t.store.Commit(schoolCode, session, PlansFromStaged(staged))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", workflow.ErrCommitFailed, err)
	}
	return &workflow.CommitResult{Booklists: res.Booklists, Items: res.Items}, nil
}

// PlansFromStaged converts a staged build into per-class title lists.
func PlansFromStaged(staged []workflow.StagedClass) []booklists.ClassPlan {
	plans := make([]booklists.ClassPlan, 0, len(staged))
	for _, sc := range staged {
		plan := booklists.ClassPlan{Class: sc.Class, BookNameIDs: make([]uint, 0, len(sc.Books))}
		for _, b := range sc.Books {
			plan.BookNameIDs = append(plan.BookNameIDs, b.Book.ID)
		}
		plans = append(plans, plan)
	}
	return plans
}

// InstrumentedCommitter records metrics and an audit event for every commit.
type InstrumentedCommitter struct {
	next    workflow.Committer
	mode    string
	metrics *metrics.Metrics
	audit   *audit.Service
}

// Commit delegates to the wrapped committer and records the outcome, success
// or not.
func (i *InstrumentedCommitter) Commit(ctx context.Context, schoolCode string, session int, staged []workflow.StagedClass) (*workflow.CommitResult, error) {
	res, err := i.next.Commit(ctx, schoolCode, session, staged)

	var lists, items int
	if res != nil {
		lists, items = len(res.Booklists), len(res.Items)
	}
	i.metrics.ObserveCommit(i.mode, lists, items, err)
	i.audit.LogCommit(schoolCode, i.mode, lists, items, "", err)
	return res, err
}

// NewCommitter builds the committer used by the booklist builder page.
// Unknown modes fall back to transactional.
func NewCommitter(mode string, concurrency int, store BooklistStore, m *metrics.Metrics, a *audit.Service) workflow.Committer {
	var next workflow.Committer
	switch mode {
	case CommitModeFanOut:
		next = workflow.NewFanOutCommitter(NewLocalGateway(store), concurrency)
	default:
		mode = CommitModeTransactional
		next = NewTransactionalCommitter(store)
	}
	return &InstrumentedCommitter{next: next, mode: mode, metrics: m, audit: a}
}
