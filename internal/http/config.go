package http

import (
	"time"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database"
	"github.com/Sa-tya/shelf-manager/internal/metrics"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Audit    *audit.Service

	// Stores
	Schools      SchoolStore
	Subjects     SubjectStore
	Publications PublicationStore
	BookNames    BookNameStore
	Books        BookEntryStore
	Booklists    BooklistStore

	// Booklist builder controllers, one per school
	Builders *workflow.Registry

	// UI
	TemplatesPath string
	ItemsPerPage  int

	// Application info
	Version string

	// Prometheus metrics (optional)
	Metrics *metrics.Metrics

	// CSRF protection of the builder forms; disabled when CSRFSecret is empty
	CSRFSecret    []byte
	SecureCookies bool

	// Reject writes, e.g. for a public catalog mirror
	ReadOnly bool

	// Task queue (optional)
	TaskQueue          TaskQueue
	CleanupGracePeriod time.Duration
	AuditRetentionDays int
}
