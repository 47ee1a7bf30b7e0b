package ports

import (
	"context"
	"errors"
	"time"

	"mediawatch/internal/domain"
)

// ErrNotFound reports a missing collection or missing/rejected store credentials.
var ErrNotFound = errors.New("collection not found")

// ErrRevisionConflict reports that the persisted blob changed between a caller's
// read and its conditional write.
var ErrRevisionConflict = errors.New("revision conflict")

// ContentStore is a revisioned blob store holding one JSON array per collection.
// Get returns the content together with an opaque revision marker; Put succeeds
// only while that marker is still current.
type ContentStore interface {
	Get(ctx context.Context, key string) (content []byte, revision string, err error)
	Put(ctx context.Context, key string, content []byte, revision, message string) (newRevision string, err error)
}

// ArchiveRepository records every ingested item for audit and duplicate history.
type ArchiveRepository interface {
	KnownURLs(ctx context.Context) ([]string, error)
	SaveRun(ctx context.Context, items []domain.CoverageItem) error
}

// SnapshotStore caches the latest aggregation result for the admin page.
type SnapshotStore interface {
	SaveLatest(ctx context.Context, payload []byte) error
	Latest(ctx context.Context) ([]byte, error)
}

// SubmissionSource lists pending, un-approved form submissions grouped by form name.
type SubmissionSource interface {
	ListPending(ctx context.Context) (map[string][]domain.Submission, int, error)
}

// Notifier delivers a digest of newly discovered coverage to the moderators.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when the aggregation run executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
