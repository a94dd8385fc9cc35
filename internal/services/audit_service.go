// Package services – AuditService
//
// This file implements the AuditService, the application-level owner of
// the append-only log store. Appends are best-effort by contract: a
// failed write is counted, reported on a rate-limited diagnostic channel
// (zerolog), and then swallowed, so an audit fault can never fail or roll
// back the catalog operation that triggered it. Reads and clears are
// ordinary fallible operations surfaced to the caller.
package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/nezarts/jewelry-catalog/internal/domain"
	"github.com/nezarts/jewelry-catalog/internal/metrics"
	"github.com/nezarts/jewelry-catalog/internal/repo"
	"github.com/nezarts/jewelry-catalog/internal/utils"
)

// defaultMaxQueryLimit caps caller-supplied query limits. Queries with
// no limit at all are never truncated.
const defaultMaxQueryLimit = 500

// AuditService provides append/query/clear over the log database. The DB
// handle must point at the log database, never the catalog one: the two
// schema domains are independent and share no transaction.
type AuditService struct {
	// DB is the GORM handle for the log database.
	DB *gorm.DB

	// Diag receives swallowed append failures. The durable audit trail is
	// the log store itself; this channel only exists for operators.
	Diag zerolog.Logger

	// MaxQueryLimit bounds explicit Query limits; zero means
	// defaultMaxQueryLimit. A query without a limit is not bounded.
	MaxQueryLimit int

	// limiter throttles diagnostic output when the log database is
	// persistently broken.
	limiter *rate.Limiter
}

// NewAuditService constructs an AuditService with a diagnostic rate limit
// of diagRPS events per second (burst diagBurst). Non-positive values
// fall back to 1 rps / burst 5.
func NewAuditService(db *gorm.DB, diag zerolog.Logger, diagRPS float64, diagBurst int) *AuditService {
	if diagRPS <= 0 {
		diagRPS = 1
	}
	if diagBurst < 1 {
		diagBurst = 5
	}
	return &AuditService{
		DB:      db,
		Diag:    diag,
		limiter: rate.NewLimiter(rate.Limit(diagRPS), diagBurst),
	}
}

// Append writes one audit entry, fire-and-forget. Unknown levels are
// coerced to info rather than rejected, and details (when non-nil) are
// serialized to JSON text. Append never returns an error: a failed
// insert bumps the failure counter and, rate limit permitting, emits a
// diagnostic line.
func (s *AuditService) Append(ctx context.Context, level, category, message string, details any) {
	if !domain.ValidLogLevel(level) {
		s.diag().Warn().Str("level", level).Msg("unknown audit level, coercing to info")
		level = domain.LogLevelInfo
	}

	payload := ""
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			s.diag().Warn().Err(err).Str("category", category).Msg("audit details not serializable, dropping")
		} else {
			payload = string(b)
		}
	}

	if _, err := repo.InsertLog(ctx, s.DB, level, category, message, payload); err != nil {
		metrics.AuditWriteFailure()
		if s.limiter == nil || s.limiter.Allow() {
			s.Diag.Error().
				Err(err).
				Str("category", category).
				Str("audit_level", level).
				Msg("audit write failed")
		}
		return
	}
	metrics.AuditEntry(level)
}

// Query returns the log entries matching f, newest first. A positive
// limit is clamped to MaxQueryLimit; a zero limit means no truncation
// at all and returns the full matching set.
func (s *AuditService) Query(ctx context.Context, f repo.LogFilter) ([]domain.LogEntry, error) {
	if f.Limit > 0 {
		max := s.MaxQueryLimit
		if max <= 0 {
			max = defaultMaxQueryLimit
		}
		f.Limit = utils.ClampLimit(f.Limit, max)
	}
	return repo.ListLogs(ctx, s.DB, f)
}

// Clear removes all log entries unconditionally.
func (s *AuditService) Clear(ctx context.Context) error {
	return repo.ClearLogs(ctx, s.DB)
}

// diag returns the rate-limited diagnostic logger, falling back to a
// disabled event when the limiter says no.
func (s *AuditService) diag() *zerolog.Logger {
	if s.limiter == nil || s.limiter.Allow() {
		return &s.Diag
	}
	nop := zerolog.Nop()
	return &nop
}
