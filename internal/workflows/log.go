package workflows

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PolarWolf314/hush/internal/audit"
	herrors "github.com/PolarWolf314/hush/internal/errors"
	"github.com/PolarWolf314/hush/internal/utils"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// Principal filters entries by actor or target (id or username).
	Principal string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int

	// Usernames maps principal ids seen in Entries to usernames.
	Usernames map[string]string
}

// Log reads and filters the audit log.
//
// Returns ErrInvalidDateFormat if a date filter is malformed.
func (e *Env) Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	query := audit.Query{}

	if opts.Principal != "" {
		query.Actor = opts.Principal
		p, err := e.resolvePrincipal(ctx, opts.Principal)
		switch {
		case err == nil:
			query.Actor = p.ID
		case !errors.Is(err, herrors.ErrPrincipalNotFound):
			return nil, err
		}
	}

	if opts.Since != "" {
		since, err := time.Parse(dateLayout, opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", herrors.ErrInvalidDateFormat)
		}
		query.Since = since
	}

	if opts.Until != "" {
		until, err := time.Parse(dateLayout, opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", herrors.ErrInvalidDateFormat)
		}
		// The whole day is included.
		query.Until = until.Add(24*time.Hour - time.Nanosecond)
	}

	if opts.Operations != "" {
		query.Operations = strings.Split(opts.Operations, ",")
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
		Usernames:                make(map[string]string),
	}

	// Limit keeps the most recent entries in either order.
	query.Limit = opts.Limit
	filtered := audit.Filter(entries, query)
	if opts.Reverse {
		slices.Reverse(filtered)
	}

	for _, entry := range filtered {
		for _, id := range []string{entry.Actor, entry.Target} {
			if id == "" {
				continue
			}
			if _, ok := result.Usernames[id]; ok {
				continue
			}
			if p, err := e.Store.GetPrincipal(ctx, id); err == nil {
				result.Usernames[id] = p.Username
			}
		}
	}

	result.Entries = filtered
	return result, nil
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := time.Parse(audit.TimestampLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails formats the details of a log entry. names maps principal ids
// to usernames; unknown ids are shown as-is.
func FormatDetails(e audit.Entry, names map[string]string) string {
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	switch e.Operation {
	case audit.OpRegister:
		return "key " + utils.ShortFingerprint(e.Fingerprint)
	case audit.OpRotate:
		return fmt.Sprintf("%s -> %s", utils.ShortFingerprint(e.OldFingerprint), utils.ShortFingerprint(e.Fingerprint))
	case audit.OpBackfill:
		if e.Failed > 0 {
			return fmt.Sprintf("%d generated, %d failed", e.Count, e.Failed)
		}
		return fmt.Sprintf("%d generated", e.Count)
	case audit.OpSend:
		return fmt.Sprintf("to %s (%s)", name(e.Target), e.Algorithm)
	case audit.OpRead:
		return "message " + e.MessageID
	default:
		return ""
	}
}
