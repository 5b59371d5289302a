package discovery

import (
	"fmt"
	"log/slog"
	"time"

	"NewsMirror/internal/domain"
)

const dateLayout = "2006-01-02"

// ComputeWindow resolves the sync window. Explicit from/to dates (YYYY-MM-DD, UTC)
// win over the months lookback, which counts 30 days per month.
func ComputeWindow(months int, from, to string, now time.Time) (domain.Window, error) {
	end := now.UTC()
	if to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			return domain.Window{}, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -30*months)
	if from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			return domain.Window{}, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		start = parsed
	}

	return domain.NewWindow(start, end)
}

// FilterWindow keeps references whose timestamp lies inside window, preserving order.
// References without a timestamp are dropped and counted.
func FilterWindow(refs []domain.ArticleReference, window domain.Window, logger *slog.Logger) ([]domain.ArticleReference, int) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	kept := make([]domain.ArticleReference, 0, len(refs))
	skipped := 0
	for _, ref := range refs {
		if ref.Timestamp == nil {
			skipped++
			logger.Warn("skip article with invalid timestamp", "id", ref.ID)
			continue
		}
		if window.Contains(*ref.Timestamp) {
			kept = append(kept, ref)
		}
	}

	logger.Info("date filter applied",
		"start", window.Start.Format(time.RFC3339),
		"end", window.End.Format(time.RFC3339),
		"kept", len(kept),
		"skipped_invalid", skipped,
	)
	return kept, skipped
}
