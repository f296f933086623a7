// Package digest renders a user's journal as one bounded text block for
// insertion into a model-facing message.
package digest

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Tiliavir/trivial-journal/internal/model"
	"github.com/Tiliavir/trivial-journal/internal/timecalc"
)

// DefaultBudget is the character budget of a digest, about 30 printed pages.
const DefaultBudget = 60000

// Header prefixes every non-empty digest.
const Header = "\n\n# Journal\n\n### Journal Entries ###\n"

// Stats describes the outcome of a Build.
type Stats struct {
	Selected  int  // entries included
	Total     int  // entries considered
	Chars     int  // characters in the digest, header included
	Truncated bool // true when the budget stopped the scan
}

// Builder turns entries into a digest bounded by Budget characters.
type Builder struct {
	Budget int
	Logger *slog.Logger
}

// New returns a Builder with the given budget; budget <= 0 selects DefaultBudget.
func New(budget int, logger *slog.Logger) *Builder {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Builder{Budget: budget, Logger: logger}
}

// Block renders a single entry the way it appears in a digest.
func Block(e model.Entry) string {
	return fmt.Sprintf("\n--- Journal Entry %s ---\n%s\n", timecalc.FormatUTC(e.Timestamp), e.Content)
}

// Build returns the digest for entries, or "" when no entry fits.
func (b *Builder) Build(entries []model.Entry) string {
	out, _ := b.BuildWithStats(entries)
	return out
}

// BuildWithStats orders entries oldest first and takes the longest prefix
// whose rendered size, header included, stays within the budget. The scan
// stops at the first block that does not fit; later entries are never
// considered even if they are shorter.
func (b *Builder) BuildWithStats(entries []model.Entry) (string, Stats) {
	budget := b.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	stats := Stats{Total: len(entries)}

	sorted := make([]model.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var sb strings.Builder
	total := utf8.RuneCountInString(Header)
	for _, e := range sorted {
		block := Block(e)
		n := utf8.RuneCountInString(block)
		if total+n > budget {
			stats.Truncated = true
			b.logger().Warn("journal entries truncated due to size limit",
				"selected", stats.Selected, "total", stats.Total, "budget", budget)
			break
		}
		sb.WriteString(block)
		total += n
		stats.Selected++
	}

	if stats.Selected == 0 {
		return "", stats
	}
	stats.Chars = total
	return Header + sb.String(), stats
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
