package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// AppendEntry appends one observation to a position's timeline and returns the
// grown timeline as a new value. An entry timestamped strictly before the
// current last entry is rejected as a silent no-op: the input timeline is
// returned unchanged, sharing its backing array, and callers detect the
// rejection by comparing lengths. Equal timestamps are kept in call order.
func AppendEntry(tl domain.VirtualPositionTimeline, entry domain.TimelineEntry) domain.VirtualPositionTimeline {
	if last, ok := tl.Last(); ok && entry.EvaluatedAt.Before(last.EvaluatedAt) {
		return tl
	}

	out := tl
	out.Entries = make([]domain.TimelineEntry, len(tl.Entries), len(tl.Entries)+1)
	copy(out.Entries, tl.Entries)
	out.Entries = append(out.Entries, entry)
	return out
}
