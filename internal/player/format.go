package player

import (
	"fmt"
	"math"
	"strings"

	"vibeshuffle/internal/search"
	"vibeshuffle/internal/session"
)

func describe(snap session.Snapshot) string {
	volume := int(math.Round(snap.Volume * 100))
	if snap.Index < 0 {
		return fmt.Sprintf("%s: nothing selected (%d tracks, volume %d%%)", snap.Status, snap.Tracks, volume)
	}
	return fmt.Sprintf("%s: %s [%d/%d] volume %d%%, %d queued, %d in history (lookahead %d, duplicate distance < %.2f)",
		snap.Status, snap.Track.Name(), snap.Index+1, snap.Tracks, volume, len(snap.Pending), len(snap.History),
		snap.Lookahead, snap.Threshold)
}

func describeMatches(query string, matches []search.Match) string {
	if len(matches) == 0 {
		return fmt.Sprintf("no matches for %q", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d matches for %q:", len(matches), query)
	for i, m := range matches {
		fmt.Fprintf(&b, "\n  %2d. %s (%d)", i+1, m.Name, m.Score)
	}
	return b.String()
}
