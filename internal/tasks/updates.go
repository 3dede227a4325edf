package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or TUI layer for display.
// Percent is the task-level completion percentage (0-100), already scaled by
// the stage weights of the running task kind.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Percent int    // Task-level progress, 0-100
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	PhaseScrape Phase = iota
	PhaseWalk
	PhaseFetch
	PhaseSuggest
	PhaseMatch
	PhaseSeed
	PhaseWrite
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseScrape:
		return "scrape"
	case PhaseWalk:
		return "walk_library"
	case PhaseFetch:
		return "fetch"
	case PhaseSuggest:
		return "suggest"
	case PhaseMatch:
		return "match"
	case PhaseSeed:
		return "seed"
	case PhaseWrite:
		return "write"
	case PhaseDone:
		return "done"
	default:
		return ""
	}
}

// stage maps a sub-pipeline's own step counter onto a slice of the task-level
// progress range. Each task kind documents its stage weights on its constructor.
type stage struct {
	lo, hi int
}

// percent converts step-of-total within the stage to task-level progress.
func (s stage) percent(step, total int) int {
	if total <= 0 {
		return s.lo
	}
	if step > total {
		step = total
	}
	return s.lo + (s.hi-s.lo)*step/total
}

func scrapeUpdate(s stage, year, month, day string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseScrape,
		Percent: s.lo,
		Message: fmt.Sprintf("Fetching daily playlist for %s %s, %s...", month, day, year),
	}
}

func walkUpdate(s stage, done, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseWalk,
		Percent: s.percent(done, total),
		Message: fmt.Sprintf("Scanning library: playlist %d/%d", done, total),
	}
}

func fetchUpdate(s stage, step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetch,
		Percent: s.percent(step, total),
		Message: fmt.Sprintf("Fetching %s...", what),
	}
}

func suggestUpdate(s stage, prompt string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseSuggest,
		Percent: s.lo,
		Message: fmt.Sprintf("Asking for suggestions: %s", prompt),
	}
}

func matchUpdate(s stage, done, total int, title, performer string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseMatch,
		Percent: s.percent(done, total),
		Message: fmt.Sprintf("[%d/%d] %s - %s", done, total, performer, title),
	}
}

func seedUpdate(s stage, seeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseSeed,
		Percent: s.lo,
		Message: fmt.Sprintf("Requesting recommendations from %d artist seeds...", seeds),
	}
}

func writeUpdate(s stage, done, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseWrite,
		Percent: s.percent(done, total),
		Message: fmt.Sprintf("Writing tracks: chunk %d/%d", done, total),
	}
}

func doneUpdate(playlistIDs []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseDone,
		Percent: 100,
		Message: fmt.Sprintf("Created %d playlist(s)", len(playlistIDs)),
		Data:    playlistIDs,
	}
}
