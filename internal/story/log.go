// Package story holds the append-only narrative log of a session and the
// budget-bounded context window derived from it.
package story

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tatianab/storyteller/internal/models"
)

const (
	summarySegments = 5
	summaryMaxChars = 500
	ellipsis        = "..."

	NoStoryYet     = "No story has been generated yet."
	NoStoryContent = "No story content available."
)

// Log is the ordered, append-only record of every segment in a session.
// The window is recomputed after every change to the log or the budget.
type Log struct {
	segments         []models.Segment
	window           []models.Segment
	budget           int
	interactionCount int
}

// NewLog returns an empty log whose window holds at most budget characters.
func NewLog(budget int) *Log {
	return &Log{budget: budget}
}

// Append adds text as the next segment and returns it.
func (l *Log) Append(text string, kind models.SegmentKind) models.Segment {
	seg := models.Segment{
		Index: len(l.segments),
		Kind:  kind,
		Text:  text,
	}
	l.segments = append(l.segments, seg)
	if kind == models.KindPlayerAction {
		l.interactionCount++
	}
	l.recompute()
	return seg
}

func (l *Log) AppendStory(text string) models.Segment {
	return l.Append(text, models.KindStory)
}

// AppendPlayerAction adds a player action and advances the interaction count.
func (l *Log) AppendPlayerAction(text string) models.Segment {
	return l.Append(text, models.KindPlayerAction)
}

func (l *Log) AppendAIResponse(text string) models.Segment {
	return l.Append(text, models.KindAIResponse)
}

// SetBudget changes the window budget and recomputes the window.
func (l *Log) SetBudget(budget int) {
	l.budget = budget
	l.recompute()
}

func (l *Log) Budget() int { return l.budget }

// recompute walks back from the newest segment and keeps segments while the
// running length stays within budget. It stops at the first segment that
// does not fit, so the window is always a contiguous suffix.
func (l *Log) recompute() {
	total := 0
	start := len(l.segments)
	for i := len(l.segments) - 1; i >= 0; i-- {
		n := textLen(l.segments[i].Text)
		if total+n > l.budget {
			break
		}
		total += n
		start = i
	}
	l.window = l.segments[start:len(l.segments):len(l.segments)]
}

// Window returns a copy of the current context window, oldest first.
func (l *Log) Window() []models.Segment {
	out := make([]models.Segment, len(l.window))
	copy(out, l.window)
	return out
}

// Segments returns a copy of the whole log.
func (l *Log) Segments() []models.Segment {
	out := make([]models.Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

func (l *Log) Len() int { return len(l.segments) }

func (l *Log) InteractionCount() int { return l.interactionCount }

// ShouldInjectContext reports whether the current interaction is one on
// which history is injected: the count is a nonzero multiple of interval.
func (l *Log) ShouldInjectContext(interval int) bool {
	if interval <= 0 || l.interactionCount == 0 {
		return false
	}
	return l.interactionCount%interval == 0
}

// ContextText renders the window for a prompt, one segment per line. The
// budget bounds segment text only; the "Player: " and "AI: " labels and the
// line breaks come on top of it.
func (l *Log) ContextText() string {
	parts := make([]string, 0, len(l.window))
	for _, seg := range l.window {
		switch seg.Kind {
		case models.KindPlayerAction:
			parts = append(parts, "Player: "+seg.Text)
		case models.KindAIResponse:
			parts = append(parts, "AI: "+seg.Text)
		default:
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (l *Log) storyTexts() []string {
	var out []string
	for _, seg := range l.segments {
		if seg.Kind == models.KindStory {
			out = append(out, seg.Text)
		}
	}
	return out
}

// RecentStoryChunks returns the text of the last n story segments, oldest
// first.
func (l *Log) RecentStoryChunks(n int) []string {
	if n <= 0 {
		return nil
	}
	texts := l.storyTexts()
	if len(texts) > n {
		texts = texts[len(texts)-n:]
	}
	return texts
}

// Summary joins the last five story segments with spaces, truncated to 500
// characters plus an ellipsis.
func (l *Log) Summary() string {
	if len(l.segments) == 0 {
		return NoStoryYet
	}
	texts := l.storyTexts()
	if len(texts) == 0 {
		return NoStoryContent
	}
	if len(texts) > summarySegments {
		texts = texts[len(texts)-summarySegments:]
	}
	summary := strings.Join(texts, " ")
	if textLen(summary) > summaryMaxChars {
		summary = truncate(summary, summaryMaxChars) + ellipsis
	}
	return summary
}

// Stats counts segments by kind.
type Stats struct {
	TotalSegments    int
	StorySegments    int
	PlayerActions    int
	AIResponses      int
	InteractionCount int
	WindowSize       int
	WindowChars      int
}

func (l *Log) Stats() Stats {
	st := Stats{
		TotalSegments:    len(l.segments),
		InteractionCount: l.interactionCount,
		WindowSize:       len(l.window),
	}
	for _, seg := range l.segments {
		switch seg.Kind {
		case models.KindStory:
			st.StorySegments++
		case models.KindPlayerAction:
			st.PlayerActions++
		case models.KindAIResponse:
			st.AIResponses++
		}
	}
	for _, seg := range l.window {
		st.WindowChars += textLen(seg.Text)
	}
	return st
}

// Restore rebuilds a log from persisted segments. Indices must run 0..n-1
// and every kind must be known. The window is recomputed from budget; it is
// never taken from the record.
func Restore(segments []models.Segment, interactionCount, budget int) (*Log, error) {
	if interactionCount < 0 {
		return nil, errors.Errorf("negative interaction count %d", interactionCount)
	}
	l := NewLog(budget)
	l.segments = make([]models.Segment, 0, len(segments))
	for i, seg := range segments {
		if seg.Index != i {
			return nil, errors.Errorf("segment %d has index %d", i, seg.Index)
		}
		if !seg.Kind.Valid() {
			return nil, errors.Errorf("segment %d has unknown kind %q", i, seg.Kind)
		}
		l.segments = append(l.segments, seg)
	}
	l.interactionCount = interactionCount
	l.recompute()
	return l, nil
}

func textLen(s string) int { return utf8.RuneCountInString(s) }

func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
