package story

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/storyteller/internal/models"
)

func windowLen(w []models.Segment) int {
	n := 0
	for _, seg := range w {
		n += utf8.RuneCountInString(seg.Text)
	}
	return n
}

// assertWindow checks that the window is a tight, contiguous suffix of the
// log within budget.
func assertWindow(t *testing.T, l *Log) {
	t.Helper()
	segs := l.Segments()
	w := l.Window()

	require.LessOrEqual(t, len(w), len(segs))
	suffix := segs[len(segs)-len(w):]
	require.Equal(t, suffix, w, "window must be a suffix of the log")
	require.LessOrEqual(t, windowLen(w), l.Budget())

	if len(w) < len(segs) {
		next := segs[len(segs)-len(w)-1]
		assert.Greater(t, windowLen(w)+utf8.RuneCountInString(next.Text), l.Budget(), "window is not tight")
	}
}

func TestWindowProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	kinds := []models.SegmentKind{models.KindStory, models.KindPlayerAction, models.KindAIResponse}

	for run := 0; run < 50; run++ {
		l := NewLog(rng.Intn(200))
		for i := 0; i < 40; i++ {
			text := strings.Repeat("é", rng.Intn(60))
			seg := l.Append(text, kinds[rng.Intn(len(kinds))])
			require.Equal(t, i, seg.Index)
			assertWindow(t, l)

			if rng.Intn(10) == 0 {
				l.SetBudget(rng.Intn(300))
				assertWindow(t, l)
			}
		}
	}
}

func TestWindowStopsAtFirstMisfit(t *testing.T) {
	l := NewLog(10)
	l.AppendStory("aa")         // 2
	l.AppendStory("bbbbbbbbbb") // 10
	l.AppendStory("ccc")        // 3
	l.AppendStory("dddd")       // 4

	// "bbbbbbbbbb" does not fit after ccc+dddd, so "aa" is not considered
	// even though it would fit.
	w := l.Window()
	require.Len(t, w, 2)
	assert.Equal(t, "ccc", w[0].Text)
	assert.Equal(t, "dddd", w[1].Text)
}

func TestWindowEmptyWhenNewestTooLarge(t *testing.T) {
	l := NewLog(3)
	l.AppendStory("ab")
	l.AppendStory("this is far too long")
	assert.Empty(t, l.Window())
}

func TestShouldInjectContext(t *testing.T) {
	l := NewLog(1024)
	assert.False(t, l.ShouldInjectContext(3), "counter 0 never injects")

	var injected []int
	for i := 1; i <= 10; i++ {
		l.AppendPlayerAction("wait")
		l.AppendAIResponse("Time passes.")
		if l.ShouldInjectContext(3) {
			injected = append(injected, l.InteractionCount())
		}
	}
	assert.Equal(t, []int{3, 6, 9}, injected)
	assert.False(t, l.ShouldInjectContext(0))
}

func TestInjectionOnFirstActionWithIntervalOne(t *testing.T) {
	l := NewLog(1024)
	l.AppendStory("Once upon a time.")
	assert.False(t, l.ShouldInjectContext(1))
	l.AppendPlayerAction("go north")
	assert.True(t, l.ShouldInjectContext(1))
}

func TestInteractionCountOnlyCountsPlayerActions(t *testing.T) {
	l := NewLog(1024)
	l.AppendStory("s")
	l.AppendAIResponse("r")
	assert.Equal(t, 0, l.InteractionCount())
	l.AppendPlayerAction("p")
	assert.Equal(t, 1, l.InteractionCount())
}

func TestRecentStoryChunks(t *testing.T) {
	l := NewLog(1024)
	l.AppendStory("one")
	l.AppendPlayerAction("act")
	l.AppendStory("two")
	l.AppendAIResponse("resp")
	l.AppendStory("three")

	assert.Equal(t, []string{"two", "three"}, l.RecentStoryChunks(2))
	assert.Equal(t, []string{"one", "two", "three"}, l.RecentStoryChunks(10))
	assert.Nil(t, l.RecentStoryChunks(0))
}

func TestSummary(t *testing.T) {
	l := NewLog(1024)
	assert.Equal(t, NoStoryYet, l.Summary())

	l.AppendPlayerAction("look")
	assert.Equal(t, NoStoryContent, l.Summary())

	for _, s := range []string{"a", "b", "c", "d", "e", "f"} {
		l.AppendStory(s)
	}
	assert.Equal(t, "b c d e f", l.Summary())
}

func TestSummaryCap(t *testing.T) {
	l := NewLog(1024)
	for i := 0; i < 5; i++ {
		l.AppendStory(strings.Repeat("ж", 150))
	}
	s := l.Summary()
	assert.Equal(t, 503, utf8.RuneCountInString(s))
	assert.True(t, strings.HasSuffix(s, "..."))

	short := NewLog(1024)
	short.AppendStory(strings.Repeat("x", 250))
	short.AppendStory(strings.Repeat("y", 249))
	assert.Equal(t, strings.Repeat("x", 250)+" "+strings.Repeat("y", 249), short.Summary())
}

func TestContextText(t *testing.T) {
	l := NewLog(1024)
	l.AppendStory("The tavern.")
	l.AppendPlayerAction("greet the barkeep")
	l.AppendAIResponse("She waves.")
	assert.Equal(t, "The tavern.\nPlayer: greet the barkeep\nAI: She waves.", l.ContextText())
}

func TestContextTextLabelsAreOutsideBudget(t *testing.T) {
	l := NewLog(10)
	l.AppendPlayerAction("go")
	l.AppendAIResponse("ok")

	require.Len(t, l.Window(), 2)
	text := l.ContextText()
	assert.Equal(t, "Player: go\nAI: ok", text)
	assert.Greater(t, len(text), l.Budget())
}

func TestStats(t *testing.T) {
	l := NewLog(5)
	l.AppendStory("story")
	l.AppendPlayerAction("go")
	l.AppendAIResponse("ok")

	st := l.Stats()
	assert.Equal(t, Stats{
		TotalSegments:    3,
		StorySegments:    1,
		PlayerActions:    1,
		AIResponses:      1,
		InteractionCount: 1,
		WindowSize:       2,
		WindowChars:      4,
	}, st)
}

func TestRestoreRecomputesWindow(t *testing.T) {
	l := NewLog(1024)
	l.AppendStory("The tavern.")
	l.AppendPlayerAction("go north")
	l.AppendAIResponse("A cold road.")

	restored, err := Restore(l.Segments(), l.InteractionCount(), 12)
	require.NoError(t, err)
	assert.Equal(t, l.Segments(), restored.Segments())
	assert.Equal(t, 1, restored.InteractionCount())
	assert.Len(t, restored.Window(), 1)
	assertWindow(t, restored)

	next := restored.AppendStory("More.")
	assert.Equal(t, 3, next.Index)
}

func TestRestoreRejectsBadRecords(t *testing.T) {
	_, err := Restore([]models.Segment{{Index: 1, Kind: models.KindStory, Text: "x"}}, 0, 10)
	assert.Error(t, err)

	_, err = Restore([]models.Segment{{Index: 0, Kind: "dream", Text: "x"}}, 0, 10)
	assert.Error(t, err)

	_, err = Restore(nil, -1, 10)
	assert.Error(t, err)
}
