package syncctl

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-scoop/internal/extension/analysisclient"
	"sentiment-scoop/internal/extension/authstate"
	"sentiment-scoop/internal/extension/overlay"
	"sentiment-scoop/internal/extension/page"
	"sentiment-scoop/internal/extension/videoid"
)

// stubAnalyzer counts requests per video and can hold responses until
// released, to exercise the in-flight/stale paths.
type stubAnalyzer struct {
	mu       sync.Mutex
	calls    map[string]int
	results  map[string]analysisclient.Result
	blocking bool
	release  chan struct{}
}

func newStubAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{
		calls:   map[string]int{},
		results: map[string]analysisclient.Result{},
		release: make(chan struct{}),
	}
}

func (s *stubAnalyzer) Analyze(ctx context.Context, videoID string, force bool) analysisclient.Result {
	s.mu.Lock()
	s.calls[videoID]++
	res, ok := s.results[videoID]
	blocking := s.blocking
	s.mu.Unlock()
	if blocking {
		<-s.release
	}
	if !ok {
		res = analysisclient.Result{
			Summary:      "stub summary for " + videoID,
			CommentsData: []int{100, 50, 30, 20},
		}
	}
	return res
}

func (s *stubAnalyzer) callCount(videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[videoID]
}

func (s *stubAnalyzer) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

type fixture struct {
	host     *page.Host
	kv       *page.MemoryKV
	auth     *authstate.Cache
	analyzer *stubAnalyzer
	renderer *overlay.Renderer
	ctrl     *Controller
}

func newFixture(t *testing.T, url string, withComments bool) *fixture {
	t.Helper()
	host := page.NewHost(url)
	if withComments {
		comments := page.NewElement("div")
		comments.ID = overlay.CommentsSectionID
		host.Document().Append(host.Document().Body(), comments)
	}
	kv := page.NewMemoryKV()
	auth := authstate.New(kv)
	ids := videoid.NewTracker(host, host)
	analyzer := newStubAnalyzer()
	renderer := overlay.New(host.Document(), analyzer, ids.Current)
	ctrl := New(ids, auth, renderer)
	return &fixture{host: host, kv: kv, auth: auth, analyzer: analyzer, renderer: renderer, ctrl: ctrl}
}

func (f *fixture) login(ctx context.Context, t *testing.T, token string) {
	t.Helper()
	require.NoError(t, f.kv.Set(ctx, authstate.StorageKey, token))
}

func TestUnauthenticatedShowsLoginPromptWithoutNetwork(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)

	f.ctrl.Evaluate(ctx)

	assert.Equal(t, RenderingLogin, f.ctrl.State())
	assert.Equal(t, overlay.VariantLogin, f.renderer.Variant())
	assert.Zero(t, f.analyzer.totalCalls(), "no network call may be made without credentials")
}

func TestEvaluateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	f.login(ctx, t, "tok")
	require.NoError(t, f.auth.Refresh(ctx))

	f.ctrl.Evaluate(ctx)
	f.ctrl.Evaluate(ctx)
	f.renderer.Wait()

	doc := f.host.Document()
	assert.Equal(t, 1, doc.CountByClass(overlay.ContainerClass))
	assert.Equal(t, 1, doc.CountByClass(overlay.HeaderClass))
	assert.Equal(t, 1, f.analyzer.callCount("abc123"), "second evaluation must not refetch")
	assert.Equal(t, Idle, f.ctrl.State(), "unchanged state settles back to idle")
}

func TestAuthenticatedRenderFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	f.analyzer.results["abc123"] = analysisclient.Result{
		Summary:             "Viewers loved it",
		Verdict:             2,
		TotalComments:       "1234",
		MostHelpfulComments: []string{"great!"},
		CommentsData:        []int{100, 50, 40, 10},
	}
	f.login(ctx, t, "tok")
	require.NoError(t, f.auth.Refresh(ctx))

	f.ctrl.Evaluate(ctx)
	f.renderer.Wait()

	doc := f.host.Document()
	assert.Equal(t, overlay.VariantAnalysis, f.renderer.Variant())
	assert.Equal(t, overlay.StateReady, f.renderer.State())

	verdictText := doc.FindByClass(overlay.VerdictTextClass)
	require.NotNil(t, verdictText)
	assert.Equal(t, "Mostly Positive", verdictText.Text)

	list := doc.FindByClass(overlay.HelpfulListClass)
	require.NotNil(t, list)
	require.Len(t, list.Children, 1)
	assert.Equal(t, "great!", list.Children[0].Text)

	chart := f.renderer.Charts().Get(overlay.ChartCanvasID)
	require.NotNil(t, chart)
	assert.InDeltaSlice(t, []float64{50, 40, 10}, chart.Percentages(), 0.001)
}

func TestAtMostOneVariantAcrossAuthTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	cancel := f.auth.OnChange(func(string) { f.ctrl.AuthChanged(ctx) })
	defer cancel()

	// Unauthenticated first visit.
	f.ctrl.Evaluate(ctx)
	assert.Equal(t, overlay.VariantLogin, f.renderer.Variant())

	// Login from another tab.
	f.login(ctx, t, "tok")
	f.renderer.Wait()
	doc := f.host.Document()
	assert.Equal(t, overlay.VariantAnalysis, f.renderer.Variant())
	assert.Equal(t, 1, doc.CountByClass(overlay.ContainerClass))

	// Logout.
	require.NoError(t, f.kv.Delete(ctx, authstate.StorageKey))
	assert.Equal(t, overlay.VariantLogin, f.renderer.Variant())
	assert.Equal(t, 1, doc.CountByClass(overlay.ContainerClass))
	assert.Equal(t, 1, doc.CountByClass(overlay.HeaderClass))
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	f.analyzer.results["abc123"] = analysisclient.Result{Summary: "stale A"}
	f.analyzer.results["xyz789"] = analysisclient.Result{Summary: "fresh B", Verdict: 1}
	f.analyzer.blocking = true
	f.login(ctx, t, "tok")
	require.NoError(t, f.auth.Refresh(ctx))

	// Mount for A; its response is held in flight.
	f.ctrl.Evaluate(ctx)

	// Navigate to B before A resolves.
	f.host.PushState("https://www.youtube.com/watch?v=xyz789")
	f.ctrl.Evaluate(ctx)

	// Release both responses and settle.
	close(f.analyzer.release)
	f.renderer.Wait()

	doc := f.host.Document()
	text := doc.FindByClass(overlay.SummaryTextClass)
	require.NotNil(t, text)
	assert.Equal(t, "fresh B", text.Text, "video A's late response must not overwrite B's panel")
}

func TestNavigationReplacesOverlayWithSingleRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	f.analyzer.results["abc123"] = analysisclient.Result{
		Summary:             "first",
		MostHelpfulComments: []string{"old comment"},
	}
	f.analyzer.results["xyz789"] = analysisclient.Result{Summary: "second"}
	f.login(ctx, t, "tok")
	require.NoError(t, f.auth.Refresh(ctx))

	f.ctrl.Evaluate(ctx)
	f.renderer.Wait()

	f.host.PushState("https://www.youtube.com/watch?v=xyz789")
	f.ctrl.Evaluate(ctx)
	// Duplicate triggers racing on the same navigation.
	f.ctrl.Evaluate(ctx)
	f.ctrl.Evaluate(ctx)
	f.renderer.Wait()

	assert.Equal(t, 1, f.analyzer.callCount("xyz789"), "exactly one request per navigation")

	doc := f.host.Document()
	assert.Equal(t, 1, doc.CountByClass(overlay.ContainerClass))
	list := doc.FindByClass(overlay.HelpfulListClass)
	require.NotNil(t, list)
	assert.Empty(t, list.Children, "previous video's helpful comments must be cleared")
}

func TestNonVideoPageIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/feed/subscriptions", true)

	f.ctrl.Evaluate(ctx)

	assert.Equal(t, Idle, f.ctrl.State())
	assert.False(t, f.renderer.OverlayPresent())
	assert.Zero(t, f.analyzer.totalCalls())
}

func TestMissingCommentsSectionRetriesNextTick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", false)
	f.login(ctx, t, "tok")
	require.NoError(t, f.auth.Refresh(ctx))

	f.ctrl.Evaluate(ctx)
	assert.Equal(t, Idle, f.ctrl.State())
	assert.False(t, f.renderer.OverlayPresent())

	// The host app attaches the comments section later; the next tick mounts.
	comments := page.NewElement("div")
	comments.ID = overlay.CommentsSectionID
	f.host.Document().Append(f.host.Document().Body(), comments)

	f.ctrl.Evaluate(ctx)
	f.renderer.Wait()
	assert.Equal(t, overlay.VariantAnalysis, f.renderer.Variant())
}

func TestRestoredVideoIDSuppressesSpuriousRender(t *testing.T) {
	ctx := context.Background()
	host := page.NewHost("https://www.youtube.com/watch?v=abc123")
	comments := page.NewElement("div")
	comments.ID = overlay.CommentsSectionID
	host.Document().Append(host.Document().Body(), comments)
	kv := page.NewMemoryKV()
	auth := authstate.New(kv)
	ids := videoid.NewTracker(host, host)
	analyzer := newStubAnalyzer()
	renderer := overlay.New(host.Document(), analyzer, ids.Current)

	require.NoError(t, kv.Set(ctx, authstate.StorageKey, "tok"))
	require.NoError(t, auth.Refresh(ctx))

	first := New(ids, auth, renderer)
	first.Evaluate(ctx)
	renderer.Wait()
	require.Equal(t, 1, analyzer.callCount("abc123"))

	// The host page tears the script down and reinjects it on the same
	// video; the persisted slot plus the surviving overlay suppress a
	// second render.
	second := New(ids, auth, renderer)
	second.Evaluate(ctx)
	renderer.Wait()
	assert.Equal(t, 1, analyzer.callCount("abc123"), "reinjection on the same video must not refetch")
}

func TestShutdownUnmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "https://www.youtube.com/watch?v=abc123", true)
	f.ctrl.Evaluate(ctx)
	require.True(t, f.renderer.OverlayPresent())

	f.ctrl.Shutdown()
	assert.False(t, f.renderer.OverlayPresent())
	assert.Equal(t, Idle, f.ctrl.State())
}
