// Package overlay builds and maintains the injected UI region next to the
// host page's comments section. The overlay exists in exactly one of two
// variants, login prompt or analysis panel, and at most one instance at a
// time; the renderer is the only code that touches the overlay subtree.
package overlay

import (
	"context"
	"sync"

	"sentiment-scoop/internal/extension/analysisclient"
	"sentiment-scoop/internal/extension/page"
	"sentiment-scoop/internal/shared/telemetry"
)

// Overlay element classes, shared with tests and any styling layer.
const (
	HeaderClass          = "yt-comment-analyzer-header"
	ContainerClass       = "yt-comment-analyzer-container"
	LoadingClass         = "yt-comment-analyzer-loading"
	SummaryClass         = "yt-comment-analyzer-summary"
	SummaryTextClass     = "yt-comment-analyzer-summary-text"
	ChartClass           = "yt-comment-analyzer-chart"
	VerdictClass         = "yt-comment-analyzer-verdict"
	VerdictTextClass     = "yt-comment-analyzer-verdict-text"
	TotalCommentsClass   = "yt-comment-analyzer-total-comments"
	HelpfulListClass     = "yt-comment-analyzer-helpful-comments-container"
	HelpfulCommentClass  = "yt-comment-analyzer-helpful-comments"
	ReloadButtonClass    = "yt-comment-analyzer-reload-btn"
	LastUpdatedClass     = "yt-comment-analyzer-last-updated"
	LoginButtonClass     = "yt-comment-analyzer-login-btn"
	CommentsSectionID    = "comments"
	ChartCanvasID        = "commentChart"
	variantAttr          = "data-variant"
	VariantLogin         = "login"
	VariantAnalysis      = "analysis"
)

// RenderState is the tri-state of the analysis variant.
type RenderState int

const (
	StateLoading RenderState = iota
	StateReady
	StateError
)

func (s RenderState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Analyzer issues the analysis request. Satisfied by analysisclient.Client.
type Analyzer interface {
	Analyze(ctx context.Context, videoID string, forceRefresh bool) analysisclient.Result
}

// Renderer owns the overlay subtree.
type Renderer struct {
	doc       *page.Document
	client    Analyzer
	currentID func() (string, bool)
	charts    *ChartRegistry

	mu      sync.Mutex
	loading bool
	state   RenderState

	inflight sync.WaitGroup
}

// New builds a renderer. currentID reports the video the page is on right
// now; responses for any other video are discarded instead of applied.
func New(doc *page.Document, client Analyzer, currentID func() (string, bool)) *Renderer {
	return &Renderer{
		doc:       doc,
		client:    client,
		currentID: currentID,
		charts:    NewChartRegistry(),
	}
}

// OverlayPresent reports whether any overlay variant is mounted.
func (r *Renderer) OverlayPresent() bool {
	return r.doc.FindByClass(ContainerClass) != nil || r.doc.FindByClass(HeaderClass) != nil
}

// Variant returns which overlay variant is mounted, or "" when none is.
func (r *Renderer) Variant() string {
	container := r.doc.FindByClass(ContainerClass)
	if container == nil {
		return ""
	}
	return container.Attrs[variantAttr]
}

// State returns the analysis variant's render state.
func (r *Renderer) State() RenderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until no analysis fetch is in flight. Used by the simulator
// and tests to reach quiescence.
func (r *Renderer) Wait() {
	r.inflight.Wait()
}

// MountLoginPrompt mounts the "please sign in" variant. It is a no-op when
// an overlay of either variant already exists, and reports false when the
// comments section has not been attached yet so the caller can retry on the
// next watcher tick.
func (r *Renderer) MountLoginPrompt() bool {
	if r.OverlayPresent() {
		return true
	}
	comments := r.doc.FindByID(CommentsSectionID)
	if comments == nil {
		return false
	}

	header := r.buildHeader(false)

	container := page.NewElement("div")
	container.Class = ContainerClass
	container.Attrs[variantAttr] = VariantLogin

	prompt := page.NewElement("p")
	prompt.Text = "Please sign in to access comment analysis features"
	container.Children = append(container.Children, prompt)

	loginBtn := page.NewElement("button")
	loginBtn.Class = LoginButtonClass
	loginBtn.Text = "Sign In / Sign Up"
	container.Children = append(container.Children, loginBtn)

	r.mountInto(comments, header, container)
	return true
}

// MountAnalysisShell replaces any existing overlay with the analysis variant
// in loading state and kicks off the fetch for videoID. The shell is fully
// mounted before the request is issued so a slow response never leaves a
// half-built panel behind.
func (r *Renderer) MountAnalysisShell(ctx context.Context, videoID string) bool {
	comments := r.doc.FindByID(CommentsSectionID)
	if comments == nil {
		return false
	}
	r.Unmount()

	header := r.buildHeader(true)
	container := r.buildAnalysisContainer()

	r.mu.Lock()
	r.loading = true
	r.state = StateLoading
	r.mu.Unlock()

	r.mountInto(comments, header, container)
	r.fetch(ctx, videoID, false)
	return true
}

// ForceReload re-requests the current video's analysis with the
// cache-busting flag set. The reload control is disabled while its own
// request is in flight; navigation-triggered renders are unaffected.
func (r *Renderer) ForceReload(ctx context.Context) {
	videoID, ok := r.currentID()
	if !ok {
		return
	}
	container := r.doc.FindByClass(ContainerClass)
	if container == nil || container.Attrs[variantAttr] != VariantAnalysis {
		return
	}

	r.mu.Lock()
	if r.loading {
		r.mu.Unlock()
		return
	}
	r.loading = true
	r.state = StateLoading
	r.mu.Unlock()

	r.showLoading()
	r.fetch(ctx, videoID, true)
}

// UpdateInPlace mutates the mounted analysis panel with a fetched result,
// without remounting the shell, so a manual reload does not flicker the
// whole panel.
func (r *Renderer) UpdateInPlace(res analysisclient.Result) {
	container := r.doc.FindByClass(ContainerClass)
	if container == nil || container.Attrs[variantAttr] != VariantAnalysis {
		telemetry.Warn("overlay.update without analysis panel", nil)
		return
	}

	if loading := r.doc.FindByClass(LoadingClass); loading != nil {
		r.doc.SetAttr(loading, "style", "display:none")
	}
	if summary := r.doc.FindByClass(SummaryClass); summary != nil {
		r.doc.SetAttr(summary, "style", "display:block")
	}
	if chartDiv := r.doc.FindByClass(ChartClass); chartDiv != nil {
		r.doc.SetAttr(chartDiv, "style", "display:block")
	}
	if reload := r.doc.FindByClass(ReloadButtonClass); reload != nil {
		r.doc.SetDisabled(reload, false)
	}

	if text := r.doc.FindByClass(SummaryTextClass); text != nil {
		r.doc.SetText(text, res.Summary)
	}
	if total := r.doc.FindByClass(TotalCommentsClass); total != nil {
		r.doc.SetText(total, "("+res.TotalComments+" Comments)")
	}

	label := VerdictLabel(res.Verdict)
	if label == "Unknown" {
		telemetry.Warn("overlay.unexpected verdict", map[string]any{"verdict": res.Verdict})
	}
	if verdictText := r.doc.FindByClass(VerdictTextClass); verdictText != nil {
		r.doc.SetText(verdictText, label)
	}
	if verdict := r.doc.FindByClass(VerdictClass); verdict != nil {
		for _, child := range verdict.Children {
			if child.Tag == "img" {
				r.doc.SetAttr(child, "src", VerdictIcon(res.Verdict))
			}
		}
	}

	if list := r.doc.FindByClass(HelpfulListClass); list != nil {
		r.doc.ClearChildren(list)
		for _, comment := range res.MostHelpfulComments {
			entry := page.NewElement("div")
			entry.Class = HelpfulCommentClass
			entry.Text = comment
			r.doc.Append(list, entry)
		}
	}

	if updated := r.doc.FindByClass(LastUpdatedClass); updated != nil && res.CreatedAt != "" {
		r.doc.SetText(updated, "Last Updated: "+res.CreatedAt)
	}

	r.charts.Render(ChartCanvasID, res.CommentsData)

	r.mu.Lock()
	r.loading = false
	if res.Failed {
		r.state = StateError
	} else {
		r.state = StateReady
	}
	r.mu.Unlock()
}

// Unmount removes every overlay node of both variants. Idempotent.
func (r *Renderer) Unmount() {
	for {
		container := r.doc.FindByClass(ContainerClass)
		if container == nil {
			break
		}
		r.doc.Remove(container)
	}
	for {
		header := r.doc.FindByClass(HeaderClass)
		if header == nil {
			break
		}
		r.doc.Remove(header)
	}
	r.charts.DestroyAll()
}

// Charts exposes the chart registry for inspection.
func (r *Renderer) Charts() *ChartRegistry { return r.charts }

func (r *Renderer) fetch(ctx context.Context, videoID string, force bool) {
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		res := r.client.Analyze(ctx, videoID, force)

		// The user may have navigated away while the request was in
		// flight; applying the response now would stamp video A's
		// analysis onto video B's panel.
		current, ok := r.currentID()
		if !ok || current != videoID {
			telemetry.Info("overlay.stale response discarded", map[string]any{
				"requested": videoID,
				"current":   current,
			})
			r.mu.Lock()
			r.loading = false
			r.mu.Unlock()
			return
		}
		r.UpdateInPlace(res)
	}()
}

func (r *Renderer) mountInto(comments *page.Element, header, container *page.Element) {
	var first *page.Element
	if len(comments.Children) > 0 {
		first = comments.Children[0]
	}
	r.doc.InsertBefore(comments, header, first)
	r.doc.InsertBefore(comments, container, first)
}

func (r *Renderer) buildHeader(withControls bool) *page.Element {
	header := page.NewElement("div")
	header.Class = HeaderClass

	title := page.NewElement("span")
	title.Text = "Analysis Scoop"
	header.Children = append(header.Children, title)

	icon := page.NewElement("img")
	icon.Attrs["src"] = "images/smeter.png"
	header.Children = append(header.Children, icon)

	tagline := page.NewElement("span")
	tagline.Text = "Your Comments, Our Insights!"
	header.Children = append(header.Children, tagline)

	if withControls {
		updated := page.NewElement("div")
		updated.Class = LastUpdatedClass
		updated.Text = "Last Updated: -"
		header.Children = append(header.Children, updated)

		reload := page.NewElement("button")
		reload.Class = ReloadButtonClass
		reload.Disabled = true
		reload.Attrs["title"] = "Force Reload Analysis"
		header.Children = append(header.Children, reload)
	}
	return header
}

func (r *Renderer) buildAnalysisContainer() *page.Element {
	container := page.NewElement("div")
	container.Class = ContainerClass
	container.Attrs[variantAttr] = VariantAnalysis

	loading := page.NewElement("div")
	loading.Class = LoadingClass
	loading.Text = "Loading Analysis..."
	loading.Attrs["style"] = "display:flex"
	container.Children = append(container.Children, loading)

	summary := page.NewElement("div")
	summary.Class = SummaryClass
	summary.Attrs["style"] = "display:none"

	verdict := page.NewElement("div")
	verdict.Class = VerdictClass
	verdictIcon := page.NewElement("img")
	verdict.Children = append(verdict.Children, verdictIcon)
	verdictText := page.NewElement("span")
	verdictText.Class = VerdictTextClass
	verdict.Children = append(verdict.Children, verdictText)
	totalComments := page.NewElement("span")
	totalComments.Class = TotalCommentsClass
	verdict.Children = append(verdict.Children, totalComments)
	summary.Children = append(summary.Children, verdict)

	summaryText := page.NewElement("div")
	summaryText.Class = SummaryTextClass
	summary.Children = append(summary.Children, summaryText)

	helpfulTitle := page.NewElement("div")
	helpfulTitle.Text = "MOST HELPFUL COMMENTS"
	summary.Children = append(summary.Children, helpfulTitle)

	helpfulList := page.NewElement("div")
	helpfulList.Class = HelpfulListClass
	summary.Children = append(summary.Children, helpfulList)

	container.Children = append(container.Children, summary)

	chartDiv := page.NewElement("div")
	chartDiv.Class = ChartClass
	chartDiv.Attrs["style"] = "display:none"
	canvas := page.NewElement("canvas")
	canvas.ID = ChartCanvasID
	chartDiv.Children = append(chartDiv.Children, canvas)
	container.Children = append(container.Children, chartDiv)

	return container
}

func (r *Renderer) showLoading() {
	if loading := r.doc.FindByClass(LoadingClass); loading != nil {
		r.doc.SetAttr(loading, "style", "display:flex")
	}
	if summary := r.doc.FindByClass(SummaryClass); summary != nil {
		r.doc.SetAttr(summary, "style", "display:none")
	}
	if chartDiv := r.doc.FindByClass(ChartClass); chartDiv != nil {
		r.doc.SetAttr(chartDiv, "style", "display:none")
	}
	if reload := r.doc.FindByClass(ReloadButtonClass); reload != nil {
		r.doc.SetDisabled(reload, true)
	}
}
