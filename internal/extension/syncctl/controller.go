// Package syncctl owns the decision of when the overlay is (re)rendered. All
// navigation signals funnel into Evaluate, which reconciles the current video
// id, the cached auth token and the mounted overlay, and drives the renderer
// when they disagree. Evaluations are serialized, and the video-id pre-update
// acts as the de-duplication key for concurrent triggers.
package syncctl

import (
	"context"
	"sync"

	"sentiment-scoop/internal/shared/telemetry"
)

// State is the controller's last evaluation outcome.
type State int

const (
	Idle State = iota
	Evaluating
	RenderingLogin
	RenderingAnalysis
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Evaluating:
		return "evaluating"
	case RenderingLogin:
		return "rendering_login"
	case RenderingAnalysis:
		return "rendering_analysis"
	}
	return "unknown"
}

// Identity tracks the current and persisted video id.
type Identity interface {
	Current() (string, bool)
	Persist(id string)
	Restore() string
}

// Auth exposes the cached token and a durable-store refresh.
type Auth interface {
	Get() string
	Refresh(ctx context.Context) error
}

// Renderer is the overlay surface the controller drives.
type Renderer interface {
	OverlayPresent() bool
	MountLoginPrompt() bool
	MountAnalysisShell(ctx context.Context, videoID string) bool
	Unmount()
}

type Controller struct {
	ids  Identity
	auth Auth
	ui   Renderer

	mu          sync.Mutex
	state       State
	lastVideoID string
}

// New builds a controller. The persisted slot seeds lastVideoID so a script
// reinjected on the same video does not re-render spuriously.
func New(ids Identity, auth Auth, ui Renderer) *Controller {
	return &Controller{
		ids:         ids,
		auth:        auth,
		ui:          ui,
		lastVideoID: ids.Restore(),
	}
}

// State returns the last evaluation outcome.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Evaluate reconciles video id, auth and overlay state. It is safe to call
// from any signal source at any time: calls are serialized, the no-change
// path costs only a couple of tree queries, and any panic is contained here
// with the overlay torn down rather than left half-built.
func (c *Controller) Evaluate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			telemetry.Error("syncctl.evaluate panic", map[string]any{
				"recovered": rec,
				"video_id":  c.lastVideoID,
			})
			c.ui.Unmount()
			c.state = Idle
		}
	}()

	c.state = Evaluating

	videoID, ok := c.ids.Current()
	if !ok {
		// Not a video page; nothing to reconcile.
		c.state = Idle
		return
	}

	// The persisted slot can lag the in-memory value after a forced context
	// reinitialization, so both must agree before skipping.
	persisted := c.ids.Restore()
	needsUpdate := !c.ui.OverlayPresent() ||
		videoID != c.lastVideoID ||
		videoID != persisted

	if !needsUpdate {
		c.state = Idle
		return
	}

	// Commit the id before any asynchronous work: a second trigger racing on
	// the same video change now sees no difference and stops at the check
	// above instead of mounting twice.
	c.lastVideoID = videoID
	c.ids.Persist(videoID)

	token := c.auth.Get()
	if token == "" {
		// Load-order race: the cache may not have caught up with the durable
		// store yet. One re-read before showing the login prompt.
		if err := c.auth.Refresh(ctx); err != nil {
			telemetry.Error("syncctl.auth refresh failed", map[string]any{
				"video_id": videoID,
				"error":    err.Error(),
			})
		}
		token = c.auth.Get()
	}

	if token != "" {
		c.state = RenderingAnalysis
		if !c.ui.MountAnalysisShell(ctx, videoID) {
			// Comments section not attached yet; the next watcher tick
			// retries via the no-overlay clause of needsUpdate.
			c.state = Idle
		}
		return
	}

	c.state = RenderingLogin
	if !c.ui.MountLoginPrompt() {
		c.state = Idle
	}
}

// AuthChanged handles a credential change from any execution context. The
// mounted overlay no longer reflects auth state regardless of the video id,
// so it is dropped and the next evaluation rebuilds the right variant.
func (c *Controller) AuthChanged(ctx context.Context) {
	c.mu.Lock()
	c.ui.Unmount()
	c.mu.Unlock()
	c.Evaluate(ctx)
}

// Shutdown tears the overlay down on page unload.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ui.Unmount()
	c.state = Idle
}
