// Package navwatch detects the host page's SPA navigations. No single signal
// is reliable on its own, so four independent sources fan into one debounced
// notification: history push/replace interception, popstate, URL polling and
// comments-subtree mutation. A periodic alive tick backstops them all.
package navwatch

import (
	"sync"
	"time"
)

// PageEvents is the slice of the page host the watcher listens to.
type PageEvents interface {
	Location() string
	OnHistory(fn func()) (cancel func())
	OnPopState(fn func()) (cancel func())
}

// MutationSource feeds DOM structural changes.
type MutationSource interface {
	OnMutation(fn func()) (cancel func())
}

// Config carries the watcher's timing knobs. Zero values pick the defaults.
type Config struct {
	// SettleDelay is the debounce wait after a navigation signal before the
	// controller re-evaluates, giving the host page time to finish its own
	// DOM updates.
	SettleDelay time.Duration
	// PollInterval is how often the URL is compared against the last
	// observed one, covering navigations that bypass the History API.
	PollInterval time.Duration
	// AliveInterval is the safety-net tick that recovers from missed
	// signals.
	AliveInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.SettleDelay <= 0 {
		c.SettleDelay = time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.AliveInterval <= 0 {
		c.AliveInterval = 2 * time.Second
	}
	return c
}

type Watcher struct {
	cfg    Config
	page   PageEvents
	doc    MutationSource
	notify func()
	// commentsPresent gates mutation signals to changes that could have
	// (re)attached the comments section.
	commentsPresent func() bool

	mu      sync.Mutex
	timer   *time.Timer
	cancels []func()
	stopCh  chan struct{}
	stopped bool
	lastURL string
}

// New builds a watcher that invokes notify (after the settle delay) whenever
// a possible navigation is observed. Start must be called to arm it.
func New(page PageEvents, doc MutationSource, commentsPresent func() bool, cfg Config, notify func()) *Watcher {
	return &Watcher{
		cfg:             cfg.withDefaults(),
		page:            page,
		doc:             doc,
		notify:          notify,
		commentsPresent: commentsPresent,
		stopCh:          make(chan struct{}),
	}
}

// Start arms all signal sources. Calling Start twice is not supported.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.lastURL = w.page.Location()
	w.mu.Unlock()

	w.addCancel(w.page.OnHistory(w.bump))
	w.addCancel(w.page.OnPopState(w.bump))
	w.addCancel(w.doc.OnMutation(func() {
		if w.commentsPresent == nil || w.commentsPresent() {
			w.bump()
		}
	}))

	go w.pollLoop()
	go w.aliveLoop()
}

// Stop cancels every listener, observer and timer. Idempotent; after Stop no
// further notifications fire.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	cancels := w.cancels
	w.cancels = nil
	w.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// bump schedules a debounced notification: repeated signals within the
// settle delay coalesce into one evaluation.
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.cfg.SettleDelay, func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			w.notify()
		}
	})
}

func (w *Watcher) pollLoop() {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			url := w.page.Location()
			w.mu.Lock()
			changed := url != w.lastURL
			w.lastURL = url
			w.mu.Unlock()
			if changed {
				w.bump()
			}
		}
	}
}

// aliveLoop notifies directly, skipping the debounce: the evaluation's
// no-change path is cheap, and the tick exists precisely to fire when every
// event source missed.
func (w *Watcher) aliveLoop() {
	ticker := time.NewTicker(w.cfg.AliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.mu.Lock()
			stopped := w.stopped
			w.mu.Unlock()
			if stopped {
				return
			}
			w.notify()
		}
	}
}

func (w *Watcher) addCancel(cancel func()) {
	w.mu.Lock()
	w.cancels = append(w.cancels, cancel)
	w.mu.Unlock()
}
