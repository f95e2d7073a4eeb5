package page

import "sync"

// Host models the environment a content script runs inside: the current
// location, the history API, a page-lifetime session slot and the document.
// The overlay components only see the narrow interfaces they each need, so a
// real browser binding could replace this in-memory host wholesale.
type Host struct {
	mu      sync.RWMutex
	url     string
	doc     *Document
	session map[string]string

	subMu    sync.Mutex
	histSubs map[int]func()
	popSubs  map[int]func()
	next     int
}

func NewHost(rawURL string) *Host {
	return &Host{
		url:      rawURL,
		doc:      NewDocument(),
		session:  map[string]string{},
		histSubs: map[int]func(){},
		popSubs:  map[int]func(){},
	}
}

// Location returns the current page URL.
func (h *Host) Location() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.url
}

// Document returns the host document.
func (h *Host) Document() *Document { return h.doc }

// PushState simulates a programmatic history.pushState navigation.
func (h *Host) PushState(rawURL string) {
	h.setURL(rawURL)
	h.fire(h.histSubs)
}

// ReplaceState simulates history.replaceState.
func (h *Host) ReplaceState(rawURL string) {
	h.setURL(rawURL)
	h.fire(h.histSubs)
}

// PopTo simulates back/forward navigation landing on rawURL.
func (h *Host) PopTo(rawURL string) {
	h.setURL(rawURL)
	h.fire(h.popSubs)
}

// SilentNavigate changes the URL without firing any history or popstate
// event, the way a host app bypassing the patched History API would. Only the
// URL polling source can notice it.
func (h *Host) SilentNavigate(rawURL string) {
	h.setURL(rawURL)
}

// OnHistory registers a callback fired on push/replace navigations.
func (h *Host) OnHistory(fn func()) (cancel func()) {
	return h.subscribe(h.histSubs, fn)
}

// OnPopState registers a callback fired on back/forward navigations.
func (h *Host) OnPopState(fn func()) (cancel func()) {
	return h.subscribe(h.popSubs, fn)
}

// SessionGet reads the page-lifetime slot; absent keys yield "".
func (h *Host) SessionGet(key string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session[key]
}

// SessionSet writes the page-lifetime slot.
func (h *Host) SessionSet(key, value string) {
	h.mu.Lock()
	h.session[key] = value
	h.mu.Unlock()
}

func (h *Host) setURL(rawURL string) {
	h.mu.Lock()
	h.url = rawURL
	h.mu.Unlock()
}

func (h *Host) subscribe(m map[int]func(), fn func()) (cancel func()) {
	h.subMu.Lock()
	id := h.next
	h.next++
	m[id] = fn
	h.subMu.Unlock()
	return func() {
		h.subMu.Lock()
		delete(m, id)
		h.subMu.Unlock()
	}
}

func (h *Host) fire(m map[int]func()) {
	h.subMu.Lock()
	fns := make([]func(), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	h.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
