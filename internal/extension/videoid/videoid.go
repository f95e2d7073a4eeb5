// Package videoid tracks which video the overlay belongs to. The id is parsed
// from the watch page URL and mirrored into a page-lifetime session slot so a
// reinjected script on the same video does not trigger a spurious re-render.
package videoid

import "net/url"

// SlotKey names the session slot holding the persisted video id.
const SlotKey = "yt_analyzer_current_video"

// Location yields the active page URL.
type Location interface {
	Location() string
}

// SessionSlot is a same-tab string slot that survives script reinjection but
// not a full navigation away from the origin.
type SessionSlot interface {
	SessionGet(key string) string
	SessionSet(key, value string)
}

type Tracker struct {
	loc  Location
	slot SessionSlot
}

func NewTracker(loc Location, slot SessionSlot) *Tracker {
	return &Tracker{loc: loc, slot: slot}
}

// Current parses the video id from the page URL's "v" query parameter.
// A non-video page reports ok=false; that is a no-op signal, not an error.
func (t *Tracker) Current() (string, bool) {
	u, err := url.Parse(t.loc.Location())
	if err != nil {
		return "", false
	}
	id := u.Query().Get("v")
	return id, id != ""
}

// Persist writes the id to the session slot.
func (t *Tracker) Persist(id string) {
	t.slot.SessionSet(SlotKey, id)
}

// Restore reads the persisted id; "" when nothing was persisted.
func (t *Tracker) Restore() string {
	return t.slot.SessionGet(SlotKey)
}
