package page

import (
	"strings"
	"sync"
)

// Element is a node in the host document tree. Structural changes must go
// through Document methods so mutation observers fire; text and attribute
// updates go through the Set* helpers so readers on other goroutines see a
// consistent tree.
type Element struct {
	Tag      string
	ID       string
	Class    string
	Text     string
	Disabled bool
	Attrs    map[string]string
	Children []*Element

	parent *Element
}

// NewElement builds a detached element.
func NewElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: map[string]string{}}
}

// Parent returns the element's current parent, or nil if detached.
func (e *Element) Parent() *Element { return e.parent }

func (e *Element) hasClass(class string) bool {
	for _, c := range strings.Fields(e.Class) {
		if c == class {
			return true
		}
	}
	return false
}

// Document is the mutable tree the overlay is mounted into. It stands in for
// the host page's DOM: queries, structural mutation and a mutation
// subscription feed.
type Document struct {
	mu   sync.RWMutex
	root *Element

	subMu sync.Mutex
	subs  map[int]func()
	next  int
}

func NewDocument() *Document {
	return &Document{
		root: NewElement("body"),
		subs: map[int]func(){},
	}
}

// Body returns the document root.
func (d *Document) Body() *Element { return d.root }

// FindByID returns the first element with the given id, or nil.
func (d *Document) FindByID(id string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return find(d.root, func(e *Element) bool { return e.ID == id })
}

// FindByClass returns the first element carrying the given class, or nil.
func (d *Document) FindByClass(class string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return find(d.root, func(e *Element) bool { return e.hasClass(class) })
}

// CountByClass returns how many elements carry the given class.
func (d *Document) CountByClass(class string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := 0
	walk(d.root, func(e *Element) {
		if e.hasClass(class) {
			n++
		}
	})
	return n
}

// Append attaches node as the last child of parent.
func (d *Document) Append(parent, node *Element) {
	d.mu.Lock()
	detachLocked(node)
	node.parent = parent
	parent.Children = append(parent.Children, node)
	d.mu.Unlock()
	d.notify()
}

// InsertBefore attaches node as a child of parent, before ref. A nil ref
// appends at the end.
func (d *Document) InsertBefore(parent, node, ref *Element) {
	d.mu.Lock()
	detachLocked(node)
	node.parent = parent
	idx := len(parent.Children)
	for i, c := range parent.Children {
		if c == ref {
			idx = i
			break
		}
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = node
	d.mu.Unlock()
	d.notify()
}

// Remove detaches node from its parent. Removing a detached node is a no-op.
func (d *Document) Remove(node *Element) {
	d.mu.Lock()
	removed := node.parent != nil
	detachLocked(node)
	d.mu.Unlock()
	if removed {
		d.notify()
	}
}

// SetText updates an element's text content.
func (d *Document) SetText(e *Element, text string) {
	d.mu.Lock()
	e.Text = text
	d.mu.Unlock()
}

// SetAttr updates a single attribute.
func (d *Document) SetAttr(e *Element, key, value string) {
	d.mu.Lock()
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[key] = value
	d.mu.Unlock()
}

// SetDisabled toggles an element's disabled flag.
func (d *Document) SetDisabled(e *Element, disabled bool) {
	d.mu.Lock()
	e.Disabled = disabled
	d.mu.Unlock()
}

// ClearChildren removes all children from an element.
func (d *Document) ClearChildren(e *Element) {
	d.mu.Lock()
	for _, c := range e.Children {
		c.parent = nil
	}
	e.Children = nil
	d.mu.Unlock()
	d.notify()
}

// OnMutation registers a callback fired after every structural change.
// The returned func cancels the subscription.
func (d *Document) OnMutation(fn func()) (cancel func()) {
	d.subMu.Lock()
	id := d.next
	d.next++
	d.subs[id] = fn
	d.subMu.Unlock()
	return func() {
		d.subMu.Lock()
		delete(d.subs, id)
		d.subMu.Unlock()
	}
}

func (d *Document) notify() {
	d.subMu.Lock()
	fns := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		fns = append(fns, fn)
	}
	d.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func detachLocked(node *Element) {
	p := node.parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == node {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	node.parent = nil
}

func find(e *Element, match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, c := range e.Children {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(e *Element, visit func(*Element)) {
	visit(e)
	for _, c := range e.Children {
		walk(c, visit)
	}
}
