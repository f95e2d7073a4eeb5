package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueriesWalkTheTree(t *testing.T) {
	d := NewDocument()
	outer := NewElement("div")
	outer.Class = "wrapper"
	inner := NewElement("span")
	inner.ID = "target"
	inner.Class = "wrapper highlighted"
	d.Append(d.Body(), outer)
	d.Append(outer, inner)

	assert.Same(t, inner, d.FindByID("target"))
	assert.Nil(t, d.FindByID("missing"))
	assert.Same(t, outer, d.FindByClass("wrapper"), "first match in document order")
	assert.Same(t, inner, d.FindByClass("highlighted"))
	assert.Equal(t, 2, d.CountByClass("wrapper"))
}

func TestInsertBeforeOrdersChildren(t *testing.T) {
	d := NewDocument()
	a, b, c := NewElement("div"), NewElement("div"), NewElement("div")
	d.Append(d.Body(), a)
	d.Append(d.Body(), c)
	d.InsertBefore(d.Body(), b, c)

	require.Len(t, d.Body().Children, 3)
	assert.Same(t, a, d.Body().Children[0])
	assert.Same(t, b, d.Body().Children[1])
	assert.Same(t, c, d.Body().Children[2])

	// nil ref appends.
	tail := NewElement("div")
	d.InsertBefore(d.Body(), tail, nil)
	assert.Same(t, tail, d.Body().Children[3])
}

func TestAppendReparents(t *testing.T) {
	d := NewDocument()
	from := NewElement("div")
	to := NewElement("div")
	node := NewElement("span")
	d.Append(d.Body(), from)
	d.Append(d.Body(), to)
	d.Append(from, node)
	d.Append(to, node)

	assert.Empty(t, from.Children)
	assert.Same(t, to, node.Parent())
}

func TestRemoveAndClearChildren(t *testing.T) {
	d := NewDocument()
	parent := NewElement("div")
	child := NewElement("span")
	d.Append(d.Body(), parent)
	d.Append(parent, child)

	d.Remove(child)
	assert.Nil(t, child.Parent())
	assert.Empty(t, parent.Children)
	d.Remove(child) // detached, no-op

	d.Append(parent, NewElement("span"))
	d.Append(parent, NewElement("span"))
	d.ClearChildren(parent)
	assert.Empty(t, parent.Children)
}

func TestMutationSubscription(t *testing.T) {
	d := NewDocument()
	fired := 0
	cancel := d.OnMutation(func() { fired++ })

	node := NewElement("div")
	d.Append(d.Body(), node)
	assert.Equal(t, 1, fired)

	// Text and attribute updates are not structural changes.
	d.SetText(node, "hello")
	d.SetAttr(node, "data-variant", "login")
	d.SetDisabled(node, true)
	assert.Equal(t, 1, fired)

	d.Remove(node)
	assert.Equal(t, 2, fired)
	d.Remove(node) // detached removes stay silent
	assert.Equal(t, 2, fired)

	cancel()
	d.Append(d.Body(), NewElement("div"))
	assert.Equal(t, 2, fired)
}

func TestSessionSlotIsPageScoped(t *testing.T) {
	h := NewHost("https://www.youtube.com/watch?v=a")
	assert.Empty(t, h.SessionGet("k"))
	h.SessionSet("k", "v")
	assert.Equal(t, "v", h.SessionGet("k"))

	// Navigation keeps the slot; only a new host (new page) drops it.
	h.PushState("https://www.youtube.com/watch?v=b")
	assert.Equal(t, "v", h.SessionGet("k"))
	assert.Empty(t, NewHost("https://www.youtube.com/watch?v=b").SessionGet("k"))
}
