package view

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLookup(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	d.Append("posts", &Node{ID: "post-1", Class: "post"})
	d.Append("posts", &Node{ID: "post-2", Class: "post"})

	assert.True(t, d.Contains("post-1"))
	assert.False(t, d.Contains("post-3"))
	assert.Equal(t, 2, d.Len("posts"))
	assert.Equal(t, []string{"post-1", "post-2"}, d.IDs("posts"))
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	d.Remove("post-99")
	assert.Equal(t, 0, d.Len("posts"))

	d.Append("posts", &Node{ID: "post-1"})
	d.Remove("post-1")
	assert.False(t, d.Contains("post-1"))
	assert.Equal(t, 0, d.Len("posts"))
}

func TestAppendReplacesExistingID(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	d.Append("posts", &Node{ID: "post-1", Text: "first"})
	d.Append("posts", &Node{ID: "post-1", Text: "second"})

	assert.Equal(t, 1, d.Len("posts"))
	n := d.Get("post-1")
	require.NotNil(t, n)
	assert.Equal(t, "second", n.Text)

	// One Remove must clear the id entirely.
	d.Remove("post-1")
	assert.False(t, d.Contains("post-1"))
	assert.Equal(t, 0, d.Len("posts"))
}

func TestAppendIfAbsentInsertsOnce(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	assert.True(t, d.AppendIfAbsent("posts", &Node{ID: "post-1", Text: "first"}))
	assert.False(t, d.AppendIfAbsent("posts", &Node{ID: "post-1", Text: "late"}))

	assert.Equal(t, 1, d.Len("posts"))
	assert.Equal(t, "first", d.Get("post-1").Text)
}

func TestAppendIfAbsentUnderContention(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	var wg sync.WaitGroup
	var inserted atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.AppendIfAbsent("posts", &Node{ID: "post-1"}) {
				inserted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), inserted.Load())
	assert.Equal(t, 1, d.Len("posts"))
}

func TestVisibilityAndHiddenAreIndependent(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	d.Append("posts", &Node{ID: "post-1"})
	d.SetVisible("post-1", true)
	d.SetHidden("post-1", true)

	n := d.Get("post-1")
	require.NotNil(t, n)
	assert.True(t, n.Visible)
	assert.True(t, n.Hidden)
}

func TestObserverSeesChangesInOrder(t *testing.T) {
	var mu sync.Mutex
	var ops []string
	d := NewDocument(func(c Change) {
		mu.Lock()
		ops = append(ops, c.Op+":"+c.NodeID)
		mu.Unlock()
	})
	defer d.Close()

	d.Append("posts", &Node{ID: "post-1"})
	d.SetVisible("post-1", true)
	d.SetText("post-1", "x")
	d.Remove("post-1")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"append:post-1", "show:post-1", "text:post-1", "remove:post-1"}, ops)
}

func TestConcurrentAppends(t *testing.T) {
	d := NewDocument(nil)
	defer d.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Append("posts", &Node{ID: nodeID(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, d.Len("posts"))
}

func TestOperationsAfterCloseAreNoops(t *testing.T) {
	d := NewDocument(nil)
	d.Append("posts", &Node{ID: "post-1"})
	d.Close()

	// Must not deadlock or panic.
	d.Append("posts", &Node{ID: "post-2"})
	d.Remove("post-1")
	assert.False(t, d.Contains("post-2"))
}

func nodeID(i int) string {
	return "post-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
}
