package printer

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Lines(t *testing.T) {
	var out bytes.Buffer
	p := New(&out)

	p.Printf("plain %d", 1)
	p.Success("Saved", "doc.md")
	p.Warnf("careful")
	p.Errorf("failed: %s", "boom")

	s := out.String()
	assert.Contains(t, s, "plain 1\n")
	assert.Contains(t, s, "Saved")
	assert.Contains(t, s, "doc.md")
	assert.Contains(t, s, "careful")
	assert.Contains(t, s, "failed: boom")
}

func TestPrinter_Defer(t *testing.T) {
	var out bytes.Buffer
	p := New(&out)

	p.Defer()
	p.Printf("later")
	assert.Empty(t, out.String())

	require.NoError(t, p.Flush())
	assert.Equal(t, "later\n", out.String())

	p.Printf("now")
	assert.Equal(t, "later\nnow\n", out.String())
	require.NoError(t, p.Flush())
}

func TestPrinter_DeferConcurrent(t *testing.T) {
	var out bytes.Buffer
	p := New(&out)
	p.Defer()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Printf("x")
		}()
	}
	wg.Wait()

	require.NoError(t, p.Flush())
	assert.Equal(t, 20, out.Len())
}

func TestCtx(t *testing.T) {
	var out bytes.Buffer
	p := New(&out)

	ctx := NewContext(context.Background(), p)
	assert.Same(t, p, Ctx(ctx))
	assert.NotNil(t, Ctx(context.Background()))
}
