package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedJob(t *testing.T) {
	p := New(1)
	defer p.Close()

	done := make(chan struct{})
	ok := p.Submit(context.Background(), func(context.Context) { close(done) })
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestPoolDropsWhenQueueFull(t *testing.T) {
	p := New(1)
	defer p.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	require.True(t, p.Submit(context.Background(), func(context.Context) {
		close(started)
		<-block
	}))
	<-started

	// One job fits the queue while the runner is busy; the next is dropped.
	first := p.Submit(context.Background(), func(context.Context) {})
	var second bool
	if first {
		second = p.Submit(context.Background(), func(context.Context) {})
	}
	assert.False(t, first && second, "two queued jobs accepted behind a busy runner")

	close(block)
}

func TestPoolSkipsJobWithDoneContext(t *testing.T) {
	p := New(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	require.True(t, p.Submit(ctx, func(context.Context) { ran.Store(true) }))
	p.Close()
	assert.False(t, ran.Load())
}

func TestPoolCloseDrainsQueuedWork(t *testing.T) {
	p := New(1)
	var ran atomic.Int32
	require.True(t, p.Submit(context.Background(), func(context.Context) { ran.Add(1) }))
	p.Close()
	assert.Equal(t, int32(1), ran.Load())
}
