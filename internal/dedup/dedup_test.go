package dedup

import (
	"context"
	"testing"
)

func TestMemory_SeenAfterMark(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if c.Seen(ctx, "https://example.com/1") {
		t.Error("fresh cache should not report seen")
	}
	c.Mark(ctx, "https://example.com/1")
	if !c.Seen(ctx, "https://example.com/1") {
		t.Error("marked url should be seen")
	}
	if c.Seen(ctx, "https://example.com/2") {
		t.Error("unrelated url should not be seen")
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Mark(ctx, "https://example.com/x")
				c.Seen(ctx, "https://example.com/x")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if !c.Seen(ctx, "https://example.com/x") {
		t.Error("url should be seen after concurrent marks")
	}
}
