package vulkan

import (
	"sync"
	"testing"

	"github.com/Lakasabasz/Vulkan-test/engine/math"
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

func TestLockPoolSerializesGroup(t *testing.T) {
	pool := NewVulkanLockPool()
	inside := 0
	maxInside := 0
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(BufferManagement, func() error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("%d callers inside the same lock group", maxInside)
	}
}

func TestLockPoolPropagatesErrors(t *testing.T) {
	pool := NewVulkanLockPool()
	sentinel := errors.New("boom")
	if err := pool.SafeQueueCall(0, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("got %v", err)
	}
	// The lock must have been released.
	if err := pool.SafeQueueCall(0, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
}

func TestVertex2DAttributes(t *testing.T) {
	attrs := vertex2DAttributes()
	if len(attrs) != 2 {
		t.Fatalf("got %d attributes", len(attrs))
	}
	if attrs[0].Format != vk.FormatR32g32Sfloat || attrs[0].Offset != 0 {
		t.Errorf("position attribute %+v", attrs[0])
	}
	if attrs[1].Format != vk.FormatR32g32b32Sfloat || attrs[1].Offset != 8 {
		t.Errorf("colour attribute %+v", attrs[1])
	}
	if attrs[1].Offset+12 != math.Vertex2DStride {
		t.Errorf("stride %d does not cover the colour attribute", math.Vertex2DStride)
	}
}
