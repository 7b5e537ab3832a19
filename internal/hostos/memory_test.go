package hostos

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryAllocateMajorTopDown(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	first, err := h.AllocateMajor(ctx, "dev-a")
	if err != nil {
		t.Fatalf("AllocateMajor() error = %v", err)
	}
	if first != DynamicMajorMax {
		t.Errorf("first major = %d, want %d", first, DynamicMajorMax)
	}

	second, err := h.AllocateMajor(ctx, "dev-b")
	if err != nil {
		t.Fatalf("AllocateMajor() error = %v", err)
	}
	if second != DynamicMajorMax-1 {
		t.Errorf("second major = %d, want %d", second, DynamicMajorMax-1)
	}
}

func TestMemoryAllocateMajorNameTaken(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	if _, err := h.AllocateMajor(ctx, "chardev"); err != nil {
		t.Fatalf("AllocateMajor() error = %v", err)
	}
	if _, err := h.AllocateMajor(ctx, "chardev"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("AllocateMajor() error = %v, want ErrNameTaken", err)
	}
}

func TestMemoryAllocateMajorExhaustion(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	total := int(DynamicMajorMax-DynamicMajorMin) + 1
	for i := 0; i < total; i++ {
		if _, err := h.AllocateMajor(ctx, fmt.Sprintf("dev-%d", i)); err != nil {
			t.Fatalf("AllocateMajor() #%d error = %v", i, err)
		}
	}

	if _, err := h.AllocateMajor(ctx, "one-too-many"); !errors.Is(err, ErrMajorsExhausted) {
		t.Errorf("AllocateMajor() error = %v, want ErrMajorsExhausted", err)
	}
}

func TestMemoryReleaseMajor(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	major, err := h.AllocateMajor(ctx, "chardev")
	if err != nil {
		t.Fatalf("AllocateMajor() error = %v", err)
	}

	if err := h.ReleaseMajor(ctx, major, "imposter"); !errors.Is(err, ErrMajorNotAllocated) {
		t.Errorf("ReleaseMajor() with wrong name error = %v, want ErrMajorNotAllocated", err)
	}
	if err := h.ReleaseMajor(ctx, major, "chardev"); err != nil {
		t.Fatalf("ReleaseMajor() error = %v", err)
	}
	if err := h.ReleaseMajor(ctx, major, "chardev"); !errors.Is(err, ErrMajorNotAllocated) {
		t.Errorf("double ReleaseMajor() error = %v, want ErrMajorNotAllocated", err)
	}

	// Released major goes back to the free pool.
	again, err := h.AllocateMajor(ctx, "chardev")
	if err != nil {
		t.Fatalf("AllocateMajor() after release error = %v", err)
	}
	if again != major {
		t.Errorf("re-allocated major = %d, want %d", again, major)
	}
}

func TestMemoryClassLifecycle(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	class, err := h.RegisterClass(ctx, "chardev", "chard")
	if err != nil {
		t.Fatalf("RegisterClass() error = %v", err)
	}
	if class.ID == "" || class.Name != "chard" || class.Owner != "chardev" {
		t.Errorf("RegisterClass() = %+v, want populated handle", class)
	}

	if _, err := h.RegisterClass(ctx, "other", "chard"); !errors.Is(err, ErrClassExists) {
		t.Errorf("duplicate RegisterClass() error = %v, want ErrClassExists", err)
	}

	// Unregistering hides the name; a new class can then take it.
	if err := h.UnregisterClass(ctx, class); err != nil {
		t.Fatalf("UnregisterClass() error = %v", err)
	}
	replacement, err := h.RegisterClass(ctx, "other", "chard")
	if err != nil {
		t.Fatalf("RegisterClass() after unregister error = %v", err)
	}

	// The unregistered object still exists until destroyed.
	if err := h.DestroyClass(ctx, class); err != nil {
		t.Fatalf("DestroyClass() error = %v", err)
	}
	if err := h.DestroyClass(ctx, class); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("double DestroyClass() error = %v, want ErrClassNotFound", err)
	}

	if err := h.UnregisterClass(ctx, Class{ID: "missing"}); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("UnregisterClass() unknown error = %v, want ErrClassNotFound", err)
	}

	if err := h.DestroyClass(ctx, replacement); err != nil {
		t.Fatalf("DestroyClass(replacement) error = %v", err)
	}
	if _, classes, _ := h.Leaks(); classes != 0 {
		t.Errorf("Leaks() classes = %d, want 0", classes)
	}
}

func TestMemoryNodeLifecycle(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	class, err := h.RegisterClass(ctx, "chardev", "chard")
	if err != nil {
		t.Fatalf("RegisterClass() error = %v", err)
	}

	if _, err := h.CreateNode(ctx, Class{ID: "missing"}, 254, 0, "chardev"); !errors.Is(err, ErrClassNotFound) {
		t.Errorf("CreateNode() under unknown class error = %v, want ErrClassNotFound", err)
	}

	node, err := h.CreateNode(ctx, class, 254, 0, "chardev")
	if err != nil {
		t.Fatalf("CreateNode() error = %v", err)
	}
	if node.Name != "chardev" || node.Major != 254 || node.Minor != 0 {
		t.Errorf("CreateNode() = %+v, want chardev 254:0", node)
	}

	if _, err := h.CreateNode(ctx, class, 253, 0, "chardev"); !errors.Is(err, ErrNodeExists) {
		t.Errorf("duplicate CreateNode() error = %v, want ErrNodeExists", err)
	}

	if err := h.DestroyNode(ctx, node); err != nil {
		t.Fatalf("DestroyNode() error = %v", err)
	}
	if err := h.DestroyNode(ctx, node); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("double DestroyNode() error = %v, want ErrNodeNotFound", err)
	}
}

func TestMemoryFullCycleLeavesNoLeaks(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHost()

	major, err := h.AllocateMajor(ctx, "chardev")
	if err != nil {
		t.Fatalf("AllocateMajor() error = %v", err)
	}
	class, err := h.RegisterClass(ctx, "chardev", "chard")
	if err != nil {
		t.Fatalf("RegisterClass() error = %v", err)
	}
	node, err := h.CreateNode(ctx, class, major, 0, "chardev")
	if err != nil {
		t.Fatalf("CreateNode() error = %v", err)
	}

	if err := h.DestroyNode(ctx, node); err != nil {
		t.Fatalf("DestroyNode() error = %v", err)
	}
	if err := h.UnregisterClass(ctx, class); err != nil {
		t.Fatalf("UnregisterClass() error = %v", err)
	}
	if err := h.DestroyClass(ctx, class); err != nil {
		t.Fatalf("DestroyClass() error = %v", err)
	}
	if err := h.ReleaseMajor(ctx, major, "chardev"); err != nil {
		t.Fatalf("ReleaseMajor() error = %v", err)
	}

	if majors, classes, nodes := h.Leaks(); majors != 0 || classes != 0 || nodes != 0 {
		t.Errorf("Leaks() = (%d, %d, %d), want (0, 0, 0)", majors, classes, nodes)
	}
}
