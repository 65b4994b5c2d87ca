package testfixtures

import (
	"sync"
	"testing"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("entry")

	if peek := gen.Peek(); peek != "entry-1" {
		t.Fatalf("expected entry-1 from Peek, got %q", peek)
	}
	first := gen.Next()
	second := gen.NextFunc()()

	if first != "entry-1" || second != "entry-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if issued := gen.Issued(); len(issued) != 2 || issued[1] != "entry-2" {
		t.Fatalf("unexpected issued list: %v", issued)
	}
}

func TestIDGeneratorIsSafeForConcurrentUse(t *testing.T) {
	gen := NewIDGenerator("")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gen.Next()
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range gen.Issued() {
		if seen[id] {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
	if len(seen) != 20 || !seen["id-20"] {
		t.Fatalf("expected id-1 through id-20, got %v", gen.Issued())
	}
}
