package series

import (
	"fmt"
	"sync"
	"testing"
)

func TestTracePendingResolvedInPlace(t *testing.T) {
	trace := NewTrace(0)
	trace.Append(StatusInfo, "starting", "")
	id := trace.Append(StatusPending, "fetching", "")
	trace.Append(StatusInfo, "other work", "")

	trace.Resolve(id, StatusSuccess, "fetched 10 rows", "")

	steps := trace.Steps()
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[1].Status != StatusSuccess || steps[1].Message != "fetched 10 rows" {
		t.Fatalf("pending step not resolved in place: %+v", steps[1])
	}
	if steps[0].Message != "starting" || steps[2].Message != "other work" {
		t.Fatal("resolving a step must not disturb its neighbors")
	}
}

func TestTraceBounded(t *testing.T) {
	trace := NewTrace(2)
	trace.Append(StatusInfo, "one", "")
	trace.Append(StatusInfo, "two", "")
	trace.Append(StatusInfo, "three", "")
	trace.Append(StatusInfo, "four", "")

	steps := trace.Steps()
	if len(steps) != 3 {
		t.Fatalf("expected 2 steps plus a truncation warning, got %d", len(steps))
	}
	last := steps[len(steps)-1]
	if last.Status != StatusWarning {
		t.Fatalf("expected closing truncation warning, got %+v", last)
	}
}

func TestTraceResolveIgnoresDroppedIds(t *testing.T) {
	trace := NewTrace(1)
	trace.Append(StatusInfo, "kept", "")
	id := trace.Append(StatusPending, "dropped", "")

	trace.Resolve(id, StatusSuccess, "should be ignored", "")

	steps := trace.Steps()
	if steps[0].Message != "kept" {
		t.Fatalf("retained step was clobbered: %+v", steps[0])
	}
}

func TestTraceConcurrentAppends(t *testing.T) {
	trace := NewTrace(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := trace.Append(StatusPending, fmt.Sprintf("step %d", i), "")
			trace.Resolve(id, StatusSuccess, fmt.Sprintf("step %d done", i), "")
		}()
	}
	wg.Wait()

	if trace.Len() != 50 {
		t.Fatalf("expected 50 steps, got %d", trace.Len())
	}
	for _, step := range trace.Steps() {
		if step.Status != StatusSuccess {
			t.Fatalf("unresolved step after concurrent run: %+v", step)
		}
	}
}
