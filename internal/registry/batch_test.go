package registry

import (
	"reflect"
	"testing"
)

func TestSplitBatches(t *testing.T) {
	got, err := SplitBatches(5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Batch{
		{Start: 0, End: 2},
		{Start: 2, End: 4},
		{Start: 4, End: 5},
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesSingle(t *testing.T) {
	got, err := SplitBatches(3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Batch{{Start: 0, End: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestSplitBatchesEmpty(t *testing.T) {
	got, err := SplitBatches(0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no batches, got %+v", got)
	}
}

func TestSplitBatchesInvalid(t *testing.T) {
	if _, err := SplitBatches(-1, 1); err == nil {
		t.Fatalf("expected error for negative count")
	}
	if _, err := SplitBatches(10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
