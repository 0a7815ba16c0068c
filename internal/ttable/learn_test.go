package ttable

import "testing"

func TestLearnTableRoundTrip(t *testing.T) {
	lt, err := OpenLearnTable("")
	if err != nil {
		t.Fatalf("OpenLearnTable: %v", err)
	}
	defer lt.Close()

	hash := uint64(0xabc123)
	if _, found := lt.Probe(hash); found {
		t.Fatal("expected empty learn table to miss")
	}

	if err := lt.Store(hash, 42); err != nil {
		t.Fatalf("Store: %v", err)
	}
	score, found := lt.Probe(hash)
	if !found || score != 42 {
		t.Errorf("expected score=42 found=true, got score=%d found=%v", score, found)
	}
}

func TestLearnTableAdjustClamps(t *testing.T) {
	lt, err := OpenLearnTable("")
	if err != nil {
		t.Fatalf("OpenLearnTable: %v", err)
	}
	defer lt.Close()

	hash := uint64(7)
	for i := 0; i < 10; i++ {
		if err := lt.Adjust(hash, 50, 100); err != nil {
			t.Fatalf("Adjust: %v", err)
		}
	}
	score, _ := lt.Probe(hash)
	if score != 100 {
		t.Errorf("expected score clamped to 100, got %d", score)
	}
}
