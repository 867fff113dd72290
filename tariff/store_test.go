package tariff

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const minimalDataset = `{"fees": [{"DSO/TSO Selection": "Ores", "Voltage Level": "MT", "Offtake Fixed": 1}], "bess_exemptions": []}`

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(minimalDataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := s.Dataset()
	if len(first.Fees) != 1 {
		t.Fatalf("got %d rows, wanted 1", len(first.Fees))
	}

	var calls, failures int
	s.OnReload(func(ds *Dataset, err error) {
		calls++
		if err != nil {
			failures++
		}
	})

	if err := os.WriteFile(path, []byte(`{"fees": [`), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	if err := s.Reload(); err == nil {
		t.Errorf("expected reload error")
	}
	if s.Dataset() != first {
		t.Errorf("failed reload must keep the previous dataset")
	}

	updated := `{"fees": [{"DSO/TSO Selection": "Ores", "Voltage Level": "MT"}, {"DSO/TSO Selection": "Resa", "Voltage Level": "MT"}], "bess_exemptions": []}`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Dataset().Fees) != 2 {
		t.Errorf("got %d rows, wanted 2", len(s.Dataset().Fees))
	}
	if len(first.Fees) != 1 {
		t.Errorf("published dataset was modified")
	}

	if calls != 2 || failures != 1 {
		t.Errorf("got %d callbacks with %d failures, wanted 2 and 1", calls, failures)
	}
}

func TestNewStoreMissingFile(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestStaticStore(t *testing.T) {
	ds := &Dataset{}
	s := NewStaticStore(ds)
	if s.Dataset() != ds {
		t.Errorf("static store should return the given dataset")
	}
	if err := s.Reload(); err != nil {
		t.Errorf("static reload should be a no-op, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := s.Watch(ctx); err == nil {
		t.Errorf("static store has nothing to watch")
	}
}
