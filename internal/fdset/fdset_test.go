package fdset

import (
	"errors"
	"testing"

	"github.com/venusroot/keyed/internal/keyederr"
)

func TestAddContainsRemove(t *testing.T) {
	tbl := New(DefaultCapacity)
	if tbl.Contains(3) {
		t.Fatalf("fresh table contains fd")
	}
	if err := tbl.Add(3); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !tbl.Contains(3) {
		t.Errorf("Add(3) then Contains(3) = false")
	}
	tbl.Remove(3)
	if tbl.Contains(3) {
		t.Errorf("Remove(3) then Contains(3) = true")
	}
}

func TestAdd_NoDuplicates(t *testing.T) {
	tbl := New(DefaultCapacity)
	tbl.Add(5)
	tbl.Add(5)
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d after adding the same fd twice, want 1", tbl.Len())
	}
}

func TestAdd_CapacityError(t *testing.T) {
	tbl := New(16)
	for fd := 0; fd < 16; fd++ {
		if err := tbl.Add(fd); err != nil {
			t.Fatalf("Add(%d): %v", fd, err)
		}
	}
	err := tbl.Add(16)
	if err == nil {
		t.Fatalf("Add beyond capacity succeeded, want CapacityError")
	}
	var kerr *keyederr.Error
	if !errors.As(err, &kerr) || kerr.Kind != keyederr.Capacity {
		t.Errorf("Add beyond capacity returned %v, want keyederr.Capacity", err)
	}
}

func TestRemove_ReusedFd(t *testing.T) {
	tbl := New(DefaultCapacity)
	tbl.Add(4)
	tbl.Remove(4)
	// The kernel may hand out fd 4 again for an unrelated, unmonitored open.
	if tbl.Contains(4) {
		t.Errorf("closed fd reappears as monitored without a fresh Add")
	}
}
