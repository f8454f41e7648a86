package smartdb

import "testing"

type nopDriver struct{ name string }

func (d nopDriver) Name() string { return d.name }
func (d nopDriver) CreateConnection(config map[string]any) (Connection, error) { return nil, nil }

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nopDriver{name: "sqlite"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	d, ok := r.Lookup("sqlite")
	if !ok || d.Name() != "sqlite" {
		t.Errorf("lookup should find the registered driver, got ok=%v d=%v", ok, d)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("lookup for unregistered name should fail")
	}
}

func TestRegistryRejectsNilDriver(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err == nil || err.Kind != KindInvalidArgument {
		t.Errorf("expected InvalidArgument for nil driver, got %v", err)
	}
}

func TestRegistryOverwritesOnReregister(t *testing.T) {
	r := NewRegistry()
	r.Register(nopDriver{name: "sqlite"})
	r.Register(nopDriver{name: "sqlite"})
	if len(r.Names()) != 1 {
		t.Errorf("expected a single registered name after overwrite, got %v", r.Names())
	}
}
