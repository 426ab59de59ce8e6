package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/adapters/catalog"
)

func TestLoadDefaults(t *testing.T) {
	c, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	all := c.ListVehicles(nil)
	if len(all) != 3 {
		t.Fatalf("default fleet size = %d, want 3", len(all))
	}

	classes := map[string]bool{}
	for _, v := range all {
		classes[v.Class] = true
		if v.TotalWidthM() <= v.WidthM {
			t.Errorf("%s: total width %f must include mirrors", v.Class, v.TotalWidthM())
		}
	}
	for _, want := range []string{"luton_van_3_5t", "truck_7_5t", "pantechnicon_18t"} {
		if !classes[want] {
			t.Errorf("default fleet missing %s", want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.json")
	data := `[{"name":"Transit","vehicle_class":"van_3t","width_m":2.0,"length_m":5.3,
		"height_m":2.5,"weight_kg":3000,"turning_radius_m":5.9,"mirror_width_m":0.2}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := c.ListVehicles(nil)
	if len(got) != 1 || got[0].Class != "van_3t" {
		t.Errorf("vehicles = %+v", got)
	}
}

func TestListVehiclesFilter(t *testing.T) {
	c, err := catalog.Load("")
	if err != nil {
		t.Fatal(err)
	}

	got := c.ListVehicles([]string{"truck_7_5t"})
	if len(got) != 1 || got[0].Class != "truck_7_5t" {
		t.Errorf("filtered = %+v", got)
	}

	if got := c.ListVehicles([]string{"no_such_class"}); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Load(path); err == nil {
		t.Error("empty profile list must be rejected")
	}

	if _, err := catalog.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file must be rejected")
	}
}
