package iconcache

import (
	"testing"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		query, target string
		want          bool
	}{
		{"drv", "Drive", true},
		{"drv", "MyDrive", true},
		{"drv", "Silver", false},
		{"drv", "Reverse", false},
		{"DRV", "drive", true},
		{"", "anything", true},
		{"abc", "ab", false},
		{"ba", "ab", false},
	}

	for _, c := range cases {
		if got := Matches(c.query, c.target); got != c.want {
			t.Errorf("Matches(%q, %q) = %v, expected %v", c.query, c.target, got, c.want)
		}
	}
}

func TestFilter_ByName(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	groups := s.Filter("drv")
	if len(groups) != 1 || groups[0].Name != "Default" {
		t.Fatalf("Expected only Default group, got %v", groupNames(groups))
	}
	if len(groups[0].Icons) != 1 || groups[0].Icons[0].Name != "Drive" {
		t.Errorf("Expected only Drive, got %+v", groups[0].Icons)
	}
}

func TestFilter_ByGroupName(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	groups := s.Filter("wrk")
	names := groupNames(groups)
	if len(names) != 2 || names[0] != "Work" || names[1] != "Work/Deep" {
		t.Errorf("Expected Work groups, got %v", names)
	}
}

func TestFilter_EmptyRestoresIndex(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	full := s.Groups()
	s.Filter("drv")
	restored := s.Filter("   ")

	if len(restored) != len(full) {
		t.Fatalf("Expected %d groups, got %d", len(full), len(restored))
	}
	for i := range full {
		if full[i].Name != restored[i].Name || len(full[i].Icons) != len(restored[i].Icons) {
			t.Errorf("Group %d differs after empty filter", i)
		}
	}
}

func TestFilter_Idempotent(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	first := s.Filter("e")
	second := s.Filter("e")
	if len(first) != len(second) {
		t.Fatalf("Repeated filter changed the result")
	}

	again := FilterGroups(first, "e")
	if len(again) != len(first) {
		t.Fatalf("Expected %d groups, got %d", len(first), len(again))
	}
	for i := range first {
		if len(again[i].Icons) != len(first[i].Icons) {
			t.Errorf("Group %s changed when filtered twice", first[i].Name)
		}
	}
}

func TestFilter_NoMatch(t *testing.T) {
	_, s := newCache(t)
	s.Rebuild()

	if groups := s.Filter("zzz"); len(groups) != 0 {
		t.Errorf("Expected no groups, got %v", groupNames(groups))
	}
}
