package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Text, Similar, Detail}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "hybrid", "semantic", "TEXT"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestConstants(t *testing.T) {
	if Text != "text" {
		t.Errorf("Text = %q", Text)
	}
	if Similar != "similar" {
		t.Errorf("Similar = %q", Similar)
	}
	if Detail != "detail" {
		t.Errorf("Detail = %q", Detail)
	}
}
