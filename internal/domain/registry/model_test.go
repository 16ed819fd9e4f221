package registry

import "testing"

func TestGenderValid(t *testing.T) {
	valid := []Gender{GenderMale, GenderFemale, GenderOther}
	for _, g := range valid {
		if !g.Valid() {
			t.Errorf("expected %q to be valid", g)
		}
	}

	invalid := []Gender{"", "male", "FEMALE", "Unknown"}
	for _, g := range invalid {
		if g.Valid() {
			t.Errorf("expected %q to be invalid", g)
		}
	}
}
