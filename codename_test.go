package ifcreader

import "testing"

func TestCodename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Identity Data", "identitydata"},
		{"Pset_DoorCommon", "psetdoorcommon"},
		{"BaseQuantities", "basequantities"},
		{"Height", "height"},
		{"Ref. (eleva-tion) 2", "refelevation2"},
		{"Référence", "référence"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Codename(tt.in); got != tt.want {
			t.Errorf("Codename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
