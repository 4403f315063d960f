package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Computer Reparatie", "computer-reparatie"},
		{"Wifi Problemen Oplossen", "wifi-problemen-oplossen"},
		{"Privé les: e-mail & agenda", "prive-les-e-mail-en-agenda"},
		{"  Café réparation  ", "cafe-reparation"},
		{"'t Klein IT-hoekje", "t-klein-it-hoekje"},
		{"--al---genormaliseerd--", "al-genormaliseerd"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
