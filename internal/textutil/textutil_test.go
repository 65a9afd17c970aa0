package textutil

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"Hello World", 0, "hello-world"},
		{"  Crème brûlée & Café!  ", 0, "creme-brulee-and-cafe"},
		{"Straße über Ørsted", 0, "strasse-uber-orsted"},
		{"2024", 0, "2024"},
		{"---", 0, ""},
		{"alpha beta gamma", 10, "alpha-beta"},
		{"ｆｕｌｌｗｉｄｔｈ", 0, "fullwidth"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in, tc.max); got != tc.want {
			t.Fatalf("Slugify(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	if !IsNumeric("12345") || IsNumeric("") || IsNumeric("12a") || IsNumeric("-1") {
		t.Fatal("IsNumeric returned unexpected result")
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(` a/b:c?"d|.txt `); got != "a-b-cd.txt" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	for _, name := range []string{"", ".", "..", ".hidden", "a/b", "x|y"} {
		if IsSafeFileName(name) {
			t.Fatalf("expected %q to be unsafe", name)
		}
	}
	if !IsSafeFileName("report 2024.pdf") {
		t.Fatal("expected plain name to be safe")
	}
}
