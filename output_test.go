package pertpy

import (
	"strings"
	"testing"
)

func TestPrintPoints(t *testing.T) {
	db := recipDB(t)
	var b strings.Builder
	PrintPoints(&b, db)
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != db.Len()+1 {
		t.Fatalf("got %d lines, wanted %d", len(lines), db.Len()+1)
	}
	want := "    4      4.000000     0.25000     0.62500     0.62500"
	if lines[5] != want {
		t.Errorf("got\n%q\nwanted\n%q", lines[5], want)
	}
}

func TestPrintMat(t *testing.T) {
	var b strings.Builder
	PrintMat(&b, fccRecipLat)
	want := "    -1.00000    -1.00000     1.00000\n" +
		"     1.00000     1.00000     1.00000\n" +
		"    -1.00000     1.00000    -1.00000\n"
	if got := b.String(); got != want {
		t.Errorf("got\n%s\nwanted\n%s", got, want)
	}
}
