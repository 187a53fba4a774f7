package main

import (
	"testing"

	"shot-analysis/pkg/geometry"
)

func TestAnchorFlag(t *testing.T) {
	defer func() { opts.anchors = nil }()

	err := imageCmd.Flags().Parse([]string{"--anchor", "320,240", "--anchor", "10.5, 20"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opts.anchors) != 2 {
		t.Fatalf("anchors = %q, want two x,y values", opts.anchors)
	}

	got, err := parseAnchors(opts.anchors)
	if err != nil {
		t.Fatal(err)
	}
	want := []geometry.Point{{X: 320, Y: 240}, {X: 10.5, Y: 20}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("anchor %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseAnchorsRejectsMalformed(t *testing.T) {
	for _, v := range []string{"320", "x,240", "320,", ""} {
		if _, err := parseAnchors([]string{v}); err == nil {
			t.Errorf("parseAnchors(%q) accepted", v)
		}
	}
}
