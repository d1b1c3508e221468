package change

import (
	"errors"
	"math/rand"
	"testing"
	"testing/quick"
)

func parse(t *testing.T, s string) Desc {
	t.Helper()
	d, err := ParseDesc(s)
	if err != nil {
		t.Fatalf("ParseDesc(%q): %v", s, err)
	}
	return d
}

func TestParseDescRoundTrip(t *testing.T) {
	tests := []string{"", "k5", "k5i2k5", "k1d2k2i2", "d3i4", "k10d5i5k10"}
	for _, s := range tests {
		if got := parse(t, s).String(); got != s {
			t.Errorf("ParseDesc(%q).String() = %q", s, got)
		}
	}
}

func TestParseDescCanonicalizes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"k2k3", "k5"},
		{"d1d2", "d3"},
		{"i2k0i3", "i5"},
		{"k5i2d3", "k5d3i2"}, // delete moves before insert
		{"k0", ""},
	}
	for _, tt := range tests {
		if got := parse(t, tt.in).String(); got != tt.want {
			t.Errorf("ParseDesc(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDescErrors(t *testing.T) {
	for _, s := range []string{"k", "x5", "k5i", "5k"} {
		if _, err := ParseDesc(s); !errors.Is(err, ErrMalformedChange) {
			t.Errorf("ParseDesc(%q) error = %v, want ErrMalformedChange", s, err)
		}
	}
}

func TestDescLengths(t *testing.T) {
	tests := []struct {
		desc   string
		oldLen int64
		newLen int64
		empty  bool
	}{
		{"", 0, 0, true},
		{"k7", 7, 7, true},
		{"k5i2k5", 10, 12, false},
		{"k1d2k4", 7, 5, false},
		{"d3i4", 3, 4, false},
	}
	for _, tt := range tests {
		d := parse(t, tt.desc)
		if d.OldLen() != tt.oldLen {
			t.Errorf("%q OldLen = %d, want %d", tt.desc, d.OldLen(), tt.oldLen)
		}
		if d.NewLen() != tt.newLen {
			t.Errorf("%q NewLen = %d, want %d", tt.desc, d.NewLen(), tt.newLen)
		}
		if d.Empty() != tt.empty {
			t.Errorf("%q Empty = %v, want %v", tt.desc, d.Empty(), tt.empty)
		}
	}
}

func TestKeepLen(t *testing.T) {
	if got := KeepLen(5).String(); got != "k5" {
		t.Errorf("KeepLen(5) = %q", got)
	}
	if got := KeepLen(0).String(); got != "" {
		t.Errorf("KeepLen(0) = %q", got)
	}
	if !KeepLen(9).Empty() {
		t.Error("KeepLen should be empty")
	}
}

func TestDescInvert(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"k5", "k5"},
		{"k5i2k5", "k5d2k5"},
		{"k1d2k4", "k1i2k4"},
		{"k2d2i3k2", "k2d3i2k2"},
		{"d3i4", "d4i3"},
	}
	for _, tt := range tests {
		d := parse(t, tt.desc)
		inv := d.Invert()
		if inv.String() != tt.want {
			t.Errorf("%q Invert = %q, want %q", tt.desc, inv.String(), tt.want)
		}
		if inv.OldLen() != d.NewLen() || inv.NewLen() != d.OldLen() {
			t.Errorf("%q Invert lengths flipped wrong", tt.desc)
		}
		if back := inv.Invert(); back.String() != d.String() {
			t.Errorf("%q double Invert = %q", tt.desc, back.String())
		}
	}
}

func TestDescCompose(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"k5i2", "k1d2k4", "k1d2k2i2"},
		{"k2i2k2", "k2d2k2", "k4"},
		{"k5", "k5", "k5"},
		{"k2d3k2", "k1i1k3", "k1i1k1d3k2"},
		{"i5", "d5", ""},
		{"k3i2k3", "k4d2k2", "k3d1i1k2"},
	}
	for _, tt := range tests {
		a, b := parse(t, tt.a), parse(t, tt.b)
		got, err := a.Compose(b)
		if err != nil {
			t.Fatalf("%q.Compose(%q): %v", tt.a, tt.b, err)
		}
		if got.String() != tt.want {
			t.Errorf("%q.Compose(%q) = %q, want %q", tt.a, tt.b, got.String(), tt.want)
		}
		if got.OldLen() != a.OldLen() || got.NewLen() != b.NewLen() {
			t.Errorf("%q.Compose(%q) lengths wrong", tt.a, tt.b)
		}
	}
}

func TestDescComposeLengthMismatch(t *testing.T) {
	a := parse(t, "k5")
	b := parse(t, "k6")
	if _, err := a.Compose(b); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Compose error = %v, want ErrLengthMismatch", err)
	}
}

func TestDescComposeIdentity(t *testing.T) {
	d := parse(t, "k2d3i4k5")
	left, err := KeepLen(d.OldLen()).Compose(d)
	if err != nil {
		t.Fatal(err)
	}
	right, err := d.Compose(KeepLen(d.NewLen()))
	if err != nil {
		t.Fatal(err)
	}
	if left.String() != d.String() || right.String() != d.String() {
		t.Errorf("identity compose: left %q, right %q, want %q", left.String(), right.String(), d.String())
	}
}

// randDesc builds a random change over a document of oldLen bytes.
func randDesc(rng *rand.Rand, oldLen int64) Desc {
	b := newRunBuilder(false)
	var pos int64
	for pos < oldLen {
		n := 1 + rng.Int63n(4)
		if pos+n > oldLen {
			n = oldLen - pos
		}
		switch rng.Intn(3) {
		case 0:
			b.keep(n)
			pos += n
		case 1:
			b.del(n)
			pos += n
		case 2:
			b.ins(1+rng.Int63n(3), "")
		}
	}
	if rng.Intn(2) == 0 {
		b.ins(1+rng.Int63n(3), "")
	}
	return b.desc()
}

func TestComposeAssociativityProperty(t *testing.T) {
	check := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		a := randDesc(rng, 1+rng.Int63n(40))
		b := randDesc(rng, a.NewLen())
		c := randDesc(rng, b.NewLen())

		ab, err := a.Compose(b)
		if err != nil {
			return false
		}
		abThenC, err := ab.Compose(c)
		if err != nil {
			return false
		}
		bc, err := b.Compose(c)
		if err != nil {
			return false
		}
		aThenBC, err := a.Compose(bc)
		if err != nil {
			return false
		}
		return abThenC.String() == aThenBC.String()
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 300}); err != nil {
		t.Error(err)
	}
}

func TestDescMap(t *testing.T) {
	tests := []struct {
		a, b   string
		before bool
		want   string
	}{
		// Rebase an insert over a concurrent earlier insert.
		{"k5i1k5", "i3k10", false, "k8i1k5"},
		// Rebase over a deletion covering the insert point.
		{"k5i1k5", "k2d6k2", false, "k2i1k2"},
		// Concurrent inserts at the same point, both tie-break orders.
		{"k5i1k5", "k5i2k5", false, "k7i1k5"},
		{"k5i1k5", "k5i2k5", true, "k5i1k7"},
		// Deletions over overlapping deletions shrink.
		{"k2d4k4", "k4d4k2", false, "k2d2k2"},
		// Identity on both sides.
		{"k3d2k3", "k8", false, "k3d2k3"},
	}
	for _, tt := range tests {
		a, b := parse(t, tt.a), parse(t, tt.b)
		got, err := a.Map(b, tt.before)
		if err != nil {
			t.Fatalf("%q.Map(%q, %v): %v", tt.a, tt.b, tt.before, err)
		}
		if got.String() != tt.want {
			t.Errorf("%q.Map(%q, %v) = %q, want %q", tt.a, tt.b, tt.before, got.String(), tt.want)
		}
		if got.OldLen() != b.NewLen() {
			t.Errorf("%q.Map(%q) OldLen = %d, want %d", tt.a, tt.b, got.OldLen(), b.NewLen())
		}
	}
}

func TestMapLengthMismatch(t *testing.T) {
	if _, err := parse(t, "k5").Map(parse(t, "k6"), false); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Map error = %v, want ErrLengthMismatch", err)
	}
}

// Concurrent edits rebased in either order must land on the same
// document shape.
func TestConvergenceProperty(t *testing.T) {
	check := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		docLen := 1 + rng.Int63n(40)
		a := randDesc(rng, docLen)
		b := randDesc(rng, docLen)

		bOverA, err := b.Map(a, false)
		if err != nil {
			return false
		}
		left, err := a.Compose(bOverA)
		if err != nil {
			return false
		}
		aOverB, err := a.Map(b, true)
		if err != nil {
			return false
		}
		right, err := b.Compose(aOverB)
		if err != nil {
			return false
		}
		return left.String() == right.String()
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 300}); err != nil {
		t.Error(err)
	}
}

func TestMapPos(t *testing.T) {
	del := parse(t, "k2d2k2")    // delete [2,4) of 6
	ins := parse(t, "k2i3k2")    // insert 3 at 2 of 4
	repl := parse(t, "k2d2i3k2") // replace [2,4) with 3 bytes

	tests := []struct {
		name  string
		desc  Desc
		pos   int64
		assoc int
		mode  MapMode
		want  int64
	}{
		{"before deletion", del, 1, 1, MapSimple, 1},
		{"deletion start", del, 2, -1, MapSimple, 2},
		{"inside deletion clamps", del, 3, 1, MapSimple, 2},
		{"inside deletion track", del, 3, 1, MapTrackDel, Deleted},
		{"deletion end", del, 4, -1, MapSimple, 2},
		{"after deletion", del, 5, 1, MapSimple, 3},

		{"insert point before", ins, 2, -1, MapSimple, 2},
		{"insert point after", ins, 2, 1, MapSimple, 5},
		{"insert not a delete", ins, 2, 1, MapTrackDel, 5},
		{"past insert", ins, 3, 1, MapSimple, 6},

		{"replace boundary before", repl, 2, -1, MapTrackBefore, 2},
		{"replace boundary after-side", repl, 2, 1, MapTrackAfter, Deleted},
		{"replace end before-side", repl, 4, 1, MapTrackBefore, Deleted},
		{"replace end simple", repl, 4, 1, MapSimple, 5},
		{"replace interior", repl, 3, 1, MapTrackDel, Deleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.desc.MapPos(tt.pos, tt.assoc, tt.mode)
			if err != nil {
				t.Fatalf("MapPos: %v", err)
			}
			if got != tt.want {
				t.Errorf("MapPos(%d, %d, %d) = %d, want %d", tt.pos, tt.assoc, tt.mode, got, tt.want)
			}
		})
	}
}

func TestMapPosOutOfRange(t *testing.T) {
	d := parse(t, "k5")
	for _, pos := range []int64{-1, 6} {
		if _, err := d.MapPos(pos, 1, MapSimple); !errors.Is(err, ErrPosOutOfRange) {
			t.Errorf("MapPos(%d) error = %v, want ErrPosOutOfRange", pos, err)
		}
	}
}
