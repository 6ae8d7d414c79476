package codec

import "testing"

type sample struct {
	Kind  string    `json:"kind"`
	Names []string  `json:"names,omitempty"`
	Vals  []float64 `json:"vals,omitempty"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		if c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}

	if _, ok := ByName("msgpack"); ok {
		t.Error("ByName should not resolve unknown codecs")
	}
}

func TestMustMarshal(t *testing.T) {
	in := sample{Kind: "measurementList", Names: []string{"area"}}

	// A nil codec falls back to the default.
	b := MustMarshal(nil, in)

	var out sample
	if err := Default.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Kind != in.Kind || len(out.Names) != 1 || out.Names[0] != "area" {
		t.Errorf("round trip mismatch: %+v", out)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustMarshal should panic on an unmarshalable value")
		}
	}()
	MustMarshal(JSON{}, make(chan int))
}

func TestRoundTrip(t *testing.T) {
	in := sample{Kind: "measurementList", Names: []string{"area", "perimeter"}, Vals: []float64{1.5, -2}}

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		b, err := c.Marshal(in)
		if err != nil {
			t.Fatalf("%s: Marshal: %v", c.Name(), err)
		}

		var out sample
		if err := c.Unmarshal(b, &out); err != nil {
			t.Fatalf("%s: Unmarshal: %v", c.Name(), err)
		}
		if out.Kind != in.Kind || len(out.Names) != 2 || out.Vals[1] != -2 {
			t.Errorf("%s: round trip mismatch: %+v", c.Name(), out)
		}
	}
}
