package shiftreg

import "testing"

func TestSampleBit(t *testing.T) {
	s := Sample(0b0101)
	want := []bool{true, false, true, false}
	for i, w := range want {
		if s.Bit(i) != w {
			t.Errorf("bit %d: got %v, want %v", i, s.Bit(i), w)
		}
	}
	if s.Bit(-1) || s.Bit(MaxBits) {
		t.Error("out-of-range bits must read false")
	}
}

func TestSampleBits(t *testing.T) {
	got := Sample(0b110).Bits(4)
	want := []bool{false, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampleFormat(t *testing.T) {
	tests := []struct {
		s     Sample
		width int
		base  string
		want  string
	}{
		{85, 8, "dec", "85"},
		{85, 8, "", "85"},
		{85, 8, "hex", "0x55"},
		{5, 12, "hex", "0x005"},
		{5, 8, "bin", "0b00000101"},
		{1, 1, "bin", "0b1"},
	}
	for _, tt := range tests {
		got, err := tt.s.Format(tt.width, tt.base)
		if err != nil {
			t.Errorf("Format(%d, %q): %v", tt.width, tt.base, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Format(%d, %q): got %q, want %q", tt.width, tt.base, got, tt.want)
		}
	}

	if _, err := Sample(1).Format(8, "oct"); err == nil {
		t.Error("expected error for unknown base")
	}
}
