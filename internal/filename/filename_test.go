package filename

import (
	"testing"
	"time"
)

func TestParseTimestamp_EpochMillis(t *testing.T) {
	tests := []struct {
		name     string
		expected int64
	}{
		{"COIL42_1715000000000_original.jpg", 1715000000000},
		{"C1_1715000000123_labeled.png", 1715000000123},
		{"prefix_1699999999999.bmp", 1699999999999},
	}

	for _, tt := range tests {
		got := ParseTimestamp(tt.name)
		if got != tt.expected {
			t.Errorf("ParseTimestamp(%q) = %d, expected %d", tt.name, got, tt.expected)
		}
	}
}

func TestParseTimestamp_LegacyDate(t *testing.T) {
	got := ParseTimestamp("20250409135914_2891_crop_5.jpg")
	expected := time.Date(2025, 4, 9, 13, 59, 14, 0, time.Local).UnixMilli()
	if got != expected {
		t.Errorf("ParseTimestamp legacy = %d, expected %d", got, expected)
	}
}

func TestParseTimestamp_FallbackToNow(t *testing.T) {
	before := time.Now().UnixMilli()
	got := ParseTimestamp("snapshot.jpg")
	after := time.Now().UnixMilli()

	if got < before || got > after {
		t.Errorf("ParseTimestamp fallback = %d, expected value between %d and %d", got, before, after)
	}
}

func TestParseCoilNumber(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"COIL42_1715000000000_original.jpg", "COIL42"},
		{"20250409135914_2891_crop_5.jpg", "2891"},
		{"a_b_c.jpg", "b"},
		{"noseparator.jpg", "unknown"},
	}

	for _, tt := range tests {
		got := ParseCoilNumber(tt.name)
		if got != tt.expected {
			t.Errorf("ParseCoilNumber(%q) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestParse_PairUploadRoundTrip(t *testing.T) {
	name := Format("COIL42", 1715000000000, "original", ".jpg")
	if name != "COIL42_1715000000000_original.jpg" {
		t.Fatalf("Format produced %q", name)
	}

	ts, coil := Parse(name)
	if ts != 1715000000000 {
		t.Errorf("Parse timestamp = %d, expected 1715000000000", ts)
	}
	if coil != "COIL42" {
		t.Errorf("Parse coil = %q, expected COIL42", coil)
	}
}

func TestIsImageFile(t *testing.T) {
	valid := []string{"a.jpg", "b.JPEG", "c.png", "d.BMP", "COIL_1_original.jpeg"}
	for _, name := range valid {
		if !IsImageFile(name) {
			t.Errorf("Expected %q to be an image file", name)
		}
	}

	invalid := []string{".hidden.jpg", "notes.txt", "archive.zip", "image.jpg.part", "noext"}
	for _, name := range invalid {
		if IsImageFile(name) {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}
