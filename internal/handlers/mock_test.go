package handlers

import "testing"

func TestMockLatestImage_RotatesEvery3Seconds(t *testing.T) {
	base := int64(1715000000000)

	first := mockLatestImage(base)
	same := mockLatestImage(base + 2999)
	next := mockLatestImage(base + 3000)

	if first.Filename != same.Filename {
		t.Error("Mock image should be stable within one 3s window")
	}
	if first.Filename == next.Filename {
		t.Error("Mock image should rotate after 3s")
	}
	if next.Type != "mock" {
		t.Errorf("Expected mock type, got %s", next.Type)
	}
}

func TestMockLatestImage_IndexFormula(t *testing.T) {
	// index = floor(now/3000) mod N
	now := int64(3000 * 7)
	expected := mockImages[7%len(mockImages)]

	got := mockLatestImage(now)
	if got.Filename != expected {
		t.Errorf("mockLatestImage = %s, expected %s", got.Filename, expected)
	}
	if got.CoilNumber == "unknown" || got.CoilNumber == "" {
		t.Errorf("Expected coil parsed from mock filename, got %q", got.CoilNumber)
	}
}

func TestMockImageList_Pagination(t *testing.T) {
	images, total := mockImageList(1, 4)
	if len(images) != 4 {
		t.Errorf("Expected 4 images on page 1, got %d", len(images))
	}
	if total != len(mockImages) {
		t.Errorf("Expected total %d, got %d", len(mockImages), total)
	}

	last, _ := mockImageList(3, 4)
	if len(last) != 2 {
		t.Errorf("Expected 2 images on page 3, got %d", len(last))
	}

	beyond, _ := mockImageList(4, 4)
	if len(beyond) != 0 {
		t.Errorf("Expected empty page beyond the sequence, got %d", len(beyond))
	}
}
