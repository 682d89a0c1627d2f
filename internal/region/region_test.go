package region

import (
	"errors"
	"image"
	"testing"
)

func TestValidate(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)

	tests := []struct {
		name    string
		region  Region
		wantErr bool
	}{
		{"full image", Region{0, 0, 200, 100}, false},
		{"interior", Region{10, 10, 50, 30}, false},
		{"single pixel", Region{5, 5, 1, 1}, false},
		{"touching right edge", Region{150, 0, 50, 100}, false},
		{"zero width", Region{10, 10, 0, 30}, true},
		{"zero height", Region{10, 10, 30, 0}, true},
		{"negative size", Region{10, 10, -5, 10}, true},
		{"past right edge", Region{180, 10, 30, 10}, true},
		{"past bottom edge", Region{10, 90, 10, 30}, true},
		{"negative origin", Region{-1, 0, 10, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate(bounds)
			if tt.wantErr && err == nil {
				t.Fatalf("Validate(%+v): expected error, got nil", tt.region)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate(%+v): unexpected error: %v", tt.region, err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("error %v is not ErrInvalidRegion", err)
			}
		})
	}
}

func TestRect(t *testing.T) {
	r := Region{X: 10, Y: 20, Width: 30, Height: 40}
	want := image.Rect(10, 20, 40, 60)
	if got := r.Rect(); got != want {
		t.Errorf("Rect: got %v, want %v", got, want)
	}
}

func TestContains(t *testing.T) {
	r := Region{X: 10, Y: 10, Width: 10, Height: 10}

	if !r.Contains(10, 10) {
		t.Error("top-left corner should be inside")
	}
	if !r.Contains(19, 19) {
		t.Error("bottom-right interior pixel should be inside")
	}
	if r.Contains(20, 10) {
		t.Error("right edge is exclusive")
	}
	if r.Contains(9, 10) {
		t.Error("left of region should be outside")
	}
}
