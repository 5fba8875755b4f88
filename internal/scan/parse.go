package scan

import (
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseArea parses "x,y,w,h" into a rectangle. An empty string means no area.
func ParseArea(s string) (*image.Rectangle, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, errors.Errorf("area must be in format 'x,y,width,height', got %q", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid area component %d", i)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return nil, errors.Errorf("area width and height must be positive, got %dx%d", v[2], v[3])
	}

	r := image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3])
	return &r, nil
}

// ParseBands parses a comma separated band list such as "2,0". An empty string means all bands.
func ParseBands(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var bands []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid band %q", p)
		}
		bands = append(bands, n)
	}
	return bands, nil
}
