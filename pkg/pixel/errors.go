package pixel

import "github.com/pkg/errors"

var (
	ErrInvalidIterationArea = errors.New("pixel: iteration area does not intersect the raster")
	ErrInvalidArgument      = errors.New("pixel: invalid argument")
	ErrOutOfBounds          = errors.New("pixel: position out of bounds")
	ErrUnsupportedOperation = errors.New("pixel: unsupported operation")
)
