//go:build gocv

package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

func TestGoCVDecodeErrors(t *testing.T) {
	p, err := NewGoCVPreprocessor(DefaultMaxPixels)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err = p.Decode([]byte("definitely not an image"))
		require.ErrorIs(t, err, entity.ErrDecode)
	}

	_, err = p.Decode(pngHeader(60000, 60000))
	require.ErrorIs(t, err, entity.ErrDecode)
}

func TestGoCVDecodeRespectsLimit(t *testing.T) {
	p, err := NewGoCVPreprocessor(100)
	require.NoError(t, err)

	_, err = p.Decode(encodePNG(t, image.NewGray(image.Rect(0, 0, 20, 20))))
	require.ErrorIs(t, err, entity.ErrDecode)

	img, err := p.Decode(encodePNG(t, image.NewGray(image.Rect(0, 0, 10, 10))))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
}
