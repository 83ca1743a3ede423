package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCoverSize(t *testing.T) {
	w, h := CoverSize(400, 200, 224, 224)
	require.Equal(t, 448, w)
	require.Equal(t, 224, h)

	w, h = CoverSize(200, 400, 224, 224)
	require.Equal(t, 224, w)
	require.Equal(t, 448, h)

	// 55 * (224/55) при усечении даёт 223
	w, h = CoverSize(55, 55, 224, 224)
	require.Equal(t, 224, w)
	require.Equal(t, 224, h)
}

func TestCropRect(t *testing.T) {
	require.Equal(t, image.Rect(112, 0, 336, 224), CropRect(448, 224, 224, 224))
	// при нечётном остатке сдвиг округляется вниз
	require.Equal(t, image.Rect(1, 0, 4, 3), CropRect(6, 3, 3, 3))
}

func TestResampler_AlwaysExactTarget(t *testing.T) {
	r := NewResampler()
	sources := [][2]int{{1, 1}, {400, 200}, {200, 400}, {55, 55}, {97, 13}, {3, 50}}
	targets := [][2]int{{1, 1}, {224, 224}, {96, 128}, {299, 299}, {7, 3}}

	for _, s := range sources {
		src := solid(s[0], s[1], color.NRGBA{R: 50, G: 100, B: 150, A: 255})
		for _, tg := range targets {
			out, err := r.CoverCrop(src, tg[0], tg[1])
			require.NoError(t, err)
			require.Equal(t, image.Rect(0, 0, tg[0], tg[1]), out.Bounds(), "src %v target %v", s, tg)
		}
	}
}

func TestResampler_IdentityForTargetSize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 5)
	}

	out, err := NewResampler().CoverCrop(src, 4, 3)
	require.NoError(t, err)
	require.Equal(t, src.Pix, out.Pix)
}

func TestResampler_TakesHorizontalCenter(t *testing.T) {
	// 400x200: слева красная полоса, в центре зелёная, справа синяя
	src := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			c := color.NRGBA{G: 255, A: 255}
			if x < 100 {
				c = color.NRGBA{R: 255, A: 255}
			} else if x >= 300 {
				c = color.NRGBA{B: 255, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}

	out, err := NewResampler().CoverCrop(src, 224, 224)
	require.NoError(t, err)
	require.Equal(t, 224, out.Bounds().Dx())
	require.Equal(t, 224, out.Bounds().Dy())

	for _, x := range []int{5, 112, 218} {
		c := out.NRGBAAt(x, 100)
		require.Greater(t, c.G, uint8(200), "x=%d", x)
		require.Less(t, c.R, uint8(60), "x=%d", x)
		require.Less(t, c.B, uint8(60), "x=%d", x)
	}
}

func TestResampler_InvalidTarget(t *testing.T) {
	src := solid(4, 4, color.NRGBA{A: 255})
	_, err := NewResampler().CoverCrop(src, 0, 10)
	require.ErrorIs(t, err, entity.ErrResample)

	_, err = NewResampler().CoverCrop(src, 10, -1)
	require.ErrorIs(t, err, entity.ErrResample)

	_, err = NewResampler().CoverCrop(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 10, 10)
	require.ErrorIs(t, err, entity.ErrResample)
}
