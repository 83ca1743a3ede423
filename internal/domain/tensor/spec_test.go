package tensor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vision-classifier/internal/domain/entity"
)

func TestResolveLayout(t *testing.T) {
	l, err := ResolveLayout([]int64{1, 224, 224, 3})
	require.NoError(t, err)
	require.Equal(t, entity.LayoutNHWC, l)

	l, err = ResolveLayout([]int64{1, 3, 224, 224})
	require.NoError(t, err)
	require.Equal(t, entity.LayoutNCHW, l)

	// при 3 в обеих осях побеждает последняя
	l, err = ResolveLayout([]int64{1, 3, 3, 3})
	require.NoError(t, err)
	require.Equal(t, entity.LayoutNHWC, l)
}

func TestResolveLayout_Errors(t *testing.T) {
	_, err := ResolveLayout([]int64{1, 224, 224})
	require.ErrorIs(t, err, entity.ErrShapeMismatch)

	_, err = ResolveLayout([]int64{1, 1, 224, 224})
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestNewInputSpec(t *testing.T) {
	spec, err := NewInputSpec([]int64{1, 3, 96, 128}, entity.DTypeFloat32, entity.Quantization{})
	require.NoError(t, err)
	require.Equal(t, 96, spec.Height)
	require.Equal(t, 128, spec.Width)
	require.Equal(t, entity.LayoutNCHW, spec.Layout)

	_, err = NewInputSpec([]int64{1, -1, -1, 3}, entity.DTypeUint8, entity.Quantization{})
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
}

func TestNewOutputSpec(t *testing.T) {
	spec := NewOutputSpec([]int64{1, 5}, entity.DTypeUint8, entity.Quantization{Scale: 0.1})
	require.Equal(t, 5, spec.NumClasses)
	require.Equal(t, entity.DTypeUint8, spec.DType)
}
