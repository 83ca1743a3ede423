package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDType(t *testing.T) {
	d, err := ParseDType("uint8")
	require.NoError(t, err)
	require.Equal(t, DTypeUint8, d)
	require.True(t, d.IsInteger())

	d, err = ParseDType("float")
	require.NoError(t, err)
	require.Equal(t, DTypeFloat32, d)
	require.False(t, d.IsInteger())

	_, err = ParseDType("bfloat16")
	require.Error(t, err)
}

func TestTensor_At(t *testing.T) {
	u := &Tensor{DType: DTypeUint8, Uint8: []uint8{0, 255}}
	require.Equal(t, 2, u.Len())
	require.Equal(t, 255.0, u.At(1))

	f := &Tensor{DType: DTypeFloat32, Float32: []float32{0.5}}
	require.Equal(t, 0.5, f.At(0))
}

func TestQuantization_Defined(t *testing.T) {
	require.False(t, Quantization{}.Defined())
	require.True(t, Quantization{Scale: 0.00390625}.Defined())
}
