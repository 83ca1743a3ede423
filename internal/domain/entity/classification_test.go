package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistribution_Top(t *testing.T) {
	d := Distribution{
		{Label: "a", Probability: 0.1},
		{Label: "b", Probability: 0.5},
		{Label: "c", Probability: 0.1},
		{Label: "d", Probability: 0.3},
	}

	top := d.Top(3)
	require.Equal(t, []string{"b", "d", "a"}, []string{top[0].Label, top[1].Label, top[2].Label})
	// исходный порядок не меняется
	require.Equal(t, "a", d[0].Label)
	require.Len(t, d.Top(10), 4)
}

func TestDistribution_Map(t *testing.T) {
	d := Distribution{{Label: "a", Probability: 0.25}, {Label: "b", Probability: 0.75}}
	require.Equal(t, map[string]float64{"a": 0.25, "b": 0.75}, d.Map())
}
