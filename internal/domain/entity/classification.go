package entity

import "sort"

// UnknownLabel подставляется, когда индекс выходит за таблицу меток
const UnknownLabel = "Unknown"

// Prediction вероятность одного класса
type Prediction struct {
	Label       string  `json:"label"`       // метка класса
	Probability float64 `json:"probability"` // вероятность в [0,1]
}

// Distribution распределение по классам в порядке выходов модели
type Distribution []Prediction

// Map возвращает распределение в виде метка -> вероятность.
// При повторяющихся метках побеждает последняя.
func (d Distribution) Map() map[string]float64 {
	m := make(map[string]float64, len(d))
	for _, p := range d {
		m[p.Label] = p.Probability
	}
	return m
}

// Top возвращает до n наиболее вероятных классов, порядок устойчивый.
func (d Distribution) Top(n int) Distribution {
	top := make(Distribution, len(d))
	copy(top, d)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Probability > top[j].Probability
	})
	if n < len(top) {
		top = top[:n]
	}
	return top
}

// ClassificationResult итог классификации одного изображения.
type ClassificationResult struct {
	Label          string       // метка top-1
	Index          int          // индекс top-1 в выходе модели
	Confidence     float64      // вероятность top-1
	Distribution   Distribution // метка -> вероятность для min(меток, выходов) классов
	SoftmaxApplied bool         // применялся ли softmax к выходу
}
