package entity

import (
	"bufio"
	"io"
	"strings"
)

// LabelTable упорядоченные метки, индекс совпадает с позицией выхода модели
type LabelTable []string

// ParseLabels читает по одной метке на строку. Пустые строки пропускаются,
// пробелы по краям обрезаются.
func ParseLabels(r io.Reader) (LabelTable, error) {
	var labels LabelTable
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// Label возвращает метку по индексу или UnknownLabel вне диапазона
func (t LabelTable) Label(i int) string {
	if i < 0 || i >= len(t) {
		return UnknownLabel
	}
	return t[i]
}

// Rank выбирает top-1 и строит распределение по меткам.
// При равных вероятностях выигрывает меньший индекс. Лишние метки или
// вероятности молча отбрасываются: длины задаются независимо и их
// расхождение относится к развёртыванию, а не к запросу.
func (t LabelTable) Rank(probs []float64) *ClassificationResult {
	res := &ClassificationResult{Label: UnknownLabel}
	if len(probs) == 0 {
		return res
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	res.Index = best
	res.Confidence = probs[best]
	res.Label = t.Label(best)

	n := min(len(t), len(probs))
	res.Distribution = make(Distribution, n)
	for i := 0; i < n; i++ {
		res.Distribution[i] = Prediction{Label: t[i], Probability: probs[i]}
	}
	return res
}
