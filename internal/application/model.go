package app

import (
	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/domain/tensor"
)

// Model неизменное состояние загруженной модели: описания входа и выхода,
// выбранная кодировка выхода и таблица меток. Создаётся один раз при старте
// и разделяется всеми запросами.
type Model struct {
	Name     string
	Input    entity.ModelInputSpec
	Output   entity.ModelOutputSpec
	Encoding tensor.OutputEncoding
	Labels   entity.LabelTable
}

// NewModel фиксирует кодировку выхода по его описанию.
func NewModel(name string, in entity.ModelInputSpec, out entity.ModelOutputSpec, labels entity.LabelTable) *Model {
	return &Model{
		Name:     name,
		Input:    in,
		Output:   out,
		Encoding: tensor.NewOutputEncoding(out),
		Labels:   labels,
	}
}

// LabelsMatchOutput сообщает, совпадает ли число меток с числом выходов.
// Расхождение не ошибка, но о нём стоит предупредить при старте.
func (m *Model) LabelsMatchOutput() bool {
	return m.Output.NumClasses == 0 || m.Output.NumClasses == len(m.Labels)
}
