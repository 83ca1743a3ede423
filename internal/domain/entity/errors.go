package entity

import "errors"

// Ошибки конвейера классификации. Конкретные ошибки оборачивают их через %w,
// проверка выполняется через errors.Is.
var (
	ErrDecode        = errors.New("decode error")          // пустые или нечитаемые байты изображения
	ErrResample      = errors.New("resample error")        // некорректный целевой размер
	ErrShapeMismatch = errors.New("shape mismatch")        // не удалось определить ранг или ось каналов
	ErrInference     = errors.New("inference error")       // сбой вызова модели
	ErrConfig        = errors.New("config error")          // нет модели или меток, фатально при старте
	ErrNoFile        = errors.New("no file provided")      // в запросе нет файла
	ErrBusy          = errors.New("inference unavailable") // запрос ушёл раньше, чем освободилась модель
)
