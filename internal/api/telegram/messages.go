package telegram

import (
	"fmt"
	"strings"

	"vision-classifier/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для классификации изображений.

📸 Отправьте мне фото, и я скажу, что на нём изображено.

📋 Команды:
/classify — классифицировать изображение
/stats — ваша статистика
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото (или изображение файлом)
2️⃣ Бот приведёт его к входу модели и запустит классификацию
3️⃣ Вы получите метку, уверенность и пять наиболее вероятных классов

📋 Команды:
/classify — начать классификацию
/stats — сколько изображений классифицировано
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте изображение для классификации."
	msgCancelled       = "❌ Операция отменена. Отправьте /classify для новой классификации."
	msgSendPhoto       = "📸 Пожалуйста, отправьте изображение для классификации."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Бот сейчас занят, попробуйте через минуту."
	msgBadImage        = "⚠️ Не удалось прочитать изображение. Пришлите фото в формате JPEG или PNG."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте ещё раз."
	msgNoStats         = "📭 Вы ещё ничего не классифицировали. Отправьте фото!"
)

// topN сколько классов показывать в ответе
const topN = 5

// formatResult текст ответа с результатом классификации
func formatResult(res *entity.ClassificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏷 %s (%.1f%%)", res.Label, res.Confidence*100)

	top := res.Distribution.Top(topN)
	if len(top) > 1 {
		b.WriteString("\n\n📊 Топ-")
		fmt.Fprintf(&b, "%d:", len(top))
		for i, p := range top {
			fmt.Fprintf(&b, "\n%d. %s — %.1f%%", i+1, p.Label, p.Probability*100)
		}
	}
	return b.String()
}

// formatStats статистика пользователя для /stats
func formatStats(user *entity.User) string {
	if user.Classified == 0 {
		return msgNoStats
	}
	return fmt.Sprintf("📈 Классифицировано изображений: %d\n🏷 Последний результат: %s", user.Classified, user.LastLabel)
}
