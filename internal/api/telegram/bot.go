// Package telegram Telegram-интерфейс классификатора.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "vision-classifier/internal/application"
	"vision-classifier/internal/domain/entity"
	"vision-classifier/internal/logger"
)

// Classifier то, что бот умеет вызывать
type Classifier interface {
	Classify(ctx context.Context, data []byte) (*entity.ClassificationResult, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *app.UserService
	classifier Classifier
	client     *http.Client
	log        logger.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, users *app.UserService, classifier Classifier, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	log.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:        api,
		users:      users,
		classifier: classifier,
		client:     http.DefaultClient,
		log:        log,
	}, nil
}

// Run обрабатывает обновления, пока не отменён ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	log := b.log.With("user_id", msg.From.ID, "chat_id", msg.Chat.ID)
	ctx = logger.WithContext(ctx, log)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, fileID)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var (
		err   error
		reply string
	)
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgStart
	case "help":
		reply = msgHelp
	case "stats":
		var user *entity.User
		user, err = b.users.Get(ctx, userID, chatID)
		reply = msgProcessingError
		if err == nil {
			reply = formatStats(user)
		}
	case "classify":
		_, err = b.users.BeginClassify(ctx, userID, chatID)
		reply = msgAwaitingPhoto
	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		reply = msgCancelled
	default:
		reply = msgUnknownCommand
	}

	if err != nil {
		logger.FromContext(ctx).Error("update user state", "command", msg.Command(), "error", err)
	}
	b.sendMessage(ctx, chatID, reply)
}

// handleImage скачивает изображение и отвечает результатом классификации
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	log := logger.FromContext(ctx)
	userID, chatID := msg.From.ID, msg.Chat.ID

	if _, err := b.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		log.Error("update user state", "error", err)
	}
	b.sendMessage(ctx, chatID, msgProcessing)

	var res *entity.ClassificationResult
	defer func() {
		if _, err := b.users.Finish(ctx, userID, chatID, res); err != nil {
			log.Error("finish user", "error", err)
		}
	}()

	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Error("download image", "error", err)
		b.sendMessage(ctx, chatID, msgProcessingError)
		return
	}

	res, err = b.classifier.Classify(ctx, data)
	if err != nil {
		log.Warn("classification failed", "error", err)
		b.sendMessage(ctx, chatID, replyForError(err))
		return
	}

	b.sendMessage(ctx, chatID, formatResult(res))
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, entity.ErrBusy):
		return msgBusy
	case app.IsClientError(err):
		return msgBadImage
	}
	return msgProcessingError
}

// imageFileID берёт фото с максимальным разрешением или изображение, присланное файлом
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.FromContext(ctx).Error("send message", "error", err)
	}
}
