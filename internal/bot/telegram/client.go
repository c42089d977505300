package telegram

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI is the part of tgbotapi.BotAPI the transport uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

type BotCommand struct {
	Command     string
	Description string
}

// DefaultCommands is the command menu shown by Telegram clients.
var DefaultCommands = []BotCommand{
	{Command: "start", Description: "Начать работу с ботом"},
	{Command: "help", Description: "Получить справку"},
	{Command: "list", Description: "Ближайшие активные события"},
	{Command: "at", Description: "Выбрать дату и время в календаре"},
	{Command: "delete_rep", Description: "Удалить повторяющееся событие"},
}

type Client struct {
	bot    BotAPI
	logger *slog.Logger
}

// NewBotAPI connects to Telegram. apiEndpoint overrides the default endpoint
// format when not empty.
func NewBotAPI(token, apiEndpoint string) (*tgbotapi.BotAPI, error) {
	if apiEndpoint == "" {
		apiEndpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, apiEndpoint)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Telegram клиента: %w", err)
	}

	return bot, nil
}

func NewClient(bot BotAPI, logger *slog.Logger) *Client {
	return &Client{
		bot:    bot,
		logger: logger,
	}
}

// SendMessage sends text with an optional inline keyboard. replyTo quotes the
// given message when set.
func (c *Client) SendMessage(chatID int64, text string, replyTo *int, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)

	if replyTo != nil {
		msg.ReplyToMessageID = *replyTo
		msg.AllowSendingWithoutReply = true
	}

	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}

	return nil
}

// EditMessage replaces text and keyboard of a message sent earlier.
func (c *Client) EditMessage(chatID int64, msgID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, keyboard)

	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("ошибка при редактировании сообщения %d: %w", msgID, err)
	}

	return nil
}

// DeleteKeyboard strips the inline keyboard and keeps the text.
func (c *Client) DeleteKeyboard(chatID int64, msgID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, msgID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})

	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("ошибка при удалении клавиатуры сообщения %d: %w", msgID, err)
	}

	return nil
}

func (c *Client) DeleteMessage(chatID int64, msgID int) error {
	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, msgID)); err != nil {
		return fmt.Errorf("ошибка при удалении сообщения %d: %w", msgID, err)
	}

	return nil
}

// AnswerCallback stops the loading indicator on the pressed button.
func (c *Client) AnswerCallback(callbackID string) error {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("ошибка при ответе на нажатие кнопки: %w", err)
	}

	return nil
}

func (c *Client) GetUpdates(offset int, timeout int) ([]tgbotapi.Update, error) {
	updateConfig := tgbotapi.NewUpdate(offset)
	updateConfig.Timeout = timeout
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}

	updates, err := c.bot.GetUpdates(updateConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении обновлений: %w", err)
	}

	return updates, nil
}

func (c *Client) SetMyCommands(commands []BotCommand) error {
	botAPICommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botAPICommands = append(botAPICommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(botAPICommands...)); err != nil {
		return fmt.Errorf("ошибка при установке команд бота: %w", err)
	}

	c.logger.Info("Команды бота успешно зарегистрированы", "count", len(commands))

	return nil
}
