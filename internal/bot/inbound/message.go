package inbound

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const (
	TypeAddUser     = "add_user"
	TypeText        = "text"
	TypeKeyboard    = "keyboard"
	TypeAdvanceTime = "advance_time"
)

// Envelope is the JSON control message accepted by the Kafka topic and the
// HTTP endpoint.
type Envelope struct {
	Type           string `json:"type"`
	UID            int64  `json:"uid"`
	ChatID         int64  `json:"chat_id,omitempty"`
	MsgID          int    `json:"msg_id,omitempty"`
	Text           string `json:"text,omitempty"`
	CallbackData   string `json:"callback_data,omitempty"`
	MsgText        string `json:"msg_text,omitempty"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	UTCOffset      *int   `json:"utc_offset,omitempty"`
	AdvanceSeconds int64  `json:"advance_seconds,omitempty"`
}

// Decode parses a control message into an actor message. Users added without
// an offset get defaultOffset. The chat id defaults to the uid.
func Decode(data []byte, defaultOffset int) (engine.Message, error) {
	var env Envelope

	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &domainerrors.ErrMalformedInbound{Reason: err.Error()}
	}

	return env.Message(defaultOffset)
}

func (e Envelope) Message(defaultOffset int) (engine.Message, error) {
	if e.Type != TypeAdvanceTime && e.UID == 0 {
		return nil, &domainerrors.ErrMalformedInbound{Reason: "missing uid"}
	}

	chatID := e.ChatID
	if chatID == 0 {
		chatID = e.UID
	}

	switch e.Type {
	case TypeAddUser:
		offset := defaultOffset
		if e.UTCOffset != nil {
			offset = *e.UTCOffset
		}

		return engine.AddUser{User: models.User{
			UID:       e.UID,
			Username:  e.Username,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			ChatID:    chatID,
			UTCOffset: offset,
		}}, nil
	case TypeText:
		return engine.TextMessage{UID: e.UID, ChatID: chatID, MsgID: e.MsgID, Text: e.Text}, nil
	case TypeKeyboard:
		if e.CallbackData == "" {
			return nil, &domainerrors.ErrMalformedInbound{Reason: "missing callback_data"}
		}

		return engine.KeyboardMessage{
			UID:          e.UID,
			ChatID:       chatID,
			MsgID:        e.MsgID,
			CallbackData: e.CallbackData,
			MsgText:      e.MsgText,
		}, nil
	case TypeAdvanceTime:
		if e.AdvanceSeconds <= 0 {
			return nil, &domainerrors.ErrMalformedInbound{Reason: "advance_seconds must be positive"}
		}

		return engine.AdvanceTime{By: time.Duration(e.AdvanceSeconds) * time.Second}, nil
	default:
		return nil, &domainerrors.ErrMalformedInbound{Reason: fmt.Sprintf("unknown type %q", e.Type)}
	}
}
