package engine

import (
	"time"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// Message is an inbound actor message.
type Message interface {
	actorMessage()
}

type AddUser struct {
	User models.User
}

type TextMessage struct {
	UID    int64
	ChatID int64
	MsgID  int
	Text   string
}

type KeyboardMessage struct {
	UID          int64
	ChatID       int64
	MsgID        int
	CallbackData string
	MsgText      string
}

// AdvanceTime moves a mock clock forward and runs a tick. With a real clock it
// only runs the tick.
type AdvanceTime struct {
	By time.Duration
}

type Terminate struct{}

type tick struct{}

func (AddUser) actorMessage()         {}
func (TextMessage) actorMessage()     {}
func (KeyboardMessage) actorMessage() {}
func (AdvanceTime) actorMessage()     {}
func (Terminate) actorMessage()       {}
func (tick) actorMessage()            {}
