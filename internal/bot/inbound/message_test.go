package inbound_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/inbound"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected engine.Message
	}{
		{
			name:  "Add user with default offset",
			input: `{"type":"add_user","uid":7,"username":"neo"}`,
			expected: engine.AddUser{User: models.User{
				UID:       7,
				Username:  "neo",
				ChatID:    7,
				UTCOffset: -3,
			}},
		},
		{
			name:  "Add user with explicit offset",
			input: `{"type":"add_user","uid":7,"chat_id":70,"utc_offset":0}`,
			expected: engine.AddUser{User: models.User{
				UID:    7,
				ChatID: 70,
			}},
		},
		{
			name:     "Text",
			input:    `{"type":"text","uid":7,"msg_id":3,"text":"1h tea"}`,
			expected: engine.TextMessage{UID: 7, ChatID: 7, MsgID: 3, Text: "1h tea"},
		},
		{
			name:  "Keyboard",
			input: `{"type":"keyboard","uid":7,"chat_id":9,"msg_id":4,"callback_data":"5m","msg_text":"tea"}`,
			expected: engine.KeyboardMessage{
				UID:          7,
				ChatID:       9,
				MsgID:        4,
				CallbackData: "5m",
				MsgText:      "tea",
			},
		},
		{
			name:     "Advance time",
			input:    `{"type":"advance_time","advance_seconds":90}`,
			expected: engine.AdvanceTime{By: 90 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := inbound.Decode([]byte(tt.input), -3)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, msg)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	inputs := []string{
		`not json`,
		`{"type":"text"}`,
		`{"type":"keyboard","uid":1}`,
		`{"type":"advance_time","advance_seconds":0}`,
		`{"type":"delete","uid":1}`,
	}

	for _, input := range inputs {
		_, err := inbound.Decode([]byte(input), 0)
		assert.ErrorIs(t, err, &domainerrors.ErrMalformedInbound{}, input)
	}
}
