package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	botservice "github.com/central-university-dev/go-remu/internal/bot/service"
	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/infrastructure/repositories/memory"
)

const transcriptBuffer = 1024

// Script is a recorded chat session. Steps run in order against an in-memory
// store and a clock that only moves on advance steps.
type Script struct {
	Start string `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one of its fields.
type Step struct {
	AddUser *UserStep   `yaml:"add_user,omitempty"`
	Text    *TextStep   `yaml:"text,omitempty"`
	Button  *ButtonStep `yaml:"button,omitempty"`
	Advance string      `yaml:"advance,omitempty"`
}

type UserStep struct {
	UID       int64  `yaml:"uid"`
	ChatID    int64  `yaml:"chat_id"`
	Username  string `yaml:"username"`
	UTCOffset *int   `yaml:"utc_offset"`
}

type TextStep struct {
	UID    int64  `yaml:"uid"`
	ChatID int64  `yaml:"chat_id"`
	MsgID  int    `yaml:"msg_id"`
	Text   string `yaml:"text"`
}

type ButtonStep struct {
	UID     int64  `yaml:"uid"`
	ChatID  int64  `yaml:"chat_id"`
	MsgID   int    `yaml:"msg_id"`
	Data    string `yaml:"data"`
	MsgText string `yaml:"msg_text"`
}

// StepRecord is one step of the json transcript.
type StepRecord struct {
	Step     string            `json:"step"`
	Now      string            `json:"now"`
	Outbound []engine.Outbound `json:"outbound"`
}

func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate <script.yaml>",
		Short: "Replay a scripted chat session against a simulated clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := LoadScript(args[0])
			if err != nil {
				return err
			}

			return RunScript(cmd.Context(), cmd.OutOrStdout(), rootOpts, script, rootOpts.logger(cmd))
		},
	}
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	var script Script

	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("decode script %s: %w", path, err)
	}

	return &script, nil
}

// RunScript replays the script and writes one block per step.
func RunScript(ctx context.Context, w io.Writer, opts *RootOptions, script *Script, logger *slog.Logger) error {
	start, err := time.Parse(time.RFC3339, script.Start)
	if err != nil {
		return fmt.Errorf("invalid start %q: %w", script.Start, err)
	}

	store := botservice.NewEventStore(
		memory.NewUserRepository(),
		memory.NewActiveEventRepository(),
		memory.NewTemplateRepository(),
		memory.NewTransactor(),
		logger,
	)

	clk := clock.NewMock(start)
	outbound := make(chan engine.Outbound, transcriptBuffer)
	actor := engine.NewActor(engine.NewEngine(store, time.Minute, logger), clk, 1, outbound, nil, logger)

	records := make([]StepRecord, 0, len(script.Steps))

	for i, step := range script.Steps {
		msg, label, err := step.message(opts.UTCOffset)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		if _, err := actor.Process(ctx, msg); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		records = append(records, StepRecord{
			Step:     label,
			Now:      clk.Now().Format(time.RFC3339),
			Outbound: drain(outbound),
		})
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(records)
	}

	for _, record := range records {
		writeRecord(w, record)
	}

	return nil
}

func (s Step) message(defaultOffset int) (engine.Message, string, error) {
	switch {
	case s.AddUser != nil:
		offset := defaultOffset
		if s.AddUser.UTCOffset != nil {
			offset = *s.AddUser.UTCOffset
		}

		chatID := chatOrUID(s.AddUser.ChatID, s.AddUser.UID)

		return engine.AddUser{User: models.User{
				UID:       s.AddUser.UID,
				Username:  s.AddUser.Username,
				ChatID:    chatID,
				UTCOffset: offset,
			}},
			fmt.Sprintf("add_user uid=%d chat=%d", s.AddUser.UID, chatID),
			nil
	case s.Text != nil:
		return engine.TextMessage{
				UID:    s.Text.UID,
				ChatID: chatOrUID(s.Text.ChatID, s.Text.UID),
				MsgID:  s.Text.MsgID,
				Text:   s.Text.Text,
			},
			fmt.Sprintf("text uid=%d msg=%d %q", s.Text.UID, s.Text.MsgID, s.Text.Text),
			nil
	case s.Button != nil:
		return engine.KeyboardMessage{
				UID:          s.Button.UID,
				ChatID:       chatOrUID(s.Button.ChatID, s.Button.UID),
				MsgID:        s.Button.MsgID,
				CallbackData: s.Button.Data,
				MsgText:      s.Button.MsgText,
			},
			fmt.Sprintf("button uid=%d msg=%d %q", s.Button.UID, s.Button.MsgID, s.Button.Data),
			nil
	case s.Advance != "":
		by, err := time.ParseDuration(s.Advance)
		if err != nil {
			return nil, "", fmt.Errorf("invalid advance %q: %w", s.Advance, err)
		}

		if by <= 0 {
			return nil, "", fmt.Errorf("advance must be positive, got %s", by)
		}

		return engine.AdvanceTime{By: by}, "advance " + by.String(), nil
	default:
		return nil, "", fmt.Errorf("empty step")
	}
}

func chatOrUID(chatID, uid int64) int64 {
	if chatID == 0 {
		return uid
	}

	return chatID
}

func drain(outbound <-chan engine.Outbound) []engine.Outbound {
	var batches []engine.Outbound

	for {
		select {
		case out := <-outbound:
			batches = append(batches, out)
		default:
			return batches
		}
	}
}

func writeRecord(w io.Writer, record StepRecord) {
	fmt.Fprintf(w, "> %s @ %s\n", record.Step, record.Now)

	for _, out := range record.Outbound {
		for _, cmd := range out.Commands {
			fmt.Fprintf(w, "< [%d] %s\n", out.ChatID, formatCommand(cmd, out.ReplyTo))
		}
	}
}

func formatCommand(cmd models.UICommand, replyTo *int) string {
	switch cmd.Kind {
	case models.UISend:
		line := fmt.Sprintf("send %q", cmd.Text)
		if replyTo != nil {
			line += fmt.Sprintf(" reply_to=%d", *replyTo)
		}

		return line
	case models.UIKeyboard:
		return fmt.Sprintf("keyboard %s %q", cmd.Keyboard, cmd.Text)
	case models.UICalendar:
		view := cmd.Calendar
		if view == nil {
			return "calendar"
		}

		line := fmt.Sprintf("calendar %d-%02d %q", view.Year, int(view.Month), view.Message)
		if view.MsgID != nil {
			line += fmt.Sprintf(" edit=%d", *view.MsgID)
		}

		return line
	case models.UIDeleteMessage:
		return fmt.Sprintf("delete_message %d", cmd.MsgID)
	case models.UIDeleteKeyboard:
		return fmt.Sprintf("delete_keyboard %d", cmd.MsgID)
	default:
		return string(cmd.Kind)
	}
}
