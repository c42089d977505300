package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/engine/mocks"
	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type harness struct {
	t        *testing.T
	actor    *engine.Actor
	outbound chan engine.Outbound
	result   chan error
}

func startActor(t *testing.T, notifier engine.Notifier) *harness {
	t.Helper()

	outbound := make(chan engine.Outbound, 16)
	clk := clock.NewMock(time.Unix(60, 0))
	eng := engine.NewEngine(newStore(), time.Minute, testLogger())
	actor := engine.NewActor(eng, clk, 8, outbound, notifier, testLogger())

	result := make(chan error, 1)

	go func() {
		result <- actor.Run(context.Background())
	}()

	return &harness{t: t, actor: actor, outbound: outbound, result: result}
}

func (h *harness) send(msg engine.Message) {
	h.t.Helper()
	require.NoError(h.t, h.actor.Send(context.Background(), msg))
}

func (h *harness) expect() engine.Outbound {
	h.t.Helper()

	select {
	case out := <-h.outbound:
		return out
	case <-time.After(2 * time.Second):
		h.t.Fatal("нет исходящего сообщения")
		return engine.Outbound{}
	}
}

func (h *harness) stop() {
	h.t.Helper()
	h.send(engine.Terminate{})

	select {
	case err := <-h.result:
		require.NoError(h.t, err)
	case <-time.After(2 * time.Second):
		h.t.Fatal("актор не остановился")
	}
}

func TestActor_OneTimeReminder(t *testing.T) {
	notifier := mocks.NewNotifier(t)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(r models.FiredReminder) bool {
		return r.UID == testUID && r.Text == "test" && r.ChatID == testChatID && !r.Repeating
	})).Return(nil).Once()

	h := startActor(t, notifier)

	h.send(engine.AddUser{User: models.User{UID: testUID, ChatID: testChatID, UTCOffset: -3}})
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgGreeting)}, h.expect().Commands)

	h.send(engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 1, Text: "1s test"})

	out := h.expect()
	assert.Equal(t, []models.UICommand{models.SendText("I'll remind you today at 03:01\ntest")}, out.Commands)
	require.NotNil(t, out.ReplyTo)
	assert.Equal(t, 1, *out.ReplyTo)

	h.send(engine.AdvanceTime{By: time.Second})

	out = h.expect()
	assert.Equal(t, engine.Outbound{
		UID:      testUID,
		ChatID:   testChatID,
		Commands: []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "test")},
	}, out)

	h.stop()
}

func TestActor_RepeatingReminder(t *testing.T) {
	h := startActor(t, nil)

	h.send(engine.AddUser{User: models.User{UID: testUID, ChatID: testChatID, UTCOffset: -3}})
	h.expect()

	h.send(engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 1, Text: "rep 1-1-1970 3.02 1m stretch"})
	assert.Equal(t, []models.UICommand{models.SendText("I'll remind you today at 03:02\nstretch")}, h.expect().Commands)

	h.send(engine.AdvanceTime{By: time.Minute})
	assert.Equal(t, []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "stretch")}, h.expect().Commands)

	h.send(engine.AdvanceTime{By: 30 * time.Second})
	h.send(engine.AdvanceTime{By: 30 * time.Second})
	assert.Equal(t, []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "stretch")}, h.expect().Commands)

	h.send(engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 2, Text: "/delete_rep"})
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgRepeatingHeader + "0) stretch")}, h.expect().Commands)

	h.send(engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 3, Text: "0"})
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgDone)}, h.expect().Commands)

	h.send(engine.AdvanceTime{By: time.Hour})
	h.send(engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 4, Text: "/list"})
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgNoActive)}, h.expect().Commands)

	h.stop()
}

func TestActor_ErrorReply(t *testing.T) {
	h := startActor(t, nil)

	h.send(engine.TextMessage{UID: 2, ChatID: 22, MsgID: 7, Text: "hello"})

	out := h.expect()
	assert.Equal(t, int64(22), out.ChatID)
	assert.Equal(t, []models.UICommand{
		models.SendText(engine.ErrorPrefix + "no /start processed for user 2"),
	}, out.Commands)

	h.stop()
}

func TestActor_StopsOnContextCancel(t *testing.T) {
	outbound := make(chan engine.Outbound, 1)
	eng := engine.NewEngine(newStore(), time.Minute, testLogger())
	actor := engine.NewActor(eng, clock.NewReal(), 1, outbound, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)

	go func() {
		result <- actor.Run(ctx)
	}()

	actor.RequestTick()
	cancel()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("актор не остановился")
	}

	<-actor.Done()
	assert.ErrorIs(t, actor.Send(context.Background(), engine.Terminate{}), engine.ErrActorStopped)
}

func TestActor_ProcessAndWakeup(t *testing.T) {
	outbound := make(chan engine.Outbound, 8)
	clk := clock.NewMock(time.Unix(60, 0))
	eng := engine.NewEngine(newStore(), time.Minute, testLogger())
	actor := engine.NewActor(eng, clk, 1, outbound, nil, testLogger())
	ctx := context.Background()

	stop, err := actor.Process(ctx, engine.AddUser{User: models.User{UID: testUID, ChatID: testChatID, UTCOffset: -3}})
	require.NoError(t, err)
	assert.False(t, stop)

	_, err = actor.Process(ctx, engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 1, Text: "10s test"})
	require.NoError(t, err)
	assert.Len(t, outbound, 2)

	assert.Equal(t, 10*time.Second, actor.TimeUntilNextWakeup())

	clk.Advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, actor.TimeUntilNextWakeup())

	stop, err = actor.Process(ctx, engine.Terminate{})
	require.NoError(t, err)
	assert.True(t, stop)
}
