package timefmt

import (
	"testing"
	"time"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalize(t *testing.T) {
	east, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 19:04 UTC is 3:04 PM in New York (EDT).
	instant := time.Date(2024, 6, 1, 19, 4, 0, 0, time.UTC)
	assert.Equal(t, "3:04 PM", Localize(instant, east))

	// Morning hours carry no leading zero.
	morning := time.Date(2024, 6, 1, 13, 9, 0, 0, time.UTC)
	assert.Equal(t, "9:09 AM", Localize(morning, east))
}

func TestLocalizeSameInstantDifferentZones(t *testing.T) {
	instant := time.Date(2024, 6, 1, 19, 4, 0, 0, time.UTC)

	east, _ := time.LoadLocation("America/New_York")
	west, _ := time.LoadLocation("America/Los_Angeles")

	assert.Equal(t, "3:04 PM", Localize(instant, east))
	assert.Equal(t, "12:04 PM", Localize(instant, west))
	assert.Equal(t, "7:04 PM", Localize(instant, time.UTC))
}

func TestLocalizeMessageIncludesReply(t *testing.T) {
	bob := model.User{ID: "u2", Username: "bob"}
	wire := model.WireMessage{
		ID:     "m1",
		Text:   "hello",
		Time:   time.Date(2024, 6, 1, 19, 4, 0, 0, time.UTC),
		ChatID: "c1",
		User:   &bob,
		Reply:  &model.WireReply{ID: "m0", Text: "hi", User: bob},
	}

	msg := LocalizeMessage(wire, time.UTC)
	assert.Equal(t, "7:04 PM", msg.Time)
	require.NotNil(t, msg.Reply)
	assert.Equal(t, "m0", msg.Reply.ID)
}

func TestLocalizeFullChatLocalizesEveryMessage(t *testing.T) {
	alice := model.User{ID: "u1", Username: "alice"}
	latest := model.WireMessage{ID: "m2", Time: time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC), ChatID: "c1", User: &alice}
	wire := model.WireFullChat{
		WireChat: model.WireChat{
			ID:            "c1",
			Admin:         alice,
			LatestMessage: &latest,
		},
		Messages: []model.WireMessage{
			latest,
			{ID: "m1", Time: time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC), ChatID: "c1", User: &alice},
		},
	}

	fc := LocalizeFullChat(wire, time.UTC)
	require.NotNil(t, fc.LatestMessage)
	assert.Equal(t, "8:00 PM", fc.LatestMessage.Time)
	require.Len(t, fc.Messages, 2)
	assert.Equal(t, "8:00 PM", fc.Messages[0].Time)
	assert.Equal(t, "7:00 PM", fc.Messages[1].Time)
}
