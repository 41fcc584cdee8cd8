package reconcile

import (
	"testing"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCreateText(t *testing.T) {
	actor := model.User{ID: "u1", Username: "alice"}
	u := func(name string) model.User { return model.User{ID: name, Username: name} }

	cases := []struct {
		name     string
		subjects []model.User
		want     string
	}{
		{"none", nil, "alice added"},
		{"one", []model.User{u("bob")}, "alice added bob"},
		{"two", []model.User{u("bob"), u("carol")}, "alice added bob and carol"},
		{"three", []model.User{u("bob"), u("carol"), u("dave")}, "alice added bob, carol, and dave"},
		{"four", []model.User{u("bob"), u("carol"), u("dave"), u("erin")}, "alice added bob, carol, dave, and erin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CreateText("added", tc.subjects, actor))
		})
	}
}

func TestCreateTextRemoved(t *testing.T) {
	actor := model.User{ID: "u1", Username: "alice"}
	got := CreateText("removed", []model.User{{ID: "u2", Username: "bob"}}, actor)
	assert.Equal(t, "alice removed bob", got)
}
