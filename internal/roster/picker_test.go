package roster

import (
	"testing"

	"github.com/Shri333/webtext-frontend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = model.User{ID: "u1", Username: "alice"}
	bob   = model.User{ID: "u2", Username: "bob"}
	carol = model.User{ID: "u3", Username: "carol"}
)

func TestPickAndUnpick(t *testing.T) {
	p := NewPicker([]model.User{alice, bob, carol})

	require.True(t, p.Pick("u2"))
	assert.Equal(t, []string{"u2"}, p.SelectedIDs())
	assert.Len(t, p.Available(), 2)

	require.True(t, p.Unpick("u2"))
	assert.Empty(t, p.SelectedIDs())
	assert.Len(t, p.Available(), 3)

	assert.False(t, p.Pick("missing"))
	assert.False(t, p.Unpick("missing"))
}

func TestReconcileAddsNewUserToAvailable(t *testing.T) {
	p := NewPicker([]model.User{alice, bob})
	p.Pick("u1")

	dave := model.User{ID: "u4", Username: "dave"}
	p.Reconcile([]model.User{alice, bob, dave})

	// The new user appears unselected; nobody changed sides.
	assert.Equal(t, []string{"u1"}, p.SelectedIDs())
	av := p.Available()
	require.Len(t, av, 2)
	assert.Equal(t, "u2", av[0].ID)
	assert.Equal(t, "u4", av[1].ID)
}

func TestReconcileRenamePreservesSetMembership(t *testing.T) {
	p := NewPicker([]model.User{alice, bob})
	p.Pick("u1")

	renamed := model.User{ID: "u1", Username: "alicia"}
	p.Reconcile([]model.User{renamed, bob})

	sel := p.Selected()
	require.Len(t, sel, 1)
	assert.Equal(t, "alicia", sel[0].Username)
	assert.Len(t, p.Available(), 1)
}

func TestReconcileRemovesDeletedUserFromEitherSet(t *testing.T) {
	p := NewPicker([]model.User{alice, bob, carol})
	p.Pick("u2")

	t.Run("deleted from selected", func(t *testing.T) {
		p.Reconcile([]model.User{alice, carol})
		assert.Empty(t, p.SelectedIDs())
		assert.Len(t, p.Available(), 2)
	})

	t.Run("deleted from available", func(t *testing.T) {
		p.Reconcile([]model.User{alice})
		assert.Empty(t, p.SelectedIDs())
		av := p.Available()
		require.Len(t, av, 1)
		assert.Equal(t, "u1", av[0].ID)
	})
}

func TestReconcileConvergesInOnePass(t *testing.T) {
	p := NewPicker([]model.User{alice, bob})
	p.Pick("u1")

	// One change batches an add, a rename, and a delete.
	renamedBob := model.User{ID: "u2", Username: "bobby"}
	dave := model.User{ID: "u4", Username: "dave"}
	next := []model.User{alice, renamedBob, dave}
	p.Reconcile(next)

	union := append(p.Selected(), p.Available()...)
	require.Len(t, union, len(next))
	byID := make(map[string]model.User, len(union))
	for _, u := range union {
		_, dup := byID[u.ID]
		require.False(t, dup, "identity %s present in both sets", u.ID)
		byID[u.ID] = u
	}
	for _, want := range next {
		got, ok := byID[want.ID]
		require.True(t, ok)
		assert.Equal(t, want.Username, got.Username)
	}

	// A second pass over the same roster is a no-op.
	before := p.SelectedIDs()
	p.Reconcile(next)
	assert.Equal(t, before, p.SelectedIDs())
}

func TestReconcileNoChangeIsNoop(t *testing.T) {
	p := NewPicker([]model.User{alice, bob})
	p.Pick("u2")

	p.Reconcile([]model.User{alice, bob})

	assert.Equal(t, []string{"u2"}, p.SelectedIDs())
	require.Len(t, p.Available(), 1)
	assert.Equal(t, "u1", p.Available()[0].ID)
}
