package reconcile

import (
	"fmt"
	"strings"

	"github.com/Shri333/webtext-frontend/internal/model"
)

// CreateText builds the human-readable notification line for a membership
// change: "alice added bob", "alice added bob and carol", or
// "alice added bob, carol, and dave" for three or more subjects.
func CreateText(action string, subjects []model.User, actor model.User) string {
	switch len(subjects) {
	case 0:
		return fmt.Sprintf("%s %s", actor.Username, action)
	case 1:
		return fmt.Sprintf("%s %s %s", actor.Username, action, subjects[0].Username)
	case 2:
		return fmt.Sprintf("%s %s %s and %s", actor.Username, action, subjects[0].Username, subjects[1].Username)
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s ", actor.Username, action)
		for i, u := range subjects {
			if i == len(subjects)-1 {
				fmt.Fprintf(&b, "and %s", u.Username)
			} else {
				fmt.Fprintf(&b, "%s, ", u.Username)
			}
		}
		return b.String()
	}
}
