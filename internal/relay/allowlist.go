package relay

import (
	"strings"

	"github.com/benmeehan/pcremote/internal/utils"
)

// AllowList is the static set of user ids permitted to issue commands.
type AllowList struct {
	users map[string]struct{}
}

// NewAllowList builds an AllowList; blank ids are ignored.
func NewAllowList(userIDs []string) AllowList {
	cleaned := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return AllowList{users: utils.SliceToSet(cleaned)}
}

// Allowed reports whether userID may use the relay.
func (a AllowList) Allowed(userID string) bool {
	_, ok := a.users[userID]
	return ok
}

func (a AllowList) Len() int {
	return len(a.users)
}
