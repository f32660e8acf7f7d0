package cache

import (
	"fmt"

	"github.com/sellerhub/navcore/internal/model"
)

// Context holds the discriminators that make a cached render result
// viewer-specific: the role bucket, login state and optional widget
// parameters. Keys are deterministic formatted strings rather than
// digests; every discriminator is a short enumerable token.
type Context struct {
	Role     string
	LoggedIn bool
	Widget   string // widget type, empty for plain tree renders
	Params   string // extra widget parameters (page id, device class)
}

// NewContext creates a cache context for a viewer.
func NewContext(v model.Viewer) Context {
	return Context{
		Role:     v.RoleBucket(),
		LoggedIn: v.LoggedIn,
	}
}

// Key generates the cache key for a menu render in this context.
// Format: menu:{id}:{role}:{in|out}[:{widget}[:{params}]]
func (c Context) Key(menuID int64) string {
	state := "out"
	if c.LoggedIn {
		state = "in"
	}
	key := fmt.Sprintf("menu:%d:%s:%s", menuID, c.Role, state)
	if c.Widget != "" {
		key += ":" + c.Widget
	}
	if c.Params != "" {
		key += ":" + c.Params
	}
	return key
}

// MenuPrefix returns the key prefix shared by all renders of a menu,
// used for per-menu invalidation.
func MenuPrefix(menuID int64) string {
	return fmt.Sprintf("menu:%d:", menuID)
}
