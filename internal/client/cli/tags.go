package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/services"
)

// Tags lists one dictionary, refreshing it first when the server answers.
func (a *App) Tags(ctx context.Context, kind models.TagKind) error {
	if res := a.tags.Refresh(ctx, kind); !res.OK() {
		a.log.Debug(ctx, "dictionary refresh failed", "kind", kind, "result", res.String())
	}
	renderTags(a.out, a.core.Dictionary(kind))
	return nil
}

// AddTag adds a custom entry; the rest of the line is its display name.
func (a *App) AddTag(ctx context.Context, kind models.TagKind, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return usageError(fmt.Sprintf("add-%s <name>", kind))
	}
	tag, res := a.tags.Add(ctx, kind, name)
	if res.Kind == services.Validation {
		return errors.New(res.String())
	}
	return a.outcome(res, fmt.Sprintf("Added %s %q as %s", kind, tag.Name, tag.Key))
}

// DeleteTag removes a custom entry by key.
func (a *App) DeleteTag(ctx context.Context, kind models.TagKind, args []string) error {
	if len(args) != 1 {
		return usageError(fmt.Sprintf("delete-%s <key>", kind))
	}
	res := a.tags.Remove(ctx, kind, args[0])
	return a.outcome(res, fmt.Sprintf("Deleted %s %s", kind, args[0]))
}
