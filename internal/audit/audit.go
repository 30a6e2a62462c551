// Package audit records the administrative trail: one append-only entry
// per mutating operation, queryable by entity or actor.
package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/adesina-femi/staffcore/pkg/httperr"
)

type Entry struct {
	ID        string          `json:"id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Detail    json.RawMessage `json:"detail"`
	CreatedAt string          `json:"created_at"`
}

type Filter struct {
	Entity   string
	EntityID string
	Actor    string
	Limit    int
}

const defaultListLimit = 200

type Store interface {
	// Append persists the entry, assigning ID and CreatedAt.
	Append(ctx context.Context, e Entry) (Entry, error)
	// List returns entries newest first.
	List(ctx context.Context, f Filter) ([]Entry, error)
}

func validateEntry(e Entry) error {
	if strings.TrimSpace(e.Action) == "" {
		return httperr.NewBadRequest("audit action is required")
	}
	if strings.TrimSpace(e.Entity) == "" {
		return httperr.NewBadRequest("audit entity is required")
	}
	return nil
}

func normalizeDetail(d json.RawMessage) json.RawMessage {
	if len(strings.TrimSpace(string(d))) == 0 {
		return json.RawMessage(`{}`)
	}
	return d
}
