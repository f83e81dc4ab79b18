package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Group mirrors the server's group representation.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Expense mirrors the server's expense representation.
type Expense struct {
	ID             string    `json:"id"`
	GroupID        string    `json:"group_id"`
	Description    string    `json:"description"`
	AmountCents    int64     `json:"amount_cents"`
	PayerID        string    `json:"payer_id"`
	ParticipantIDs []string  `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

// Resource is a parametrized CRUD client for one server collection. The
// server wraps responses in an envelope keyed by resource name, so a
// Resource carries its singular and plural keys.
type Resource[T any] struct {
	client   *Client
	basePath string
	singular string
	plural   string
}

// NewResource builds a resource client rooted at basePath.
func NewResource[T any](c *Client, basePath, singular, plural string) *Resource[T] {
	return &Resource[T]{
		client:   c,
		basePath: basePath,
		singular: singular,
		plural:   plural,
	}
}

// Groups returns the group collection client.
func (c *Client) Groups() *Resource[Group] {
	return NewResource[Group](c, "/groups", "group", "groups")
}

// Expenses returns the expense collection client for one group.
func (c *Client) Expenses(groupID string) *Resource[Expense] {
	return NewResource[Expense](c, "/groups/"+groupID+"/expenses", "expense", "expenses")
}

// Create posts a new resource and returns the created representation.
func (r *Resource[T]) Create(ctx context.Context, body any) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := r.client.do(ctx, http.MethodPost, r.basePath, body, &envelope); err != nil {
		return nil, err
	}
	return r.decodeOne(envelope)
}

// Get fetches one resource by ID.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, r.basePath+"/"+id, nil, &envelope); err != nil {
		return nil, err
	}
	return r.decodeOne(envelope)
}

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, r.basePath, nil, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[r.plural]
	if !ok {
		return nil, fmt.Errorf("response missing %q", r.plural)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.plural, err)
	}
	return items, nil
}

// Delete removes one resource by ID.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.basePath+"/"+id, nil, nil)
}

func (r *Resource[T]) decodeOne(envelope map[string]json.RawMessage) (*T, error) {
	raw, ok := envelope[r.singular]
	if !ok {
		return nil, fmt.Errorf("response missing %q", r.singular)
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.singular, err)
	}
	return &item, nil
}
