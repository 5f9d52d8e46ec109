package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/kvstore"
)

func contentKey(id string) string {
	return "content:" + id
}

// contentIndexKey 每种内容一个索引，保存 id 列表
func contentIndexKey(kind model.ContentKind) string {
	return "index:content:" + string(kind)
}

type ContentRepository struct {
	Store kvstore.Store
}

func NewContentRepository(store kvstore.Store) *ContentRepository {
	return &ContentRepository{Store: store}
}

func (r *ContentRepository) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	var item model.ContentItem
	err := kvstore.GetJSON(ctx, r.Store, contentKey(id), &item)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, util.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create stores item and registers it in its kind's index.
func (r *ContentRepository) Create(ctx context.Context, item *model.ContentItem) error {
	if err := kvstore.SetJSON(ctx, r.Store, contentKey(item.ID), item); err != nil {
		return err
	}
	return kvstore.AppendUnique(ctx, r.Store, contentIndexKey(item.Kind), item.ID)
}

// CreateIfAbsent is Create without overwriting an existing item. Reports whether it wrote.
func (r *ContentRepository) CreateIfAbsent(ctx context.Context, item *model.ContentItem) (bool, error) {
	return saveIfAbsent(ctx, r.Store, contentKey(item.ID), contentIndexKey(item.Kind), item.ID, item)
}

// Update applies fn to the stored item atomically. fn must not change the kind.
func (r *ContentRepository) Update(ctx context.Context, id string, fn func(item *model.ContentItem) error) (*model.ContentItem, error) {
	var result model.ContentItem
	err := r.Store.Update(ctx, contentKey(id), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, util.ErrContentNotFound
		}
		var item model.ContentItem
		if err := json.Unmarshal(current, &item); err != nil {
			return nil, fmt.Errorf("decode content %s: %w", id, err)
		}
		kind := item.Kind
		if err := fn(&item); err != nil {
			return nil, err
		}
		item.Kind = kind
		result = item
		return json.Marshal(item)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes the item and drops it from its index.
func (r *ContentRepository) Delete(ctx context.Context, id string) (*model.ContentItem, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Store.Delete(ctx, contentKey(id)); err != nil {
		return nil, err
	}
	if err := kvstore.RemoveString(ctx, r.Store, contentIndexKey(item.Kind), id); err != nil {
		return nil, err
	}
	return item, nil
}

// ListByKind returns the items of kind in index order. Dangling index entries are skipped.
func (r *ContentRepository) ListByKind(ctx context.Context, kind model.ContentKind) ([]model.ContentItem, error) {
	ids, err := kvstore.GetStrings(ctx, r.Store, contentIndexKey(kind))
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = contentKey(id)
	}
	return loadAll[model.ContentItem](ctx, r.Store, keys)
}

// loadAll MGets keys and decodes every present value, preserving order.
func loadAll[T any](ctx context.Context, s kvstore.Store, keys []string) ([]T, error) {
	raws, err := s.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, v)
	}
	return out, nil
}
