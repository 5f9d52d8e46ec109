package kvstore

import (
	"context"
	"encoding/json"
	"errors"
)

// GetJSON decodes the value at key into dst. Returns ErrNotFound for absent keys.
func GetJSON(ctx context.Context, s Store, key string, dst interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw)
}

// GetStrings reads a JSON string list, treating an absent key as empty.
func GetStrings(ctx context.Context, s Store, key string) ([]string, error) {
	var list []string
	err := GetJSON(ctx, s, key, &list)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	return list, err
}

// AppendUnique adds id to the JSON string list at key unless already present.
func AppendUnique(ctx context.Context, s Store, key string, ids ...string) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var list []string
		if current != nil {
			if err := json.Unmarshal(current, &list); err != nil {
				return nil, err
			}
		}
		changed := false
		for _, id := range ids {
			if !containsString(list, id) {
				list = append(list, id)
				changed = true
			}
		}
		if !changed && current != nil {
			return nil, nil
		}
		if list == nil {
			list = []string{}
		}
		return json.Marshal(list)
	})
}

// RemoveString drops id from the JSON string list at key.
func RemoveString(ctx context.Context, s Store, key, id string) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, nil
		}
		var list []string
		if err := json.Unmarshal(current, &list); err != nil {
			return nil, err
		}
		out := make([]string, 0, len(list))
		for _, v := range list {
			if v != id {
				out = append(out, v)
			}
		}
		if len(out) == len(list) {
			return nil, nil
		}
		return json.Marshal(out)
	})
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
