package models

import "time"

// JSONObject is a schema-less JSON document.
type JSONObject map[string]any

// CollectionItem is one record of a named collection. ID is kept outside Data
// in storage and merged back in when the item is returned to clients.
type CollectionItem struct {
	ID             string     `json:"id" db:"id"`
	TenantID       string     `json:"-" db:"tenant_id"`
	CollectionName string     `json:"-" db:"collection_name"`
	Data           JSONObject `json:"-" db:"data"`
	CreatedAt      time.Time  `json:"-" db:"created_at"`
	UpdatedAt      time.Time  `json:"-" db:"updated_at"`
}

// Flatten returns Data with id set, the shape clients read and write.
func (i CollectionItem) Flatten() JSONObject {
	out := make(JSONObject, len(i.Data)+1)
	for k, v := range i.Data {
		out[k] = v
	}
	out["id"] = i.ID
	return out
}
