package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"` // Min 1, Max 250
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// Apply constrains a created_at/id keyset query to rows after the cursor and
// fetches one extra row so the caller can tell whether more remain. The query
// must order by created_at desc, id desc.
func Apply(page Pagination) func(*gorm.DB) *gorm.DB {
	return applyPrefixed(page, "")
}

// ApplyFor is Apply with the cursor columns qualified by table, for queries
// that join tables sharing column names.
func ApplyFor(table string, page Pagination) func(*gorm.DB) *gorm.DB {
	return applyPrefixed(page, table+".")
}

func applyPrefixed(page Pagination, prefix string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}
		if size > 250 {
			size = 250
		}
		if page.PageToken != "" {
			cursor, err := DecodeCursor(page.PageToken)
			if err == nil && cursor.CreatedAt != "" {
				if ts, terr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); terr == nil {
					tx = tx.Where("("+prefix+"created_at, "+prefix+"id) < (?, ?)", ts, cursor.ID)
				}
			}
		}
		return tx.Limit(size + 1)
	}
}

// BuildPageInfo trims the sentinel row fetched by Apply and reports whether a
// next page exists.
func BuildPageInfo[T any](data []*T, size int, extract func(*T) Cursor) ([]*T, PageInfo) {
	if size <= 0 {
		size = 50
	}
	if size > 250 {
		size = 250
	}
	if len(data) <= size {
		return data, PageInfo{HasMore: false}
	}
	data = data[:size]
	token, err := EncodeCursor(extract(data[len(data)-1]))
	if err != nil {
		return data, PageInfo{HasMore: true}
	}
	return data, PageInfo{HasMore: true, NextPageToken: token}
}
