package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// reservedKeys are record fields mapped onto Item directly; everything else
// lands in Metadata.
var reservedKeys = map[string]bool{
	"id":          true,
	"title":       true,
	"description": true,
	"text":        true,
}

// LoadJSONFile loads a catalog from a JSON file holding an array of records
// with at least {id, title, description} fields. Extra fields are kept as
// item metadata. A missing or unreadable file is a startup error: the
// caller must refuse to serve rather than match against a partial catalog.
func LoadJSONFile(name, path string, logger *zap.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, itemFromRecord(rec))
	}

	cat := New(name, items)

	logger.Info("loaded catalog",
		zap.String("catalog", name),
		zap.String("path", path),
		zap.Int("records", len(records)),
		zap.Int("items", cat.Len()),
	)

	return cat, nil
}

// itemFromRecord maps a raw source record onto an Item. The embedded text
// is the explicit "text" field when present, otherwise "title. description"
// so both contribute to the embedding.
func itemFromRecord(rec map[string]any) Item {
	item := Item{
		Metadata: make(map[string]any),
	}

	if id, ok := rec["id"].(string); ok {
		item.ID = id
	} else if id, ok := rec["id"].(float64); ok {
		item.ID = fmt.Sprintf("%d", int64(id))
	}
	if title, ok := rec["title"].(string); ok {
		item.Title = title
	}

	if text, ok := rec["text"].(string); ok && strings.TrimSpace(text) != "" {
		item.Text = text
	} else {
		desc, _ := rec["description"].(string)
		item.Text = joinText(item.Title, desc)
	}

	for k, v := range rec {
		if !reservedKeys[k] {
			item.Metadata[k] = v
		}
	}

	return item
}

func joinText(title, description string) string {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return description
	case description == "":
		return title
	default:
		return title + ". " + description
	}
}
