package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlockKind discriminates the content-block union.
type BlockKind string

const (
	// BlockKindText is a block of plain text lines.
	BlockKindText BlockKind = "text"
	// BlockKindList is a bullet list of string items.
	BlockKindList BlockKind = "list"
	// BlockKindChecklist is a list of checkable items.
	BlockKindChecklist BlockKind = "checklist"
	// BlockKindImage references a stored image.
	BlockKindImage BlockKind = "image"
)

// ChecklistItem is one entry of a checklist block.
type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ContentBlock is one element of a note body. Exactly one payload field is
// meaningful, selected by Kind; the wire shape is dispatched on the "kind"
// discriminant so each variant keeps its own payload layout.
type ContentBlock struct {
	Kind     BlockKind
	Lines    []string        // text
	Items    []string        // list
	Checks   []ChecklistItem // checklist
	ImageRef string          // image
}

// contentBlockWire is the serialized shape of a block. Checklist and list
// variants share the "items" key, so the payload is decoded per kind.
type contentBlockWire struct {
	Kind     BlockKind       `json:"kind"`
	Lines    []string        `json:"lines,omitempty"`
	Items    json.RawMessage `json:"items,omitempty"`
	ImageRef string          `json:"imageRef,omitempty"`
}

// MarshalJSON emits the per-kind payload shape.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	wire := contentBlockWire{Kind: b.Kind, Lines: b.Lines, ImageRef: b.ImageRef}
	switch b.Kind {
	case BlockKindList:
		items, err := json.Marshal(b.Items)
		if err != nil {
			return nil, err
		}
		wire.Items = items
	case BlockKindChecklist:
		items, err := json.Marshal(b.Checks)
		if err != nil {
			return nil, err
		}
		wire.Items = items
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the payload according to the kind discriminant.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var wire contentBlockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*b = ContentBlock{Kind: wire.Kind, Lines: wire.Lines, ImageRef: wire.ImageRef}
	switch wire.Kind {
	case BlockKindList:
		if len(wire.Items) > 0 {
			if err := json.Unmarshal(wire.Items, &b.Items); err != nil {
				return fmt.Errorf("list block items: %w", err)
			}
		}
	case BlockKindChecklist:
		if len(wire.Items) > 0 {
			if err := json.Unmarshal(wire.Items, &b.Checks); err != nil {
				return fmt.Errorf("checklist block items: %w", err)
			}
		}
	}
	return nil
}

// Note is a user-owned document of content blocks. SharedWith grants
// non-owner read/edit access to the content; the list itself is mutated
// only by the owner. Invariant: OwnerID never appears in SharedWith.
type Note struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OwnerID    uint           `gorm:"not null;index" json:"owner_id"`
	Title      string         `gorm:"not null" json:"title"`
	Content    []ContentBlock `gorm:"serializer:json" json:"content"`
	SharedWith IDList         `gorm:"serializer:json" json:"shared_with"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Note) TableName() string {
	return "notes"
}
