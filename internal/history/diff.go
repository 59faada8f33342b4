package history

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff compares the response bodies of two entries. Bodies are pretty-printed
// before diffing so changes line up on JSON structure.
func (s *Store) Diff(ctx context.Context, baseID, headID string) (*BodyDiff, error) {
	base, err := s.Get(ctx, baseID)
	if err != nil {
		return nil, err
	}
	head, err := s.Get(ctx, headID)
	if err != nil {
		return nil, err
	}
	return DiffEntries(base, head), nil
}

// DiffEntries computes the chunked body diff between two entries.
func DiffEntries(base, head *Entry) *BodyDiff {
	baseText := diffText(base)
	headText := diffText(head)

	out := &BodyDiff{
		BaseID:     base.ID,
		HeadID:     head.ID,
		BaseStatus: base.Status,
		HeadStatus: head.Status,
		Identical:  baseText == headText && base.Status == head.Status,
		Chunks:     make([]Chunk, 0),
	}
	if baseText == headText {
		return out
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(baseText, headText, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		var chunkType string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunkType = "added"
		case diffmatchpatch.DiffDelete:
			chunkType = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		out.Chunks = append(out.Chunks, Chunk{Type: chunkType, Content: d.Text})
	}
	return out
}

func diffText(e *Entry) string {
	if e.Failed() {
		return "error: " + e.Error
	}
	if len(e.ResponseBody) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, e.ResponseBody, "", "  "); err != nil {
		return string(e.ResponseBody)
	}
	return buf.String()
}
