package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// TagList is an ordered list of short labels (perks, categories).
type TagList []string

// DecodeTags turns a stored list field into a TagList. It accepts a JSON array,
// a JSON string that itself holds an array, or blank text. On failure the
// returned list is empty and the error describes the bad input.
func DecodeTags(raw string) (TagList, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return TagList{}, nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return TagList(list), nil
	}

	var nested string
	if err := json.Unmarshal([]byte(raw), &nested); err == nil {
		return DecodeTags(nested)
	}

	return TagList{}, fmt.Errorf("decode tag list %q: not a JSON array", truncate(raw, 64))
}

// DecodeCategories is DecodeTags followed by NormalizeTags, so stored
// categories compare equal to case-folded spending habits.
func DecodeCategories(raw string) (TagList, error) {
	list, err := DecodeTags(raw)
	return TagList(NormalizeTags(list)), err
}

// Encode is the inverse of DecodeTags for storage.
func (t TagList) Encode() string {
	if t == nil {
		return "[]"
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// UnmarshalJSON accepts both ["a","b"] and "[\"a\",\"b\"]". Anything else
// decodes to an empty list instead of failing the enclosing document.
func (t *TagList) UnmarshalJSON(data []byte) error {
	list, err := DecodeTags(string(data))
	if err != nil {
		*t = TagList{}
		return nil
	}
	*t = list
	return nil
}

func (t TagList) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Contains reports whether tag is present.
func (t TagList) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// NormalizeTags case-folds, trims and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	folder := cases.Fold()
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = folder.String(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
