package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// TagSet is a set of string tags. Catalog files carry either a single
// string or a list; both decode into a TagSet.
type TagSet []string

func (s *TagSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*s = TagSet{}
			return nil
		}
		*s = TagSet{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tag set must be a string or a list of strings: %w", err)
	}
	*s = TagSet(list)
	return nil
}

func (s TagSet) Has(tag string) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Normalize trims tags, rewrites case-insensitive matches of known to their
// canonical spelling and removes duplicates. Order of first appearance is kept.
func (s TagSet) Normalize(known ...string) TagSet {
	out := make(TagSet, 0, len(s))
	for _, raw := range s {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		for _, k := range known {
			if strings.EqualFold(k, tag) {
				tag = k
				break
			}
		}
		if !out.Has(tag) {
			out = append(out, tag)
		}
	}
	return out
}

func (s TagSet) Value() (driver.Value, error) {
	return pq.StringArray(s).Value()
}

func (s *TagSet) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*s = TagSet(arr)
	return nil
}
