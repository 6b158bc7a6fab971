package service

import (
	"sort"

	"name-matcher/internal/matching/model"
)

// blockSize is the prefix length, in runes, used to bucket keys.
const blockSize = 4

// BlockKey returns the first four runes of a normalized key. Keys whose
// first four runes differ are never compared, even when they are similar.
func BlockKey(key string) string {
	n := 0
	for i := range key {
		if n == blockSize {
			return key[:i]
		}
		n++
	}
	return key
}

// record is a row of one side after normalization. The source Row is left untouched.
type record struct {
	pos   int
	name  any
	id    any
	key   string
	block string
}

// collect normalizes the name column of a dataset, dropping rows whose key is empty.
func collect(d model.Dataset, nameCol, idCol string, withID bool) []record {
	out := make([]record, 0, len(d.Rows))
	for i, row := range d.Rows {
		name := row[nameCol]
		key := Normalize(name)
		if key == "" {
			continue
		}
		r := record{pos: i, name: name, key: key, block: BlockKey(key)}
		if withID {
			r.id = row[idCol]
		}
		out = append(out, r)
	}
	return out
}

// blockIndex groups records by block key, keeping dataset order inside each bucket.
type blockIndex map[string][]record

func buildBlocks(recs []record) blockIndex {
	idx := make(blockIndex)
	for _, r := range recs {
		if r.block == "" {
			continue
		}
		idx[r.block] = append(idx[r.block], r)
	}
	return idx
}

// sharedBlocks returns block keys present in both indexes, sorted for a stable run order.
func sharedBlocks(a, b blockIndex) []string {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	out := make([]string, 0, len(small))
	for k := range small {
		if k == "" {
			continue
		}
		if _, ok := large[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
