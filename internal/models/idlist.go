package models

// IDList is a document-style set of entity IDs stored as a JSON column.
// Order is preserved for stable responses; membership helpers keep the
// set semantics the aggregates rely on.
type IDList []uint

// Contains reports whether id is present.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if not already present and returns the updated list.
func (l IDList) Add(id uint) IDList {
	if l.Contains(id) {
		return l
	}
	return append(l, id)
}

// Remove deletes id and returns the updated list.
func (l IDList) Remove(id uint) IDList {
	out := l[:0]
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Dedupe returns the list with duplicates dropped, keeping first occurrences.
func (l IDList) Dedupe() IDList {
	seen := make(map[uint]struct{}, len(l))
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Union returns l plus every id of other not already present.
func (l IDList) Union(other IDList) IDList {
	out := l
	for _, v := range other {
		out = out.Add(v)
	}
	return out
}
