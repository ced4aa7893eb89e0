package store

import (
	"bytes"

	"github.com/ryancwalsh/donation-matching/errors"
)

// SliceIterator wraps an Iterator over a slice of models
type SliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{
		data: data,
	}
}

// Next implements Iterator.
func (s *SliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release implements Iterator.
func (s *SliceIterator) Release() {
	s.data = nil
}

// ReadAll consumes given iterator and returns all items. The iterator is
// released.
func ReadAll(it Iterator) ([]Model, error) {
	defer it.Release()

	var res []Model
	for {
		switch key, value, err := it.Next(); {
		case err == nil:
			res = append(res, Model{Key: key, Value: value})
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

// cacheItem is an entry of a cache layer. A deleted entry hides the value
// of the parent layer.
type cacheItem struct {
	key     []byte
	value   []byte
	deleted bool
}

// mergeAscending combines the sorted entries of a cache layer with the
// sorted models of its parent. Entries of the cache layer take precedence.
func mergeAscending(ours []cacheItem, parent []Model) []Model {
	res := make([]Model, 0, len(ours)+len(parent))
	i, j := 0, 0
	for i < len(ours) || j < len(parent) {
		var cmp int
		switch {
		case i == len(ours):
			cmp = 1
		case j == len(parent):
			cmp = -1
		default:
			cmp = bytes.Compare(ours[i].key, parent[j].Key)
		}

		switch {
		case cmp < 0:
			if !ours[i].deleted {
				res = append(res, Model{Key: ours[i].key, Value: ours[i].value})
			}
			i++
		case cmp > 0:
			res = append(res, parent[j])
			j++
		default:
			if !ours[i].deleted {
				res = append(res, Model{Key: ours[i].key, Value: ours[i].value})
			}
			i++
			j++
		}
	}
	return res
}

func reverseModels(models []Model) []Model {
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return models
}
