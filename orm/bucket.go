package orm

import (
	"fmt"
	"regexp"

	matching "github.com/ryancwalsh/donation-matching"
	"github.com/ryancwalsh/donation-matching/errors"
)

var (
	isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString
)

// Validater is implemented by models that can check their own state
// before being saved.
type Validater interface {
	Validate() error
}

// Bucket is a prefixed subspace of the DB. All objects stored in one
// bucket should be of the same type.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of the bucket.
func (b Bucket) Name() string {
	return b.name
}

// Sequence returns a Sequence stored under this bucket's namespace.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// DBKey is the full key we store in the db, including prefix.
// A new slice is allocated so consecutive calls never share memory.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Has returns true if an object is stored under given key.
func (b Bucket) Has(db matching.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return ok, nil
}

// One loads the object stored under given key into dest. ErrNotFound is
// returned if there is no such object.
func (b Bucket) One(db matching.ReadOnlyKVStore, key []byte, dest matching.Persistent) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s: %x", b.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "%s: cannot unmarshal: %s", b.name, err)
	}
	return nil
}

// Put stores an object under given key. If the object can be validated it
// must be valid.
func (b Bucket) Put(db matching.KVStore, key []byte, obj matching.Persistent) error {
	if v, ok := obj.(Validater); ok {
		if err := v.Validate(); err != nil {
			return errors.Wrapf(err, "invalid %s", b.name)
		}
	}
	raw, err := obj.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrModel, "%s: cannot marshal: %s", b.name, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Delete removes an object. Deleting a missing object is not an error.
func (b Bucket) Delete(db matching.KVStore, key []byte) error {
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// Iterate returns an iterator over all objects whose key starts with given
// prefix, in ascending key order. Returned keys do not contain the bucket
// prefix.
func (b Bucket) Iterate(db matching.ReadOnlyKVStore, prefix []byte) (matching.Iterator, error) {
	start := b.DBKey(prefix)
	it, err := db.Iterator(start, PrefixEnd(start))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &bucketIterator{it: it, strip: len(b.prefix)}, nil
}

type bucketIterator struct {
	it    matching.Iterator
	strip int
}

func (i *bucketIterator) Next() ([]byte, []byte, error) {
	key, value, err := i.it.Next()
	if err != nil {
		return nil, nil, err
	}
	return key[i.strip:], value, nil
}

func (i *bucketIterator) Release() {
	i.it.Release()
}
