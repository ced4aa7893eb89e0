/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* A bucket key may be composite, and all keys sharing a prefix can
be iterated in order.
* Sequences generate monotonically increasing identifiers within a bucket.
*/
package orm
