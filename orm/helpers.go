package orm

// PrefixEnd returns the first key that is greater than every key starting
// with given prefix. Nil is returned when no such key exists, which for
// an iterator means no upper bound.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
