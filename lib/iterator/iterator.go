package iterator

type Iterator[T any] interface {
	HasNext() bool
	Next() (T, error)
}

// ClosableIterator is an [Iterator] holding resources (e.g. a database cursor) that must be released by the consumer,
// whether or not it iterated to the end.
type ClosableIterator[T any] interface {
	Iterator[T]
	Close() error
}

type nopCloser[T any] struct {
	Iterator[T]
}

func (nopCloser[T]) Close() error {
	return nil
}

// NopCloser wraps an [Iterator] that holds no resources.
func NopCloser[T any](iter Iterator[T]) ClosableIterator[T] {
	return nopCloser[T]{iter}
}

// Collect returns a new slice containing all the items from an [Iterator].
func Collect[T any](iter Iterator[T]) ([]T, error) {
	var result []T
	for iter.HasNext() {
		value, err := iter.Next()
		if err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}
