package app

import (
	"context"
	"errors"
	"fmt"
)

// fakeKV represents an in-memory key-value store used by tests.
type fakeKV struct {
	values  map[string][]byte
	saves   map[string]int
	saveErr error
	loadErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values: map[string][]byte{},
		saves:  map[string]int{},
	}
}

func (f *fakeKV) Load(_ context.Context, key string) ([]byte, bool, error) {
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeKV) Save(_ context.Context, key string, value []byte) error {
	f.saves[key]++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.values[key] = append([]byte(nil), value...)
	return nil
}

// sequentialIDs returns an IDGenerator yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var errDiskFull = errors.New("disk full")
