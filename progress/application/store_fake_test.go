package application

import (
	"context"

	"progress-sync/progress/domain"
)

type failingStore struct {
	err    error
	getErr error
}

func (s failingStore) Get(context.Context, string) (domain.Entry, error) {
	if s.getErr != nil {
		return domain.Entry{}, s.getErr
	}
	return domain.Entry{}, s.err
}

func (s failingStore) Set(context.Context, string, []byte, domain.SetOptions) error {
	return s.err
}
