package modelstore

import (
	"context"

	"github.com/featprep/featprep/resource"
)

// Limited wraps a Store so that document transfers consume the controller's
// IO budget. A nil controller makes the wrapper transparent.
func Limited(inner Store, ctrl *resource.Controller) Store {
	return &limitedStore{inner: inner, ctrl: ctrl}
}

type limitedStore struct {
	inner Store
	ctrl  *resource.Controller
}

func (l *limitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := l.ctrl.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return l.inner.Put(ctx, name, data)
}

func (l *limitedStore) Get(ctx context.Context, name string) ([]byte, error) {
	// The document size is unknown until fetched: charge one token up front
	// so an exhausted budget blocks before the download, and the remainder
	// once the size is known.
	if err := l.ctrl.AcquireIO(ctx, 1); err != nil {
		return nil, err
	}
	data, err := l.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(data) > 1 {
		if err := l.ctrl.AcquireIO(ctx, len(data)-1); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (l *limitedStore) Delete(ctx context.Context, name string) error {
	return l.inner.Delete(ctx, name)
}

func (l *limitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return l.inner.List(ctx, prefix)
}
