package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/dmitrijs2005/iamclient/internal/cryptox"
)

var ErrReservedKey = errors.New("metadata key is reserved")

// SealedRepository encrypts every value before handing it to the wrapped
// repository. The key is derived from a passphrase and a random salt that is
// kept, unencrypted, under common.MetadataKeyStateSalt in the same store.
type SealedRepository struct {
	inner Repository
	key   []byte
}

var _ Repository = (*SealedRepository)(nil)

// NewSealedRepository loads the salt from inner, creating one on first use,
// and derives the sealing key from passphrase.
func NewSealedRepository(ctx context.Context, inner Repository, passphrase []byte) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, common.MetadataKeyStateSalt)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		salt = cryptox.NewSalt()
		if err := inner.Set(ctx, common.MetadataKeyStateSalt, salt); err != nil {
			return nil, err
		}
	}

	return &SealedRepository{
		inner: inner,
		key:   cryptox.DeriveKey(passphrase, salt),
	}, nil
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == common.MetadataKeyStateSalt {
		return nil, ErrReservedKey
	}
	sealed, err := r.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	return r.open(key, sealed)
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	if key == common.MetadataKeyStateSalt {
		return ErrReservedKey
	}
	sealed, err := cryptox.Seal(r.key, value)
	if err != nil {
		return fmt.Errorf("failed to seal metadata[%s]: %w", key, err)
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	out := make(map[string][]byte, len(values))
	for k, v := range values {
		if k == common.MetadataKeyStateSalt {
			return ErrReservedKey
		}
		sealed, err := cryptox.Seal(r.key, v)
		if err != nil {
			return fmt.Errorf("failed to seal metadata[%s]: %w", k, err)
		}
		out[k] = sealed
	}
	return r.inner.SetMany(ctx, out)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	if key == common.MetadataKeyStateSalt {
		return ErrReservedKey
	}
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) DeleteMany(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if k == common.MetadataKeyStateSalt {
			return ErrReservedKey
		}
	}
	return r.inner.DeleteMany(ctx, keys...)
}

func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	delete(all, common.MetadataKeyStateSalt)

	result := make(map[string][]byte, len(all))
	for k, sealed := range all {
		v, err := r.open(k, sealed)
		if err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

// Clear removes every value but keeps the salt, so the passphrase still
// opens anything written afterwards.
func (r *SealedRepository) Clear(ctx context.Context) error {
	all, err := r.inner.List(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		if k != common.MetadataKeyStateSalt {
			keys = append(keys, k)
		}
	}
	return r.inner.DeleteMany(ctx, keys...)
}

func (r *SealedRepository) open(key string, sealed []byte) ([]byte, error) {
	v, err := cryptox.Open(r.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata[%s]: %w", key, err)
	}
	return v, nil
}
