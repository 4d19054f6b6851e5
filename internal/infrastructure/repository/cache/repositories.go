package cache

import (
	"context"
	"maps"

	"github.com/riskibarqy/paintball-league/internal/domain/account"
	"github.com/riskibarqy/paintball-league/internal/domain/document"
	basecache "github.com/riskibarqy/paintball-league/internal/platform/cache"
)

type DocumentStore struct {
	next  document.Store
	cache *basecache.Store
}

func NewDocumentStore(next document.Store, cache *basecache.Store) *DocumentStore {
	return &DocumentStore{next: next, cache: cache}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (document.Document, bool, error) {
	key := "document:id:" + collection + ":" + id
	v, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := s.next.Get(ctx, collection, id)
		if err != nil {
			return nil, err
		}
		return cachedDocumentByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return document.Document{}, false, err
	}

	cached, _ := v.(cachedDocumentByID)
	return cloneDocument(cached.value), cached.exists, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, fields map[string]any, opts document.SetOptions) error {
	if err := s.next.Set(ctx, collection, id, fields, opts); err != nil {
		return err
	}
	s.cache.Delete(ctx, "document:id:"+collection+":"+id)
	s.cache.Delete(ctx, "document:list:"+collection)
	return nil
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]document.Document, error) {
	v, err := s.cache.GetOrLoad(ctx, "document:list:"+collection, func(ctx context.Context) (any, error) {
		items, err := s.next.List(ctx, collection)
		if err != nil {
			return nil, err
		}
		return append([]document.Document(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]document.Document)
	out := make([]document.Document, 0, len(items))
	for _, item := range items {
		out = append(out, cloneDocument(item))
	}
	return out, nil
}

type cachedDocumentByID struct {
	value  document.Document
	exists bool
}

func cloneDocument(doc document.Document) document.Document {
	if doc.Fields != nil {
		doc.Fields = maps.Clone(doc.Fields)
	}
	return doc
}

// AccountRepository caches lookups by id. Email and Google subject lookups
// back uniqueness checks and always reach the underlying repository.
type AccountRepository struct {
	next  account.Repository
	cache *basecache.Store
}

func NewAccountRepository(next account.Repository, cache *basecache.Store) *AccountRepository {
	return &AccountRepository{next: next, cache: cache}
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (account.Account, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "account:id:"+id, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedAccountByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return account.Account{}, false, err
	}

	cached, _ := v.(cachedAccountByID)
	return cached.value, cached.exists, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, bool, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *AccountRepository) GetByGoogleSubject(ctx context.Context, subject string) (account.Account, bool, error) {
	return r.next.GetByGoogleSubject(ctx, subject)
}

func (r *AccountRepository) Create(ctx context.Context, acc account.Account) error {
	if err := r.next.Create(ctx, acc); err != nil {
		return err
	}
	r.cache.Delete(ctx, "account:id:"+acc.ID)
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, acc account.Account) error {
	if err := r.next.Update(ctx, acc); err != nil {
		return err
	}
	r.cache.Delete(ctx, "account:id:"+acc.ID)
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.cache.Delete(ctx, "account:id:"+id)
	return nil
}

type cachedAccountByID struct {
	value  account.Account
	exists bool
}
