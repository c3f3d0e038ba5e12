package reports

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"crosstab/internal/domain/form"
)

// DefaultCacheSize bounds the number of forms, registries and catalogs kept
// by one run.
const DefaultCacheSize = 32

// CachingStore memoizes reads of one run so a form shared by several report
// tables is fetched once. It must not outlive the run: registries change
// between runs. Writes pass through.
type CachingStore struct {
	Store

	forms      *lru.Cache[int, *form.Form]
	registries *lru.Cache[int, *form.Registry]
	catalogs   *lru.Cache[int, *form.Catalog]
	contacts   *form.Contacts
}

// NewCachingStore wraps store. A non-positive size uses DefaultCacheSize.
func NewCachingStore(store Store, size int) (*CachingStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	forms, err := lru.New[int, *form.Form](size)
	if err != nil {
		return nil, err
	}
	registries, err := lru.New[int, *form.Registry](size)
	if err != nil {
		return nil, err
	}
	catalogs, err := lru.New[int, *form.Catalog](size)
	if err != nil {
		return nil, err
	}
	return &CachingStore{Store: store, forms: forms, registries: registries, catalogs: catalogs}, nil
}

func (c *CachingStore) Form(ctx context.Context, formID int) (*form.Form, error) {
	if f, ok := c.forms.Get(formID); ok {
		return f, nil
	}
	f, err := c.Store.Form(ctx, formID)
	if err != nil {
		return nil, err
	}
	c.forms.Add(formID, f)
	return f, nil
}

func (c *CachingStore) Registry(ctx context.Context, formID int) (*form.Registry, error) {
	if r, ok := c.registries.Get(formID); ok {
		return r, nil
	}
	r, err := c.Store.Registry(ctx, formID)
	if err != nil {
		return nil, err
	}
	c.registries.Add(formID, r)
	return r, nil
}

func (c *CachingStore) Catalog(ctx context.Context, catalogID int) (*form.Catalog, error) {
	if cat, ok := c.catalogs.Get(catalogID); ok {
		return cat, nil
	}
	cat, err := c.Store.Catalog(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	c.catalogs.Add(catalogID, cat)
	return cat, nil
}

func (c *CachingStore) Contacts(ctx context.Context) (*form.Contacts, error) {
	if c.contacts != nil {
		return c.contacts, nil
	}
	contacts, err := c.Store.Contacts(ctx)
	if err != nil {
		return nil, err
	}
	c.contacts = contacts
	return contacts, nil
}
