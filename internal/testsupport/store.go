package testsupport

import (
	"context"
	"testing"

	"backoffice/internal/config"
	"backoffice/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedUser creates an enabled user with the given roles.
func SeedUser(t testing.TB, st *store.Store, username string, roles ...string) *store.User {
	t.Helper()

	ctx := context.Background()
	id, err := st.UpsertUser(ctx, store.User{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.test",
		Roles:       roles,
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("store.UpsertUser: %v", err)
	}
	user, err := st.UserByID(ctx, id)
	if err != nil || user == nil {
		t.Fatalf("store.UserByID: %v", err)
	}
	return user
}

// SeedContent inserts a content record and returns its id.
func SeedContent(t testing.TB, st *store.Store, c store.Content) int64 {
	t.Helper()

	id, err := st.InsertContent(context.Background(), c)
	if err != nil {
		t.Fatalf("store.InsertContent: %v", err)
	}
	return id
}

// SeedTags links contentID to each slug under taxonomyType.
func SeedTags(t testing.TB, st *store.Store, contentID int64, taxonomyType string, slugs ...string) {
	t.Helper()

	for i, slug := range slugs {
		if _, err := st.AddTaxonomy(context.Background(), store.Taxonomy{
			ContentID:    contentID,
			ContentType:  "entries",
			TaxonomyType: taxonomyType,
			Slug:         slug,
			SortOrder:    i,
		}); err != nil {
			t.Fatalf("store.AddTaxonomy: %v", err)
		}
	}
}
