package query

import (
	"context"
	"errors"
	"testing"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/repository/memory"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
)

func setup(t *testing.T) (*memory.Store, *swipe.Deck, []uint) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	layout := storage.NewLayout(t.TempDir())

	var (
		ids     []uint
		entries []storage.ManifestEntry
	)
	for _, ext := range []string{"x", "y"} {
		p := &domain.Product{ExternalID: ext, Title: ext, ProductLink: "l"}
		store.Products().Upsert(ctx, p)
		ids = append(ids, p.ID)
		entries = append(entries, storage.NewManifestEntry(p, ""))
	}
	if err := layout.WriteManifest("u", entries); err != nil {
		t.Fatal(err)
	}
	return store, swipe.NewDeck(layout, store.Products()), ids
}

func TestQueriesCreateUser(t *testing.T) {
	store, deck, _ := setup(t)
	cards, err := NewListCardsHandler(store.Users(), deck).Handle(context.Background(), ListCardsQuery{UserFolder: "u"})
	if err != nil || len(cards) != 2 {
		t.Fatalf("Handle() = %v, %v", cards, err)
	}
	if _, err := store.Users().FindByFolder(context.Background(), "u"); err != nil {
		t.Errorf("user should be created on first read: %v", err)
	}
}

func TestNextAndStatus(t *testing.T) {
	store, deck, ids := setup(t)
	ctx := context.Background()
	u, _ := store.Users().EnsureByFolder(ctx, "u")
	store.Swipes().Upsert(ctx, &domain.Swipe{UserID: u.ID, ProductID: ids[0], Liked: true})

	next, err := NewNextCardHandler(store.Users(), store.Swipes(), deck).Handle(ctx, NextCardQuery{UserFolder: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if next.Product == nil || next.Product.ID != ids[1] {
		t.Errorf("next = %+v, want product %d", next.Product, ids[1])
	}

	store.Swipes().Upsert(ctx, &domain.Swipe{UserID: u.ID, ProductID: ids[1]})
	status, err := NewGetStatusHandler(store.Users(), store.Swipes(), deck).Handle(ctx, GetStatusQuery{UserFolder: "u"})
	if err != nil {
		t.Fatal(err)
	}
	want := swipe.Status{TotalProducts: 2, Swiped: 2, LikedCount: 1, DislikedCount: 1, Completed: true, CurrentIndex: 2}
	if *status != want {
		t.Errorf("status = %+v, want %+v", *status, want)
	}

	next, _ = NewNextCardHandler(store.Users(), store.Swipes(), deck).Handle(ctx, NextCardQuery{UserFolder: "u"})
	if next.Product != nil {
		t.Errorf("next after completion = %+v, want nil", next.Product)
	}
}

func TestListLiked(t *testing.T) {
	store, deck, ids := setup(t)
	ctx := context.Background()
	u, _ := store.Users().EnsureByFolder(ctx, "u")
	store.Swipes().AddLiked(ctx, u.ID, ids[1])

	liked, err := NewListLikedHandler(store.Users(), store.Swipes(), deck).Handle(ctx, ListLikedQuery{UserFolder: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if len(liked) != 1 || liked[0].ID != ids[1] || liked[0].Title != "y" || liked[0].HasImages {
		t.Errorf("liked = %+v", liked)
	}
}

func TestInvalidFolder(t *testing.T) {
	store, deck, _ := setup(t)
	_, err := NewGetStatusHandler(store.Users(), store.Swipes(), deck).Handle(context.Background(), GetStatusQuery{UserFolder: "a b"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}
