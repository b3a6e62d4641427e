// Package memory holds map-backed repositories with the same semantics as
// the gorm ones, including the unique (user, product) constraints.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tair/styleswipe/internal/domain"
)

type swipeKey struct {
	userID    uint
	productID uint
}

// Store is shared by all repositories returned from it
type Store struct {
	mu sync.RWMutex

	nextID uint

	users       map[uint]*domain.User
	images      map[uint]map[domain.Angle]*domain.UserImage
	preferences map[uint]*domain.Preference
	products    map[uint]*domain.Product
	swipes      map[swipeKey]*domain.Swipe
	liked       map[swipeKey]*domain.LikedProduct
	clicks      []*domain.ProductClick
}

func NewStore() *Store {
	return &Store{
		users:       make(map[uint]*domain.User),
		images:      make(map[uint]map[domain.Angle]*domain.UserImage),
		preferences: make(map[uint]*domain.Preference),
		products:    make(map[uint]*domain.Product),
		swipes:      make(map[swipeKey]*domain.Swipe),
		liked:       make(map[swipeKey]*domain.LikedProduct),
	}
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Preferences() *PreferenceRepository { return &PreferenceRepository{s} }
func (s *Store) Products() *ProductRepository       { return &ProductRepository{s} }
func (s *Store) Clicks() *ClickRepository           { return &ClickRepository{s} }
func (s *Store) Swipes() *SwipeRepository           { return &SwipeRepository{s} }

// SwipeCount returns the number of swipe rows of a user
func (s *Store) SwipeCount(userID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.swipes {
		if k.userID == userID {
			n++
		}
	}
	return n
}

// LikedCount returns the number of liked rows of a user
func (s *Store) LikedCount(userID uint) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.liked {
		if k.userID == userID {
			n++
		}
	}
	return n
}

// ClickRows returns a copy of the click log
func (s *Store) ClickRows() []domain.ProductClick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProductClick, 0, len(s.clicks))
	for _, c := range s.clicks {
		out = append(out, *c)
	}
	return out
}

type UserRepository struct{ s *Store }

func (r *UserRepository) EnsureByFolder(ctx context.Context, folder string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserFolder == folder {
			cp := *u
			return &cp, nil
		}
	}
	now := time.Now()
	u := &domain.User{ID: r.s.id(), UserFolder: folder, CreatedAt: now, UpdatedAt: now}
	r.s.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *UserRepository) FindByFolder(ctx context.Context, folder string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.UserFolder == folder {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewNotFound("user")
}

func (r *UserRepository) UpsertImage(ctx context.Context, image *domain.UserImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byAngle := r.s.images[image.UserID]
	if byAngle == nil {
		byAngle = make(map[domain.Angle]*domain.UserImage)
		r.s.images[image.UserID] = byAngle
	}
	if existing, ok := byAngle[image.Angle]; ok {
		existing.ImagePath = image.ImagePath
		image.ID = existing.ID
		return nil
	}
	image.ID = r.s.id()
	image.CreatedAt = time.Now()
	cp := *image
	byAngle[image.Angle] = &cp
	return nil
}

// Images returns the stored images of a user keyed by angle
func (r *UserRepository) Images(userID uint) map[domain.Angle]domain.UserImage {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[domain.Angle]domain.UserImage)
	for a, img := range r.s.images[userID] {
		out[a] = *img
	}
	return out
}

type PreferenceRepository struct{ s *Store }

func (r *PreferenceRepository) Upsert(ctx context.Context, pref *domain.Preference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	if existing, ok := r.s.preferences[pref.UserID]; ok {
		pref.ID = existing.ID
		pref.CreatedAt = existing.CreatedAt
	} else {
		pref.ID = r.s.id()
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	cp := *pref
	r.s.preferences[pref.UserID] = &cp
	return nil
}

func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Preference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.preferences[userID]
	if !ok {
		return nil, domain.NewNotFound("preference")
	}
	cp := *p
	return &cp, nil
}

type ProductRepository struct{ s *Store }

func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.products {
		if p.ExternalID == product.ExternalID {
			product.ID = id
			product.CreatedAt = p.CreatedAt
			cp := *product
			r.s.products[id] = &cp
			return nil
		}
	}
	product.ID = r.s.id()
	product.CreatedAt = time.Now()
	cp := *product
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.NewNotFound("product")
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Delete removes a product row, used to exercise manifest fallbacks
func (r *ProductRepository) Delete(id uint) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
}

type ClickRepository struct{ s *Store }

func (r *ClickRepository) Create(ctx context.Context, click *domain.ProductClick) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	click.ID = r.s.id()
	click.ClickedAt = time.Now()
	cp := *click
	r.s.clicks = append(r.s.clicks, &cp)
	return nil
}

type SwipeRepository struct{ s *Store }

func (r *SwipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := swipeKey{swipe.UserID, swipe.ProductID}
	now := time.Now()
	if existing, ok := r.s.swipes[k]; ok {
		existing.Liked = swipe.Liked
		existing.UpdatedAt = now
		swipe.ID = existing.ID
		return nil
	}
	swipe.ID = r.s.id()
	swipe.CreatedAt = now
	swipe.UpdatedAt = now
	cp := *swipe
	r.s.swipes[k] = &cp
	return nil
}

func (r *SwipeRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Swipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Swipe
	for k, sw := range r.s.swipes {
		if k.userID == userID {
			out = append(out, *sw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SwipeRepository) AddLiked(ctx context.Context, userID, productID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := swipeKey{userID, productID}
	if _, ok := r.s.liked[k]; ok {
		return false, nil
	}
	r.s.liked[k] = &domain.LikedProduct{ID: r.s.id(), UserID: userID, ProductID: productID, LikedAt: time.Now()}
	return true, nil
}

func (r *SwipeRepository) ListLiked(ctx context.Context, userID uint) ([]domain.LikedProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.LikedProduct
	for k, lp := range r.s.liked {
		if k.userID != userID {
			continue
		}
		cp := *lp
		if p, ok := r.s.products[lp.ProductID]; ok {
			pc := *p
			cp.Product = &pc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SwipeRepository) ResetUser(ctx context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.swipes {
		if k.userID == userID {
			delete(r.s.swipes, k)
		}
	}
	for k := range r.s.liked {
		if k.userID == userID {
			delete(r.s.liked, k)
		}
	}
	return nil
}

var (
	_ domain.UserRepository       = (*UserRepository)(nil)
	_ domain.PreferenceRepository = (*PreferenceRepository)(nil)
	_ domain.ProductRepository    = (*ProductRepository)(nil)
	_ domain.ClickRepository      = (*ClickRepository)(nil)
	_ domain.SwipeRepository      = (*SwipeRepository)(nil)
)
