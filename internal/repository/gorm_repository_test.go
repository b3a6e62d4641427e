package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/styleswipe/internal/domain"
)

// sqlRecorder is a gorm logger that keeps every statement gorm builds
type sqlRecorder struct {
	mu   sync.Mutex
	sqls []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})     {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})    {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.sqls = append(r.sqls, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sqls) == 0 {
		t.Fatal("no statement was built")
	}
	return r.sqls[len(r.sqls)-1]
}

// dryRunDB builds statements against the postgres dialect without a server
func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=styleswipe dbname=styleswipe sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db, rec
}

func assertContains(t *testing.T, sql string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(sql, p) {
			t.Errorf("sql %q\nmissing %q", sql, p)
		}
	}
}

func TestSwipeUpsertSQL(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewGormSwipeRepository(db)

	if err := repo.Upsert(context.Background(), &domain.Swipe{UserID: 1, ProductID: 2, Liked: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	assertContains(t, rec.last(t),
		`INSERT INTO "swipes"`,
		`ON CONFLICT ("user_id","product_id") DO UPDATE SET`,
		`"liked"="excluded"."liked"`,
		`"updated_at"="excluded"."updated_at"`,
	)
}

func TestAddLikedSQL(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewGormSwipeRepository(db)

	if _, err := repo.AddLiked(context.Background(), 1, 2); err != nil {
		t.Fatalf("AddLiked() error = %v", err)
	}
	sql := rec.last(t)
	assertContains(t, sql,
		`INSERT INTO "liked_products"`,
		`ON CONFLICT ("user_id","product_id") DO NOTHING`,
	)
	if strings.Contains(sql, "DO UPDATE") {
		t.Errorf("a repeated like must not update the row: %q", sql)
	}
}

func TestProductUpsertSQL(t *testing.T) {
	db, rec := dryRunDB(t)
	repo := NewGormProductRepository(db)

	p := &domain.Product{ExternalID: "abc_u", Title: "Shirt", ProductLink: "https://example.com/p"}
	if err := repo.Upsert(context.Background(), p); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	sql := rec.last(t)
	assertContains(t, sql,
		`INSERT INTO "products"`,
		`ON CONFLICT ("product_id") DO UPDATE SET`,
		`"title"="excluded"."title"`,
		`"product_type"="excluded"."product_type"`,
		`RETURNING "id"`,
	)
	if strings.Contains(sql, `"created_at"="excluded"`) {
		t.Errorf("re-search must keep created_at: %q", sql)
	}
}

func TestUpsertImageAndPreferenceSQL(t *testing.T) {
	db, rec := dryRunDB(t)
	ctx := context.Background()

	if err := NewGormUserRepository(db).UpsertImage(ctx, &domain.UserImage{UserID: 1, Angle: domain.AngleFront, ImagePath: "u/front.jpg"}); err != nil {
		t.Fatalf("UpsertImage() error = %v", err)
	}
	assertContains(t, rec.last(t),
		`INSERT INTO "user_images"`,
		`ON CONFLICT ("user_id","angle") DO UPDATE SET "image_path"="excluded"."image_path"`,
	)

	if err := NewGormPreferenceRepository(db).Upsert(ctx, &domain.Preference{UserID: 1, Gender: "female"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	assertContains(t, rec.last(t),
		`INSERT INTO "preferences"`,
		`ON CONFLICT ("user_id") DO UPDATE SET`,
		`"styles"="excluded"."styles"`,
	)
}
