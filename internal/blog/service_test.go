package blog

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeRepo struct {
	posts map[string]models.BlogPost
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{posts: map[string]models.BlogPost{}}
}

func (f *fakeRepo) Create(ctx context.Context, post *models.BlogPost) error {
	for _, p := range f.posts {
		if p.Slug == post.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	f.posts[post.ID] = *post
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, post *models.BlogPost) error {
	f.posts[post.ID] = *post
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (models.BlogPost, error) {
	p, ok := f.posts[id]
	if !ok {
		return models.BlogPost{}, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetPublishedBySlug(ctx context.Context, slug string) (models.BlogPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug && p.Published {
			return p, nil
		}
	}
	return models.BlogPost{}, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListPublished(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for _, p := range f.posts {
		if p.Published {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for _, p := range f.posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) IncrementViews(ctx context.Context, id string) error {
	p, ok := f.posts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Views++
	f.posts[id] = p
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.posts, id)
	return nil
}

func TestCreateSlugifiesTitle(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)

	post, err := svc.Create(context.Background(), CreateRequest{Title: "Wifi Problemen Oplossen", Body: "..."})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if post.Slug != "wifi-problemen-oplossen" {
		t.Errorf("slug = %q", post.Slug)
	}
	if post.Published {
		t.Error("new post is published")
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	req := CreateRequest{Title: "Backup strategie", Body: "..."}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("second Create() error = %v, want ErrDuplicateSlug", err)
	}
}

func TestPublishStampsOnce(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)

	post, err := svc.Create(context.Background(), CreateRequest{Title: "Phishing herkennen", Body: "..."})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	published, err := svc.SetPublished(context.Background(), post.ID, true)
	if err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("PublishedAt not stamped")
	}
	first := *published.PublishedAt

	if _, err := svc.SetPublished(context.Background(), post.ID, false); err != nil {
		t.Fatalf("unpublish error = %v", err)
	}
	again, err := svc.SetPublished(context.Background(), post.ID, true)
	if err != nil {
		t.Fatalf("republish error = %v", err)
	}
	if again.PublishedAt == nil || !again.PublishedAt.Equal(first) {
		t.Errorf("republish changed PublishedAt: %v then %v", first, again.PublishedAt)
	}
}

func TestGetBySlugCountsViews(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	post, err := svc.Create(context.Background(), CreateRequest{Title: "Windows 11 migratie", Body: "..."})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.GetBySlug(context.Background(), post.Slug); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBySlug() on draft error = %v, want ErrNotFound", err)
	}

	if _, err := svc.SetPublished(context.Background(), post.ID, true); err != nil {
		t.Fatalf("SetPublished() error = %v", err)
	}

	got, err := svc.GetBySlug(context.Background(), post.Slug)
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if got.Views != 1 {
		t.Errorf("views = %d, want 1", got.Views)
	}
	if repo.posts[post.ID].Views != 1 {
		t.Errorf("stored views = %d, want 1", repo.posts[post.ID].Views)
	}
}
