package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeRepo struct {
	reviews map[string]models.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reviews: map[string]models.Review{}}
}

func (f *fakeRepo) Create(ctx context.Context, review *models.Review) error {
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, review *models.Review) error {
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (models.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return models.Review{}, gorm.ErrRecordNotFound
	}
	return review, nil
}

func (f *fakeRepo) ListApproved(ctx context.Context, limit, offset int) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range f.reviews {
		if rv.Approved {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range f.reviews {
		out = append(out, rv)
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.reviews, id)
	return nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:    "Jan Peeters",
		Service: "Computer reparatie",
		Rating:  5,
		Comment: "Snel en vakkundig geholpen.",
	}
}

func TestCreateStartsUnapproved(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)
	userID := "user-1"

	review, err := svc.Create(context.Background(), validRequest(), &userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if review.Approved {
		t.Error("new review is approved")
	}

	public, err := svc.ListPublic(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(public) != 0 {
		t.Errorf("unapproved review visible publicly: %d", len(public))
	}
}

func TestApproveMakesPublic(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	review, err := svc.Create(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Approve(context.Background(), review.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	public, err := svc.ListPublic(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("ListPublic() error = %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("approved review not public: %d", len(public))
	}
}

func TestUpdateResetsApproval(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)
	userID := "user-1"

	review, err := svc.Create(context.Background(), validRequest(), &userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Approve(context.Background(), review.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), review.ID, userID, UpdateRequest{Rating: 3, Comment: "Toch iets trager dan verwacht."})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Approved {
		t.Error("edited review kept its approval")
	}
	if updated.Rating != 3 {
		t.Errorf("rating = %d, want 3", updated.Rating)
	}
}

func TestUpdateOwnershipRequired(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)
	userID := "user-1"

	review, err := svc.Create(context.Background(), validRequest(), &userID)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(context.Background(), review.ID, "someone-else", UpdateRequest{Rating: 1, Comment: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Update() by stranger error = %v, want ErrForbidden", err)
	}

	anon, err := svc.Create(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Update(context.Background(), anon.ID, userID, UpdateRequest{Rating: 1, Comment: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Update() of anonymous review error = %v, want ErrForbidden", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}
