package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// sampleLayout builds a three generation layout with a selection
func sampleLayout() *domain.Layout {
	grandparent := domain.NodeRecord{ID: domain.NewNodeID(), Kind: domain.NodeKindPerson, Anchor: geom.Pt(0, 0), Sex: domain.SexFemale, FirstName: "Ada", LastName: "Byron"}
	parent := domain.NodeRecord{ID: domain.NewNodeID(), Kind: domain.NodeKindPerson, Anchor: geom.Pt(0, 192), FirstName: "Anne"}
	child := domain.NodeRecord{ID: domain.NewNodeID(), Kind: domain.NodeKindPerson, Anchor: geom.Pt(-64, 384), Sex: domain.SexMale}

	l := domain.NewLayout()
	l.AddNode(grandparent)
	l.AddNode(parent)
	l.AddNode(child)
	l.AddEdge(domain.NewEdge(grandparent.ID, parent.ID))
	l.AddEdge(domain.NewEdge(parent.ID, child.ID))
	l.Selected = parent.ID
	l.View = domain.ViewRecord{Scale: 0.75, Translation: geom.Vec(12.5, -40)}
	return l
}

// ============================================================================
// Layout Tests
// ============================================================================

func TestSaveAndLoadLayout(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("round trip keeps order and payload", func(t *testing.T) {
		want := sampleLayout()
		assertNoError(t, repo.SaveLayout(ctx, "family", want))

		got, err := repo.LoadLayout(ctx, "family")
		assertNoError(t, err)

		want.Name = "family"
		assertEqual(t, want, got)
	})

	t.Run("save replaces previous version", func(t *testing.T) {
		l := sampleLayout()
		l.Nodes = l.Nodes[:1]
		l.Edges = l.Edges[:0]
		l.Selected = domain.NilNodeID
		assertNoError(t, repo.SaveLayout(ctx, "family", l))

		got, err := repo.LoadLayout(ctx, "family")
		assertNoError(t, err)
		assertEqual(t, 1, len(got.Nodes))
		assertEqual(t, 0, len(got.Edges))
		if !got.Selected.IsZero() {
			t.Errorf("expected no selection, got %s", got.Selected)
		}
	})

	t.Run("missing layout", func(t *testing.T) {
		_, err := repo.LoadLayout(ctx, "nope")
		if !errors.Is(err, repository.ErrLayoutNotFound) {
			t.Errorf("expected ErrLayoutNotFound, got %v", err)
		}
	})

	t.Run("invalid layout is rejected", func(t *testing.T) {
		l := domain.NewLayout()
		l.AddEdge(domain.NewEdge(domain.NewNodeID(), domain.NewNodeID()))
		if err := repo.SaveLayout(ctx, "broken", l); err == nil {
			t.Error("expected error for dangling edge")
		}
		if _, err := repo.LoadLayout(ctx, "broken"); err == nil {
			t.Error("expected rejected layout not to be stored")
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		if err := repo.SaveLayout(ctx, "", domain.NewLayout()); err == nil {
			t.Error("expected error for empty name")
		}
	})
}

func TestListAndDeleteLayouts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.SaveLayout(ctx, "a", sampleLayout()))
	assertNoError(t, repo.SaveLayout(ctx, "b", domain.NewLayout()))

	infos, err := repo.ListLayouts(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(infos))

	counts := map[string][2]int{}
	for _, info := range infos {
		counts[info.Name] = [2]int{info.Nodes, info.Edges}
		if info.UpdatedAt.IsZero() {
			t.Errorf("expected updated_at for %s", info.Name)
		}
	}
	assertEqual(t, [2]int{3, 2}, counts["a"])
	assertEqual(t, [2]int{0, 0}, counts["b"])

	assertNoError(t, repo.DeleteLayout(ctx, "a"))
	infos, err = repo.ListLayouts(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(infos))

	revs, err := repo.Revisions(ctx, "a")
	assertNoError(t, err)
	assertEqual(t, 0, len(revs))

	if err := repo.DeleteLayout(ctx, "a"); !errors.Is(err, repository.ErrLayoutNotFound) {
		t.Errorf("expected ErrLayoutNotFound, got %v", err)
	}
}

// ============================================================================
// Revision Tests
// ============================================================================

func TestRevisions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := sampleLayout()
	assertNoError(t, repo.SaveLayout(ctx, "family", first))

	second := sampleLayout()
	second.View.Scale = 2
	assertNoError(t, repo.SaveLayout(ctx, "family", second))

	revs, err := repo.Revisions(ctx, "family")
	assertNoError(t, err)
	assertEqual(t, 2, len(revs))
	if revs[0].ID <= revs[1].ID {
		t.Errorf("expected newest revision first, got %d then %d", revs[0].ID, revs[1].ID)
	}
	if revs[1].Size == 0 {
		t.Error("expected uncompressed size to be recorded")
	}

	oldest, err := repo.LoadRevision(ctx, revs[1].ID)
	assertNoError(t, err)
	assertEqual(t, first, oldest)

	newest, err := repo.LoadRevision(ctx, revs[0].ID)
	assertNoError(t, err)
	assertEqual(t, 2.0, newest.View.Scale)

	if _, err := repo.LoadRevision(ctx, 9999); !errors.Is(err, repository.ErrLayoutNotFound) {
		t.Errorf("expected ErrLayoutNotFound, got %v", err)
	}
}

func TestFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stemma.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	assertNoError(t, repo.SaveLayout(ctx, "family", sampleLayout()))
	assertNoError(t, repo.Close())

	reopened, err := New(path)
	assertNoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadLayout(ctx, "family")
	assertNoError(t, err)
	assertEqual(t, 3, len(got.Nodes))
}
