package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ammar0144/crud4go/pkg/filter"
	"github.com/ammar0144/crud4go/pkg/paging"
	"github.com/ammar0144/crud4go/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFind_IDsNameAndUnknownSort(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)

	criteria := repo.NewCriteria()
	criteria.IDFilter().SetIn([]int64{1, 2, 3})
	criteria.Name = filter.Containing("oh")

	got, err := repo.Find(context.Background(), criteria, paging.By(paging.Descending("unknownField")), "tester")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(got))
	assert.Equal(t, "John", got[0].Name)
	assert.Equal(t, "johanna", got[1].Name)
}

func TestFind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		criteria func() *personCriteria
		sort     paging.Sort
		expected []int64
	}{
		{
			name:     "empty criteria matches all in id order",
			criteria: func() *personCriteria { return &personCriteria{} },
			expected: []int64{1, 2, 3, 4, 5},
		},
		{
			name: "closed age interval",
			criteria: func() *personCriteria {
				return &personCriteria{Age: filter.Between(25, 35)}
			},
			expected: []int64{1, 2, 4},
		},
		{
			name: "inverted interval matches nothing",
			criteria: func() *personCriteria {
				return &personCriteria{Age: filter.Between(35, 25)}
			},
			expected: []int64{},
		},
		{
			name: "empty id set matches nothing",
			criteria: func() *personCriteria {
				c := &personCriteria{}
				c.IDFilter().SetIn([]int64{})
				return c
			},
			expected: []int64{},
		},
		{
			name: "null email",
			criteria: func() *personCriteria {
				email := &filter.StringFilter{}
				email.SetSpecified(false)
				return &personCriteria{Email: email}
			},
			expected: []int64{2, 4},
		},
		{
			name: "sorted by age descending",
			criteria: func() *personCriteria { return &personCriteria{} },
			sort:     paging.By(paging.Descending("age")),
			expected: []int64{3, 4, 1, 2, 5},
		},
		{
			name: "equals combined with range bound",
			criteria: func() *personCriteria {
				age := filter.Between(0, 100)
				age.SetEquals(40)
				return &personCriteria{Age: age}
			},
			expected: []int64{3},
		},
	}

	repo, _ := newPeople(t)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Find(context.Background(), tc.criteria(), tc.sort, "tester")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(got))
		})
	}
}

func TestFindPage(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()
	request := paging.Of(1, 2, paging.Ascending("age"))

	first, err := repo.FindPage(ctx, repo.NewCriteria(), request, "tester")
	require.NoError(t, err)
	second, err := repo.FindPage(ctx, repo.NewCriteria(), request, "tester")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same request without writes must be identical")
	assert.Equal(t, int64(5), first.TotalCount)
	assert.Equal(t, []int64{1, 4}, ids(first.Content))
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.Size)
	assert.Equal(t, 3, first.TotalPages())
	assert.True(t, first.HasNext())
}

func TestFindPage_DefaultSize(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)

	page, err := repo.FindPage(context.Background(), repo.NewCriteria(), paging.Pageable{}, "tester")
	require.NoError(t, err)
	assert.Equal(t, paging.DefaultSize, page.Size)
	assert.Len(t, page.Content, 5)
}

func TestFindPage_Unpaged(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)

	page, err := repo.FindPage(context.Background(), repo.NewCriteria(), paging.Unpaged(paging.Descending("age")), "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(len(page.Content)), page.TotalCount)
	assert.Equal(t, []int64{3, 4, 1, 2, 5}, ids(page.Content))
}

func TestFindPage_NoMatch(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)

	criteria := &personCriteria{Name: &filter.StringFilter{Filter: *filter.Equals("nobody")}}
	page, err := repo.FindPage(context.Background(), criteria, paging.Of(0, 10), "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalCount)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
}

func TestGet(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	p, ok, err := repo.Get(ctx, 3, "tester")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, ptr("bob@example.com"), p.Email)

	_, ok, err = repo.Get(ctx, 99, "tester")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.Get(ctx, 0, "tester")
	assert.True(t, repository.IsPrecondition(err))

	many, err := repo.GetByIDs(ctx, []int64{5, 1, 42}, "tester")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 5}, ids(many))

	all, err := repo.GetAll(ctx, "tester")
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestFindOne(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	p, ok, err := repo.FindOne(ctx, &personCriteria{Name: filter.Containing("ALI")}, "tester")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(5), p.ID)

	_, _, err = repo.FindOne(ctx, &personCriteria{Age: new(filter.RangeFilter[int]).SetGreaterThan(30)}, "tester")
	assert.True(t, repository.IsNotUnique(err))
}

func TestNilCriteria(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	var criteria *personCriteria

	_, err := repo.Find(ctx, criteria, nil, "tester")
	assert.True(t, repository.IsPrecondition(err))
	_, err = repo.FindPage(ctx, criteria, paging.Of(0, 10), "tester")
	assert.True(t, repository.IsPrecondition(err))
	_, err = repo.Count(ctx, criteria, "tester")
	assert.True(t, repository.IsPrecondition(err))
	_, err = repo.DeleteWhere(ctx, criteria, "tester")
	assert.True(t, repository.IsPrecondition(err))
	_, err = repo.Assemble(ctx, criteria, nil, "tester")
	assert.True(t, repository.IsPrecondition(err))
}

func TestCountAndExistence(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	adults := &personCriteria{Age: new(filter.RangeFilter[int]).SetGreaterThanOrEqual(30)}
	n, err := repo.Count(ctx, adults, "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ok, err := repo.Exists(ctx, adults, "tester")
	require.NoError(t, err)
	assert.True(t, ok)

	nobody := &personCriteria{Age: new(filter.RangeFilter[int]).SetGreaterThan(100)}
	ok, err = repo.NotExists(ctx, nobody, "tester")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, nobody, "tester")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindIDs(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)

	got, err := repo.FindIDs(context.Background(), &personCriteria{Age: new(filter.RangeFilter[int]).SetLessThan(30)}, "tester")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, got)
}

func TestSave(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	t.Run("empty batch is returned unchanged", func(t *testing.T) {
		empty := []*person{}
		got, err := repo.SaveAll(ctx, empty, "tester")
		require.NoError(t, err)
		assert.Equal(t, empty, got)

		got, err = repo.SaveAll(ctx, nil, "tester")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("single model gets an identifier", func(t *testing.T) {
		got, err := repo.SaveAll(ctx, []*person{{Name: "Zoe", Age: 22}}, "tester")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.NotZero(t, got[0].ID)

		stored, ok, err := repo.Get(ctx, got[0].ID, "tester")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Zoe", stored.Name)
		assert.Nil(t, stored.Email)
	})

	t.Run("batch keeps input order", func(t *testing.T) {
		batch := []*person{{Name: "Max", Age: 50}, {Name: "Mia", Age: 51, Email: ptr("mia@example.com")}}
		got, err := repo.SaveAll(ctx, batch, "tester")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Less(t, got[0].ID, got[1].ID)

		n, err := repo.Count(ctx, &personCriteria{Age: new(filter.RangeFilter[int]).SetGreaterThanOrEqual(50)}, "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("save wrapper", func(t *testing.T) {
		p, err := repo.Save(ctx, &person{Name: "Ned", Age: 60}, "tester")
		require.NoError(t, err)
		assert.NotZero(t, p.ID)

		_, err = repo.Save(ctx, nil, "tester")
		assert.True(t, repository.IsPrecondition(err))
	})
}

func TestSave_IdentifierNotAssigned(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	desc := peopleDescriptor()
	desc.SetIdentifier = func(context.Context, *person, string) error { return nil }

	repo, err := repository.NewGenericRepository(store, nil, desc)
	require.NoError(t, err)

	_, err = repo.SaveAll(context.Background(), []*person{{Name: "Ghost"}}, "tester")
	assert.True(t, repository.IsInvariant(err))

	n, err := repo.Count(context.Background(), repo.NewCriteria(), "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n, "nothing may be inserted")
}

func TestSave_IdentifierFailure(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	desc := peopleDescriptor()
	sequenceDown := errors.New("sequence unavailable")
	desc.SetIdentifier = func(context.Context, *person, string) error { return sequenceDown }

	repo, err := repository.NewGenericRepository(store, nil, desc)
	require.NoError(t, err)

	_, err = repo.Save(context.Background(), &person{Name: "Ghost"}, "tester")
	assert.ErrorIs(t, err, sequenceDown)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	p, _, err := repo.Get(ctx, 1, "tester")
	require.NoError(t, err)

	p.Age = 31
	_, err = repo.Update(ctx, p, "tester")
	require.NoError(t, err)

	stored, _, err := repo.Get(ctx, 1, "tester")
	require.NoError(t, err)
	assert.Equal(t, 31, stored.Age)

	_, err = repo.Update(ctx, stored, "tester")
	assert.NoError(t, err, "an unchanged row still counts as updated")

	missing := &person{Name: "Nobody"}
	missing.SetID(99)
	_, err = repo.Update(ctx, missing, "tester")
	assert.True(t, repository.IsInvariant(err))

	_, err = repo.Update(ctx, &person{Name: "No id"}, "tester")
	assert.True(t, repository.IsPrecondition(err))
}

func TestPatch(t *testing.T) {
	t.Parallel()

	repo, _ := newPeople(t)
	ctx := context.Background()

	p, err := repo.Patch(ctx, 1, map[string]any{"name": "x"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "x", p.Name)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, ptr("john@example.com"), p.Email)

	p, err = repo.Patch(ctx, 1, map[string]any{"email": nil, "unknown": 1}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "x", p.Name)
	assert.Nil(t, p.Email)

	_, err = repo.Patch(ctx, 1, map[string]any{"unknown": 1}, "tester")
	assert.True(t, repository.IsPrecondition(err))

	_, err = repo.Patch(ctx, 99, map[string]any{"name": "x"}, "tester")
	assert.True(t, repository.IsInvariant(err))

	_, err = repo.Patch(ctx, 0, map[string]any{"name": "x"}, "tester")
	assert.True(t, repository.IsPrecondition(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("direct delete requires ids", func(t *testing.T) {
		repo, _ := newPeople(t)

		_, err := repo.DirectDelete(ctx, []int64{}, "tester")
		assert.True(t, repository.IsPrecondition(err))

		n, err := repo.DirectDelete(ctx, []int64{1, 2, 77}, "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("empty id list deletes nothing", func(t *testing.T) {
		repo, _ := newPeople(t)

		n, err := repo.DeleteByIDs(ctx, []int64{}, "tester")
		require.NoError(t, err)
		assert.Zero(t, n)

		total, err := repo.Count(ctx, repo.NewCriteria(), "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
	})

	t.Run("by criteria", func(t *testing.T) {
		repo, _ := newPeople(t)

		n, err := repo.DeleteWhere(ctx, &personCriteria{Age: new(filter.RangeFilter[int]).SetGreaterThanOrEqual(35)}, "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		remaining, err := repo.FindIDs(ctx, repo.NewCriteria(), "tester")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 5}, remaining)
	})

	t.Run("by id", func(t *testing.T) {
		repo, _ := newPeople(t)

		n, err := repo.Delete(ctx, 1, "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = repo.Delete(ctx, 1, "tester")
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = repo.Delete(ctx, 0, "tester")
		assert.True(t, repository.IsPrecondition(err))
	})
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	repo, store := newPeople(t)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := store.DB().Transaction(func(tx *gorm.DB) error {
		txRepo := repo.WithTx(tx)
		if _, err := txRepo.Delete(ctx, 1, "tester"); err != nil {
			return err
		}
		n, err := txRepo.Count(ctx, txRepo.NewCriteria(), "tester")
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	n, err := repo.Count(ctx, repo.NewCriteria(), "tester")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
