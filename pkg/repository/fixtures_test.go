package repository_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ammar0144/crud4go/pkg/db"
	"github.com/ammar0144/crud4go/pkg/filter"
	"github.com/ammar0144/crud4go/pkg/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
)

type person struct {
	repository.Base[int64]
	Name  string
	Email *string
	Age   int
}

type personCriteria struct {
	repository.BaseCriteria[int64]
	Name  *filter.StringFilter
	Email *filter.StringFilter
	Age   *filter.RangeFilter[int]
	Team  *filter.Filter[string]
}

type peopleRepository = repository.GenericRepository[*person, *personCriteria, int64, string]

func ptr[T any](v T) *T {
	return &v
}

var schema = []string{
	`CREATE TABLE people (
		id         INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT,
		age        INTEGER NOT NULL DEFAULT 0,
		created_by TEXT
	)`,
	`CREATE TABLE memberships (
		id        INTEGER PRIMARY KEY,
		person_id INTEGER NOT NULL,
		team      TEXT NOT NULL
	)`,
	`INSERT INTO people (id, name, email, age) VALUES
		(1, 'John', 'john@example.com', 30),
		(2, 'johanna', NULL, 25),
		(3, 'Bob', 'bob@example.com', 40),
		(4, 'OHara', NULL, 35),
		(5, 'Alice', 'alice@example.com', 20)`,
	`INSERT INTO memberships (person_id, team) VALUES (1, 'red'), (3, 'red'), (5, 'blue')`,
}

// newStore opens an isolated in-memory database seeded with five people
func newStore(t *testing.T) *db.Manager {
	t.Helper()

	cfg := db.DefaultConfig()
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.QueryTimeout = 5 * time.Second
	cfg.PrepareStmt = false
	cfg.Logging.Level = "silent"

	manager, err := db.NewManagerWithDialector(sqlite.Open(":memory:"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = manager.Close()
	})

	for _, stmt := range schema {
		require.NoError(t, manager.DB().Exec(stmt).Error)
	}
	return manager
}

func peopleDescriptor() repository.Descriptor[*person, *personCriteria, int64, string] {
	var next atomic.Int64
	next.Store(100)

	return repository.Descriptor[*person, *personCriteria, int64, string]{
		Table: "people",
		Columns: []repository.Column{
			{Field: "name", Name: "name"},
			{Field: "email", Name: "email"},
			{Field: "age", Name: "age"},
		},
		Fields: []repository.Field[*personCriteria]{
			{Name: "name", Column: "name", Sortable: true, Filter: func(c *personCriteria) filter.Constraint { return c.Name }},
			{Name: "email", Column: "email", Filter: func(c *personCriteria) filter.Constraint { return c.Email }},
			{Name: "age", Column: "age", Sortable: true, Filter: func(c *personCriteria) filter.Constraint { return c.Age }},
		},
		NewModel:    func() *person { return &person{} },
		NewCriteria: func() *personCriteria { return &personCriteria{} },
		ToClause: func(c repository.Clause, p *person, _ string) {
			c.Set("name", p.Name).Set("email", p.Email).Set("age", p.Age)
		},
		SetIdentifier: func(_ context.Context, p *person, _ string) error {
			if p.ID == 0 {
				p.SetID(next.Add(1))
			}
			return nil
		},
	}
}

type membership struct {
	repository.Base[int64]
	PersonID int64
	Team     string
}

type membershipCriteria struct {
	repository.BaseCriteria[int64]
	Team *filter.Filter[string]
}

func membershipsDescriptor() repository.Descriptor[*membership, *membershipCriteria, int64, string] {
	var next atomic.Int64
	next.Store(100)

	return repository.Descriptor[*membership, *membershipCriteria, int64, string]{
		Table: "memberships",
		Columns: []repository.Column{
			{Field: "personId", Name: "person_id"},
			{Field: "team", Name: "team"},
		},
		Fields: []repository.Field[*membershipCriteria]{
			{Name: "team", Column: "team", Filter: func(c *membershipCriteria) filter.Constraint { return c.Team }},
		},
		NewModel:    func() *membership { return &membership{} },
		NewCriteria: func() *membershipCriteria { return &membershipCriteria{} },
		ToClause: func(c repository.Clause, m *membership, _ string) {
			c.Set("person_id", m.PersonID).Set("team", m.Team)
		},
		SetIdentifier: func(_ context.Context, m *membership, _ string) error {
			m.SetID(next.Add(1))
			return nil
		},
	}
}

func newPeople(t *testing.T, opts ...repository.Option) (*peopleRepository, *db.Manager) {
	t.Helper()

	store := newStore(t)
	repo, err := repository.NewGenericRepository(store, nil, peopleDescriptor(), opts...)
	require.NoError(t, err)
	return repo, store
}

func ids(people []*person) []int64 {
	out := make([]int64, 0, len(people))
	for _, p := range people {
		out = append(out, p.ID)
	}
	return out
}
