package objectstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/brewdb/internal/database"
	"github.com/roach88/brewdb/internal/invariant"
	"github.com/roach88/brewdb/internal/schema"
	"github.com/roach88/brewdb/internal/testutil"
)

var testForms = schema.MustEnumMapping("HopForm",
	schema.EnumPair{Value: 0, Name: "pellet"},
	schema.EnumPair{Value: 1, Name: "plug"},
	schema.EnumPair{Value: 2, Name: "leaf"},
)

type testHop struct {
	id      int
	Name    string
	Alpha   float64
	Form    int
	Harvest time.Time
	Stock   int
	Deleted bool
}

func (h *testHop) Key() int      { return h.id }
func (h *testHop) SetKey(id int) { h.id = id }

type testRecipe struct {
	id          int
	Name        string
	MainHopID   int
	HopIDs      []int
	FavouriteID int
}

func (r *testRecipe) Key() int      { return r.id }
func (r *testRecipe) SetKey(id int) { r.id = id }

var testHopTable = &schema.Table{
	Name: "hop",
	Fields: []schema.Field{
		{Property: "id", Column: "id", Type: schema.Int},
		{Property: "name", Column: "name", Type: schema.String},
		{Property: "alpha", Column: "alpha", Type: schema.Double},
		{Property: "form", Column: "form", Type: schema.Enum, Enum: testForms},
		{Property: "harvest", Column: "harvest", Type: schema.Date},
		{Property: "stock", Column: "stock", Type: schema.UInt},
		{Property: "deleted", Column: "deleted", Type: schema.Bool},
	},
}

var testRecipeTable = &schema.Table{
	Name: "recipe",
	Fields: []schema.Field{
		{Property: "id", Column: "id", Type: schema.Int},
		{Property: "name", Column: "name", Type: schema.String},
		{Property: "mainHopId", Column: "hop_id", Type: schema.Int, ForeignKey: &schema.ForeignKey{Table: "hop", Column: "id"}},
	},
	Junctions: []schema.Junction{
		{
			Table:          "hop_in_recipe",
			ThisKeyColumn:  "recipe_id",
			OtherKeyColumn: "hop_id",
			OrderColumn:    "hop_number",
			OtherTable:     "hop",
			Property:       "hopIds",
			Cardinality:    schema.Many,
		},
		{
			Table:          "favourite_hop",
			ThisKeyColumn:  "recipe_id",
			OtherKeyColumn: "hop_id",
			OtherTable:     "hop",
			Property:       "favouriteId",
			Cardinality:    schema.AtMostOne,
		},
	},
}

func testHopMapping() Mapping[*testHop] {
	return Mapping[*testHop]{
		Table: testHopTable,
		New: func(b Bundle) *testHop {
			return &testHop{
				id:      b.Int("id"),
				Name:    b.String("name"),
				Alpha:   b.Float("alpha"),
				Form:    b.Int("form"),
				Harvest: b.Time("harvest"),
				Stock:   b.Int("stock"),
				Deleted: b.Bool("deleted"),
			}
		},
		Fields: map[string]func(*testHop) any{
			"name":    func(h *testHop) any { return h.Name },
			"alpha":   func(h *testHop) any { return h.Alpha },
			"form":    func(h *testHop) any { return h.Form },
			"harvest": func(h *testHop) any { return h.Harvest },
			"stock":   func(h *testHop) any { return h.Stock },
			"deleted": func(h *testHop) any { return h.Deleted },
		},
	}
}

func testRecipeMapping() Mapping[*testRecipe] {
	return Mapping[*testRecipe]{
		Table: testRecipeTable,
		New: func(b Bundle) *testRecipe {
			return &testRecipe{id: b.Int("id"), Name: b.String("name"), MainHopID: b.Int("mainHopId")}
		},
		Fields: map[string]func(*testRecipe) any{
			"name":      func(r *testRecipe) any { return r.Name },
			"mainHopId": func(r *testRecipe) any { return r.MainHopID },
		},
		Links: map[string]Link[*testRecipe]{
			"hopIds": {
				Get: func(r *testRecipe) []int { return r.HopIDs },
				Set: func(r *testRecipe, ids []int) { r.HopIDs = ids },
			},
			"favouriteId": {
				Get: func(r *testRecipe) []int {
					if r.FavouriteID > 0 {
						return []int{r.FavouriteID}
					}
					return nil
				},
				Set: func(r *testRecipe, ids []int) {
					if len(ids) > 0 {
						r.FavouriteID = ids[0]
					}
				},
			},
		},
	}
}

type testStores struct {
	db      *sql.DB
	dialect database.Dialect
	hops    *Store[*testHop]
	recipes *Store[*testRecipe]
}

// setupStores creates both test tables in a fresh SQLite database.
func setupStores(t *testing.T) *testStores {
	t.Helper()
	db, d := testutil.OpenSQLite(t)
	return openStores(t, db, d, true)
}

func openStores(t *testing.T, db *sql.DB, d database.Dialect, create bool) *testStores {
	t.Helper()
	ctx := context.Background()

	hops, err := New(db, d, testHopMapping())
	require.NoError(t, err)
	recipes, err := New(db, d, testRecipeMapping())
	require.NoError(t, err)

	if create {
		require.NoError(t, hops.CreateTables(ctx, db))
		require.NoError(t, recipes.CreateTables(ctx, db))
		require.NoError(t, hops.AddTableConstraints(ctx, db))
		require.NoError(t, recipes.AddTableConstraints(ctx, db))
	}
	return &testStores{db: db, dialect: d, hops: hops, recipes: recipes}
}

func (s *testStores) insertHops(t *testing.T, names ...string) []*testHop {
	t.Helper()
	var out []*testHop
	for _, n := range names {
		h, err := s.hops.Insert(context.Background(), &testHop{Name: n, Alpha: 5})
		require.NoError(t, err)
		out = append(out, h)
	}
	return out
}

func TestNew_RejectsIncompleteMapping(t *testing.T) {
	m := testHopMapping()
	delete(m.Fields, "alpha")
	_, err := New[*testHop](nil, database.SQLite{}, m)
	assert.Error(t, err)

	r := testRecipeMapping()
	delete(r.Links, "hopIds")
	_, err = New[*testRecipe](nil, database.SQLite{}, r)
	assert.Error(t, err)
}

func TestInsert_RoundTrip(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	harvest := time.Date(2023, 9, 14, 0, 0, 0, 0, time.UTC)
	h := &testHop{Name: "Cascade", Alpha: 7.5, Form: 2, Harvest: harvest, Stock: 3}

	got, err := s.hops.Insert(ctx, h)
	require.NoError(t, err)
	assert.Same(t, h, got)
	assert.Positive(t, h.Key())

	reloaded := openStores(t, s.db, s.dialect, false)
	require.NoError(t, reloaded.hops.LoadAll(ctx))

	loaded, ok := reloaded.hops.GetByID(h.Key())
	require.True(t, ok)
	assert.Equal(t, "Cascade", loaded.Name)
	assert.InDelta(t, 7.5, loaded.Alpha, 1e-9)
	assert.Equal(t, 2, loaded.Form)
	assert.Equal(t, "2023-09-14", loaded.Harvest.Format("2006-01-02"))
	assert.Equal(t, 3, loaded.Stock)
	assert.False(t, loaded.Deleted)
}

func TestInsert_StoresEnumAsString(t *testing.T) {
	s := setupStores(t)
	h := s.insertHops(t, "Saaz")[0]
	h.Form = 1
	require.NoError(t, s.hops.UpdateProperty(context.Background(), h, "form"))

	var form string
	require.NoError(t, s.db.QueryRow("SELECT form FROM hop WHERE id = ?", h.Key()).Scan(&form))
	assert.Equal(t, "plug", form)
}

func TestInsert_CacheIdentity(t *testing.T) {
	s := setupStores(t)
	h := s.insertHops(t, "Magnum")[0]

	got, ok := s.hops.GetByID(h.Key())
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.True(t, s.hops.Contains(h.Key()))
	assert.Equal(t, 1, s.hops.Len())
}

func TestInsert_RejectsObjectWithKey(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	h := s.insertHops(t, "Magnum")[0]
	key := h.Key()

	if invariant.Debug() {
		assert.Panics(t, func() { _, _ = s.hops.Insert(ctx, h) })
		return
	}
	_, err := s.hops.Insert(ctx, h)
	require.ErrorIs(t, err, ErrAlreadyPersisted)
	assert.Equal(t, key, h.Key())

	got, ok := s.hops.GetByID(key)
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.Equal(t, 1, s.hops.Len())

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM hop").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestInsert_UnresolvedForeignKeyIsNull(t *testing.T) {
	s := setupStores(t)
	r, err := s.recipes.Insert(context.Background(), &testRecipe{Name: "SMaSH"})
	require.NoError(t, err)

	var hopID sql.NullInt64
	require.NoError(t, s.db.QueryRow("SELECT hop_id FROM recipe WHERE id = ?", r.Key()).Scan(&hopID))
	assert.False(t, hopID.Valid)
}

func TestInsert_JunctionOrder(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	hops := s.insertHops(t, "HopA", "HopB", "HopC")
	a, b, c := hops[0].Key(), hops[1].Key(), hops[2].Key()

	r := &testRecipe{Name: "Pale", MainHopID: a, HopIDs: []int{a, b, c}, FavouriteID: b}
	_, err := s.recipes.Insert(ctx, r)
	require.NoError(t, err)

	r.HopIDs = []int{c, a}
	require.NoError(t, s.recipes.UpdateProperty(ctx, r, "hopIds"))

	reloaded := openStores(t, s.db, s.dialect, false)
	require.NoError(t, reloaded.recipes.LoadAll(ctx))
	got, ok := reloaded.recipes.GetByID(r.Key())
	require.True(t, ok)
	assert.Equal(t, []int{c, a}, got.HopIDs)
	assert.Equal(t, b, got.FavouriteID)
	assert.Equal(t, a, got.MainHopID)

	var numbers []int
	rows, err := s.db.Query("SELECT hop_number FROM hop_in_recipe WHERE recipe_id = ? ORDER BY hop_number", r.Key())
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var n int
		require.NoError(t, rows.Scan(&n))
		numbers = append(numbers, n)
	}
	assert.Equal(t, []int{1, 2}, numbers)
}

func TestInsert_SkipsUnsetJunctionValues(t *testing.T) {
	s := setupStores(t)
	hop := s.insertHops(t, "Fuggle")[0]

	r := &testRecipe{Name: "Bitter", HopIDs: []int{0, hop.Key(), -1}}
	_, err := s.recipes.Insert(context.Background(), r)
	require.NoError(t, err)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM hop_in_recipe").Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM favourite_hop").Scan(&n))
	assert.Equal(t, 0, n)
}

func TestUpdate(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	hops := s.insertHops(t, "A", "B", "C", "D")

	r := &testRecipe{Name: "IPA", HopIDs: []int{hops[0].Key(), hops[1].Key(), hops[2].Key()}}
	_, err := s.recipes.Insert(ctx, r)
	require.NoError(t, err)

	r.Name = "Double IPA"
	r.HopIDs = []int{hops[1].Key(), hops[3].Key()}
	require.NoError(t, s.recipes.Update(ctx, r))
	// Writing an unchanged object again is a no-op.
	require.NoError(t, s.recipes.Update(ctx, r))

	reloaded := openStores(t, s.db, s.dialect, false)
	require.NoError(t, reloaded.recipes.LoadAll(ctx))
	got, _ := reloaded.recipes.GetByID(r.Key())
	assert.Equal(t, "Double IPA", got.Name)
	assert.Equal(t, []int{hops[1].Key(), hops[3].Key()}, got.HopIDs)
}

func TestUpdate_Errors(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	err := s.hops.Update(ctx, &testHop{Name: "new"})
	assert.ErrorIs(t, err, ErrNotPersisted)

	err = s.hops.Update(ctx, &testHop{id: 42, Name: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProperty_UnknownProperty(t *testing.T) {
	s := setupStores(t)
	h := s.insertHops(t, "Hallertau")[0]

	if invariant.Debug() {
		assert.Panics(t, func() { _ = s.hops.UpdateProperty(context.Background(), h, "bogus") })
		return
	}
	err := s.hops.UpdateProperty(context.Background(), h, "bogus")
	assert.ErrorIs(t, err, ErrUnknownProperty)

	err = s.hops.UpdateProperty(context.Background(), h, "id")
	assert.ErrorIs(t, err, ErrUnknownProperty)
}

func TestUpdateProperty_OnlyWritesOneColumn(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	h := s.insertHops(t, "Tettnang")[0]

	h.Alpha = 4.5
	h.Name = "not saved"
	require.NoError(t, s.hops.UpdateProperty(ctx, h, "alpha"))

	var name string
	var alpha float64
	require.NoError(t, s.db.QueryRow("SELECT name, alpha FROM hop WHERE id = ?", h.Key()).Scan(&name, &alpha))
	assert.Equal(t, "Tettnang", name)
	assert.InDelta(t, 4.5, alpha, 1e-9)
}

func TestInsertOrUpdate(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	h, err := s.hops.InsertOrUpdate(ctx, &testHop{Name: "Simcoe"})
	require.NoError(t, err)
	id := h.Key()
	require.Positive(t, id)

	h.Alpha = 13
	_, err = s.hops.InsertOrUpdate(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, id, h.Key())
	assert.Equal(t, 1, s.hops.Len())
}

func TestQueries(t *testing.T) {
	s := setupStores(t)
	hops := s.insertHops(t, "Citra", "Mosaic", "Centennial")

	all := s.hops.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, "Citra", all[0].Name)

	got := s.hops.GetByIDs([]int{hops[2].Key(), 999, hops[0].Key()})
	require.Len(t, got, 2)
	assert.Equal(t, "Centennial", got[0].Name)
	assert.Equal(t, "Citra", got[1].Name)

	first, ok := s.hops.FindFirstMatching(func(h *testHop) bool { return h.Name[0] == 'C' })
	require.True(t, ok)
	assert.Equal(t, "Citra", first.Name)

	cs := s.hops.FindAllMatching(func(h *testHop) bool { return h.Name[0] == 'C' })
	assert.Len(t, cs, 2)

	none := s.hops.FindAllMatching(func(*testHop) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, ok = s.hops.GetByID(999)
	assert.False(t, ok)

	raw := s.hops.GetAllRaw()
	delete(raw, hops[0].Key())
	assert.Equal(t, 3, s.hops.Len())
}

func TestSoftDelete(t *testing.T) {
	s := setupStores(t)
	h := s.insertHops(t, "Nugget")[0]

	var events []Event[*testHop]
	unsubscribe := s.hops.Subscribe(func(ev Event[*testHop]) { events = append(events, ev) })
	defer unsubscribe()

	s.hops.SoftDelete(h.Key())
	assert.False(t, s.hops.Contains(h.Key()))
	require.Len(t, events, 1)
	assert.Equal(t, EventDeleted, events[0].Kind)
	assert.Same(t, h, events[0].Object)

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM hop").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestHardDelete(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	hop := s.insertHops(t, "Willamette")[0]

	r := &testRecipe{Name: "Porter", HopIDs: []int{hop.Key()}, FavouriteID: hop.Key()}
	_, err := s.recipes.Insert(ctx, r)
	require.NoError(t, err)

	require.NoError(t, s.recipes.HardDelete(ctx, r.Key()))
	assert.False(t, s.recipes.Contains(r.Key()))

	for _, table := range []string{"recipe", "hop_in_recipe", "favourite_hop"} {
		var n int
		require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestEvents(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	var kinds []EventKind
	var properties []string
	unsubscribe := s.hops.Subscribe(func(ev Event[*testHop]) {
		kinds = append(kinds, ev.Kind)
		properties = append(properties, ev.Property)
	})

	h := s.insertHops(t, "Chinook")[0]
	h.Stock = 2
	require.NoError(t, s.hops.UpdateProperty(ctx, h, "stock"))

	unsubscribe()
	require.NoError(t, s.hops.HardDelete(ctx, h.Key()))

	assert.Equal(t, []EventKind{EventInserted, EventPropertyChanged}, kinds)
	assert.Equal(t, []string{"", "stock"}, properties)
}

func TestLoadAll_SkipsOrphanJunctionRows(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	hop := s.insertHops(t, "Northern Brewer")[0]

	r := &testRecipe{Name: "Steam", HopIDs: []int{hop.Key()}}
	_, err := s.recipes.Insert(ctx, r)
	require.NoError(t, err)

	_, err = s.db.Exec("PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	_, err = s.db.Exec("INSERT INTO hop_in_recipe (recipe_id, hop_id, hop_number) VALUES (999, ?, 1)", hop.Key())
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	reloaded := openStores(t, s.db, s.dialect, false)
	require.NoError(t, reloaded.recipes.LoadAll(ctx))
	assert.Equal(t, 1, reloaded.recipes.Len())
	got, _ := reloaded.recipes.GetByID(r.Key())
	assert.Equal(t, []int{hop.Key()}, got.HopIDs)
}

func TestLoadAll_SingleValuedJunctionKeepsFirstRow(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	hops := s.insertHops(t, "Amarillo", "Bramling Cross")

	r := &testRecipe{Name: "Amber", FavouriteID: hops[0].Key()}
	_, err := s.recipes.Insert(ctx, r)
	require.NoError(t, err)
	_, err = s.db.Exec("INSERT INTO favourite_hop (recipe_id, hop_id) VALUES (?, ?)", r.Key(), hops[1].Key())
	require.NoError(t, err)

	reloaded := openStores(t, s.db, s.dialect, false)
	if invariant.Debug() {
		assert.Panics(t, func() { _ = reloaded.recipes.LoadAll(ctx) })
		return
	}
	require.NoError(t, reloaded.recipes.LoadAll(ctx))
	got, ok := reloaded.recipes.GetByID(r.Key())
	require.True(t, ok)
	assert.Equal(t, hops[0].Key(), got.FavouriteID)
}

func TestLoadAll_SkipsUnreadableRows(t *testing.T) {
	if invariant.Debug() {
		t.Skip("unreadable rows panic in debug builds")
	}
	s := setupStores(t)
	s.insertHops(t, "Perle")

	_, err := s.db.Exec("INSERT INTO hop (name, alpha, form, stock, deleted) VALUES ('Odd', 1, 'cone', 0, FALSE)")
	require.NoError(t, err)

	reloaded := openStores(t, s.db, s.dialect, false)
	require.NoError(t, reloaded.hops.LoadAll(context.Background()))
	all := reloaded.hops.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, "Perle", all[0].Name)
}

func TestLoadAll_AcceptsLegacyEnumCase(t *testing.T) {
	s := setupStores(t)
	_, err := s.db.Exec("INSERT INTO hop (name, alpha, form, stock, deleted) VALUES ('Old', 1, 'Leaf', 0, FALSE)")
	require.NoError(t, err)

	require.NoError(t, s.hops.LoadAll(context.Background()))
	all := s.hops.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Form)
}

func TestInsert_FailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	recipes, err := New(db, database.SQLite{}, testRecipeMapping())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO recipe").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO hop_in_recipe").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	r := &testRecipe{Name: "Broken", HopIDs: []int{1}}
	_, err = recipes.Insert(context.Background(), r)
	require.Error(t, err)
	assert.Equal(t, 0, r.Key())
	assert.Zero(t, recipes.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_PostgresReadsReturnedKey(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	hops, err := New(db, database.Postgres{}, testHopMapping())
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO hop (name, alpha, form, harvest, stock, deleted) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id").
		WithArgs("Galena", 12.0, "pellet", nil, int64(0), false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectCommit()

	h, err := hops.Insert(context.Background(), &testHop{Name: "Galena", Alpha: 12})
	require.NoError(t, err)
	assert.Equal(t, 31, h.Key())
	require.NoError(t, mock.ExpectationsWereMet())
}
