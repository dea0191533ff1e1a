package migration

import (
	"fmt"

	"github.com/roach88/brewdb/internal/database"
)

// step returns the statements that carry the schema from one version to the
// next. Each step is written against the shape left by the previous one and
// must never change once released.
type step func(d database.Dialect) []Query

var steps = map[int]step{
	1:  migrateTo202,
	2:  migrateTo210,
	3:  migrateTo4,
	4:  migrateTo5,
	5:  migrateTo6,
	6:  migrateTo7,
	7:  migrateTo8,
	8:  migrateTo9,
	9:  migrateTo10,
	10: migrateTo11,
}

// sqlTypes spells column types for hand-written DDL.
type sqlTypes struct {
	pk      string
	boolean string
	integer string
	real    string
	text    string
	date    string
}

func typesOf(d database.Dialect) sqlTypes {
	return sqlTypes{
		pk:      d.PrimaryKeyDeclaration(),
		boolean: d.TypeName(database.Bool),
		integer: d.TypeName(database.Int),
		real:    d.TypeName(database.Double),
		text:    d.TypeName(database.String),
		date:    d.TypeName(database.Date),
	}
}

// flags are the soft-delete columns every entity table carries.
func (t sqlTypes) flags() string {
	return fmt.Sprintf("deleted %s DEFAULT FALSE, display %s DEFAULT TRUE", t.boolean, t.boolean)
}

func addColumn(table, column, typ, def string) Query {
	sql := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ)
	if def != "" {
		sql += " DEFAULT " + def
	}
	return Query{SQL: sql}
}

func dropColumn(table, column string) Query {
	return Query{SQL: fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, column)}
}

func settingsTable(t sqlTypes, name string) string {
	return fmt.Sprintf("CREATE TABLE %s (id %s, version %s, repopulatechildrenonnextstart %s DEFAULT 0)",
		name, t.pk, t.integer, t.integer)
}

// reencode rewrites stored enum strings, from → to.
func reencode(table, column string, pairs ...[2]string) []Query {
	queries := make([]Query, 0, len(pairs))
	for _, p := range pairs {
		queries = append(queries, Query{
			SQL:  fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", table, column, column),
			Args: []any{p[1], p[0]},
		})
	}
	return queries
}

func setLegacyVersion(v string) Query {
	return Query{SQL: "UPDATE settings SET version = ? WHERE id = 1", Args: []any{v}}
}

// 2.0.0 → 2.0.2: entities can be filed into folders.
func migrateTo202(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("hop", "folder", t.text, "''"),
		addColumn("equipment", "folder", t.text, "''"),
		addColumn("mash", "folder", t.text, "''"),
		addColumn("recipe", "folder", t.text, "''"),
		setLegacyVersion("2.0.2"),
	}
}

// 2.0.2 → 2.1.0: each child hop keeps a single parent; the parent/child
// links are rebuilt on next start.
func migrateTo210(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("settings", "repopulatechildrenonnextstart", t.integer, "0"),
		{SQL: "DELETE FROM hop_children WHERE id NOT IN (SELECT MIN(id) FROM hop_children GROUP BY child_id)"},
		{SQL: "UPDATE settings SET repopulatechildrenonnextstart = 1"},
		setLegacyVersion("2.1.0"),
	}
}

// 2.1.0 → 4: the version column becomes an integer. The settings table is
// rebuilt because a column type cannot be changed in place on SQLite.
func migrateTo4(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		{SQL: settingsTable(t, "settings_tmp")},
		{SQL: "INSERT INTO settings_tmp (id, version, repopulatechildrenonnextstart) SELECT id, 4, repopulatechildrenonnextstart FROM settings"},
		{SQL: "DROP TABLE settings"},
		{SQL: "ALTER TABLE settings_tmp RENAME TO settings"},
	}
}

func migrateTo5(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("equipment", "kettle_top_up", t.real, "0"),
		{SQL: "UPDATE equipment SET kettle_top_up = top_up_kettle"},
		dropColumn("equipment", "top_up_kettle"),
		addColumn("hop", "substitutes", t.text, "''"),
	}
}

func migrateTo6(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("recipe", "notes", t.text, "''"),
		addColumn("mashstep", "ramp_time", t.real, "0"),
	}
}

func migrateTo7(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("hop", "year", t.text, "''"),
		addColumn("hop", "origin", t.text, "''"),
	}
}

// Hop amounts were always weights until now.
func migrateTo8(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("hop", "amount_is_weight", t.boolean, "TRUE"),
	}
}

// Mash steps get an explicit position within their mash, numbered in
// insertion order.
func migrateTo9(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		{SQL: "ALTER TABLE mashstep RENAME TO mash_step"},
		addColumn("mash_step", "step_number", t.integer, "0"),
		{SQL: `UPDATE mash_step SET step_number = (
			SELECT COUNT(*) FROM mash_step earlier
			WHERE earlier.mash_id = mash_step.mash_id AND earlier.id <= mash_step.id)`},
	}
}

func migrateTo10(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		addColumn("recipe", "age_days", t.real, "0"),
		{SQL: "UPDATE mash_step SET end_temp = step_temp WHERE end_temp IS NULL OR end_temp = 0"},
		// A recipe holds at most one equipment; keep the oldest link.
		{SQL: "SELECT recipe_id FROM equipment_in_recipe GROUP BY recipe_id HAVING COUNT(*) > 1"},
		{
			SQL:                   "DELETE FROM equipment_in_recipe WHERE id NOT IN (SELECT MIN(id) FROM equipment_in_recipe GROUP BY recipe_id)",
			OnlyIfPriorHadResults: true,
		},
	}
}

// migrateTo11 splits boil and fermentation out of recipe into their own
// profiles with steps, and turns recipe hops into addition records that
// point at the library hop instead of a per-recipe copy.
func migrateTo11(d database.Dialect) []Query {
	t := typesOf(d)
	var q []Query

	// New tables. temp_recipe_id links each new row to its recipe until the
	// recipe's own foreign key has been filled in.
	q = append(q,
		Query{SQL: fmt.Sprintf(`CREATE TABLE boil (id %s, name %s, description %s, pre_boil_size %s,
			boil_time %s, folder %s DEFAULT '', %s, temp_recipe_id %s)`,
			t.pk, t.text, t.text, t.real, t.real, t.text, t.flags(), t.integer)},
		Query{SQL: fmt.Sprintf(`CREATE TABLE boil_step (id %s, name %s, step_time %s, start_temp %s,
			end_temp %s, ramp_time %s, step_number %s, boil_id %s REFERENCES boil(id), %s)`,
			t.pk, t.text, t.real, t.real, t.real, t.real, t.integer, t.integer, t.flags())},
		Query{SQL: fmt.Sprintf(`CREATE TABLE fermentation (id %s, name %s, description %s,
			folder %s DEFAULT '', %s, temp_recipe_id %s)`,
			t.pk, t.text, t.text, t.text, t.flags(), t.integer)},
		Query{SQL: fmt.Sprintf(`CREATE TABLE fermentation_step (id %s, name %s, step_time %s, start_temp %s,
			end_temp %s, step_number %s, fermentation_id %s REFERENCES fermentation(id), %s)`,
			t.pk, t.text, t.real, t.real, t.real, t.integer, t.integer, t.flags())},
		Query{SQL: database.FormatAddForeignKeyColumn(d, "recipe", "boil_id", "boil", "id")},
		Query{SQL: database.FormatAddForeignKeyColumn(d, "recipe", "fermentation_id", "fermentation", "id")},
	)

	// One boil per recipe, with pre-boil, boil and post-boil steps.
	q = append(q,
		Query{SQL: `INSERT INTO boil (name, description, pre_boil_size, boil_time, folder, deleted, display, temp_recipe_id)
			SELECT 'Boil for ' || name, '', boil_size, boil_time, '', deleted, display, id FROM recipe ORDER BY id`},
		Query{SQL: "UPDATE recipe SET boil_id = (SELECT boil.id FROM boil WHERE boil.temp_recipe_id = recipe.id)"},
		Query{SQL: `INSERT INTO boil_step (name, step_time, start_temp, end_temp, ramp_time, step_number, boil_id, deleted, display)
			SELECT 'Pre-boil', 0.0,
				COALESCE((
					SELECT CASE WHEN ms.end_temp < ms.step_temp THEN ms.end_temp ELSE ms.step_temp END
					FROM mash_step ms
					WHERE ms.mash_id = recipe.mash_id AND ms.deleted = FALSE
					ORDER BY ms.step_number DESC LIMIT 1), 20.0),
				100.0, 0.0, 1, boil_id, FALSE, TRUE
			FROM recipe`},
		Query{SQL: `INSERT INTO boil_step (name, step_time, start_temp, end_temp, ramp_time, step_number, boil_id, deleted, display)
			SELECT 'Boil', boil_time, 100.0, 100.0, 0.0, 2, boil_id, FALSE, TRUE FROM recipe`},
		Query{SQL: `INSERT INTO boil_step (name, step_time, start_temp, end_temp, ramp_time, step_number, boil_id, deleted, display)
			SELECT 'Post-boil', 0.0, 100.0,
				CASE WHEN primary_temp > 0 THEN primary_temp ELSE 20.0 END,
				0.0, 3, boil_id, FALSE, TRUE
			FROM recipe`},
	)

	// One fermentation per recipe; recipes with a primary stage get a step.
	q = append(q,
		Query{SQL: `INSERT INTO fermentation (name, description, folder, deleted, display, temp_recipe_id)
			SELECT 'Fermentation for ' || name, '', '', deleted, display, id FROM recipe ORDER BY id`},
		Query{SQL: "UPDATE recipe SET fermentation_id = (SELECT fermentation.id FROM fermentation WHERE fermentation.temp_recipe_id = recipe.id)"},
		Query{SQL: `INSERT INTO fermentation_step (name, step_time, start_temp, end_temp, step_number, fermentation_id, deleted, display)
			SELECT 'Primary', primary_age, primary_temp, primary_temp, 1, fermentation_id, FALSE, TRUE
			FROM recipe WHERE primary_age > 0`},
	)

	// Hop additions replace the per-recipe hop copies.
	q = append(q,
		Query{SQL: fmt.Sprintf(`CREATE TABLE recipe_addition_hop (id %s, name %s,
			recipe_id %s REFERENCES recipe(id), hop_id %s REFERENCES hop(id),
			amount %s, amount_is_weight %s DEFAULT TRUE, stage %s, add_at_time_mins %s, %s)`,
			t.pk, t.text, t.integer, t.integer, t.real, t.boolean, t.text, t.real, t.flags())},
		Query{SQL: `INSERT INTO recipe_addition_hop (name, recipe_id, hop_id, amount, amount_is_weight, stage, add_at_time_mins, deleted, display)
			SELECT 'Addition of ' || hop.name, hop_in_recipe.recipe_id, hop_in_recipe.hop_id,
				hop.amount, hop.amount_is_weight,
				CASE hop.hop_use
					WHEN 'Mash' THEN 'add_to_mash'
					WHEN 'Dry Hop' THEN 'add_to_fermentation'
					ELSE 'add_to_boil'
				END,
				hop.time, FALSE, TRUE
			FROM hop_in_recipe JOIN hop ON hop.id = hop_in_recipe.hop_id
			ORDER BY hop_in_recipe.id`},
		// Additions point at the parent hop; the child copies are retired.
		Query{SQL: "SELECT child_id FROM hop_children LIMIT 1"},
		Query{
			SQL: `UPDATE recipe_addition_hop
				SET hop_id = (SELECT hop_children.parent_id FROM hop_children WHERE hop_children.child_id = recipe_addition_hop.hop_id)
				WHERE hop_id IN (SELECT child_id FROM hop_children)`,
			OnlyIfPriorHadResults: true,
		},
		Query{
			SQL:                   "UPDATE hop SET deleted = TRUE, display = FALSE WHERE id IN (SELECT child_id FROM hop_children)",
			OnlyIfPriorHadResults: true,
		},
	)

	q = append(q, reencode("hop", "htype",
		[2]string{"Bittering", "bittering"},
		[2]string{"Aroma", "aroma"},
		[2]string{"Both", "aroma/bittering"},
	)...)
	q = append(q, reencode("hop", "form",
		[2]string{"Pellet", "pellet"},
		[2]string{"Plug", "plug"},
		[2]string{"Leaf", "leaf"},
	)...)
	q = append(q, reencode("mash_step", "mstype",
		[2]string{"Infusion", "infusion"},
		[2]string{"Temperature", "temperature"},
		[2]string{"Decoction", "decoction"},
	)...)
	q = append(q, reencode("recipe", "type",
		[2]string{"Extract", "extract"},
		[2]string{"Partial Mash", "partial mash"},
		[2]string{"All Grain", "all grain"},
	)...)

	q = append(q,
		dropColumn("boil", "temp_recipe_id"),
		dropColumn("fermentation", "temp_recipe_id"),
		dropColumn("hop", "hop_use"),
		dropColumn("hop", "time"),
		dropColumn("recipe", "boil_size"),
		dropColumn("recipe", "boil_time"),
		dropColumn("recipe", "primary_age"),
		dropColumn("recipe", "primary_temp"),
		Query{SQL: "DROP TABLE hop_in_recipe"},
		Query{SQL: "DROP TABLE hop_children"},
	)
	return q
}
