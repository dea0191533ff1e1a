package migration

import (
	"fmt"

	"github.com/roach88/brewdb/internal/database"
)

// legacyVersions maps the descriptive version strings written before the
// settings version became an integer.
var legacyVersions = map[string]int{
	"2.0.0": 1,
	"2.0.2": 2,
	"2.1.0": 3,
}

// schemaV1 is the 2.0.0 schema, the oldest one that can be migrated.
func schemaV1(d database.Dialect) []Query {
	t := typesOf(d)
	return []Query{
		{SQL: fmt.Sprintf("CREATE TABLE settings (id %s, version %s)", t.pk, t.text)},
		{SQL: fmt.Sprintf(`CREATE TABLE hop (id %s, name %s, alpha %s, amount %s, hop_use %s, time %s,
			notes %s, htype %s, form %s, %s)`,
			t.pk, t.text, t.real, t.real, t.text, t.real, t.text, t.text, t.text, t.flags())},
		{SQL: fmt.Sprintf(`CREATE TABLE equipment (id %s, name %s, boil_size %s, batch_size %s,
			top_up_kettle %s, boil_time %s, %s)`,
			t.pk, t.text, t.real, t.real, t.real, t.real, t.flags())},
		{SQL: fmt.Sprintf("CREATE TABLE mash (id %s, name %s, grain_temp %s, %s)",
			t.pk, t.text, t.real, t.flags())},
		{SQL: fmt.Sprintf(`CREATE TABLE mashstep (id %s, name %s, mstype %s, step_temp %s, step_time %s,
			end_temp %s, mash_id %s REFERENCES mash(id), %s)`,
			t.pk, t.text, t.text, t.real, t.real, t.real, t.integer, t.flags())},
		{SQL: fmt.Sprintf(`CREATE TABLE instruction (id %s, name %s, directions %s,
			has_timer %s DEFAULT FALSE, timer_value %s, completed %s DEFAULT FALSE, %s)`,
			t.pk, t.text, t.text, t.boolean, t.text, t.boolean, t.flags())},
		{SQL: fmt.Sprintf(`CREATE TABLE recipe (id %s, name %s, type %s, batch_size %s, boil_size %s,
			boil_time %s, primary_age %s, primary_temp %s, created %s, mash_id %s REFERENCES mash(id), %s)`,
			t.pk, t.text, t.text, t.real, t.real, t.real, t.real, t.real, t.date, t.integer, t.flags())},
		{SQL: fmt.Sprintf(`CREATE TABLE hop_in_recipe (id %s, hop_id %s REFERENCES hop(id),
			recipe_id %s REFERENCES recipe(id))`, t.pk, t.integer, t.integer)},
		{SQL: fmt.Sprintf(`CREATE TABLE equipment_in_recipe (id %s, equipment_id %s REFERENCES equipment(id),
			recipe_id %s REFERENCES recipe(id))`, t.pk, t.integer, t.integer)},
		{SQL: fmt.Sprintf(`CREATE TABLE instruction_in_recipe (id %s, instruction_id %s REFERENCES instruction(id),
			recipe_id %s REFERENCES recipe(id), instruction_number %s)`, t.pk, t.integer, t.integer, t.integer)},
		{SQL: fmt.Sprintf(`CREATE TABLE hop_children (id %s, parent_id %s REFERENCES hop(id),
			child_id %s REFERENCES hop(id))`, t.pk, t.integer, t.integer)},
		{SQL: "INSERT INTO settings (id, version) VALUES (1, ?)", Args: []any{"2.0.0"}},
	}
}
