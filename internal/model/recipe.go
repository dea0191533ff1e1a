package model

import (
	"time"

	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Instruction is one line of a recipe's brew-day checklist.
type Instruction struct {
	NamedEntity
	Directions string
	HasTimer   bool
	TimerValue string
	Completed  bool
}

func NewInstruction(name, directions string) *Instruction {
	return &Instruction{NamedEntity: newNamed(name), Directions: directions}
}

// Recipe ties together the profiles and ingredient additions of a beer.
// EquipmentID and InstructionIDs are stored in junction tables.
type Recipe struct {
	NamedEntity
	Type           RecipeType
	BatchSize      float64
	Created        time.Time
	Notes          string
	AgeDays        float64
	Folder         string
	MashID         int
	BoilID         int
	FermentationID int
	EquipmentID    int
	InstructionIDs []int
}

func NewRecipe(name string) *Recipe {
	return &Recipe{NamedEntity: newNamed(name), Type: RecipeAllGrain}
}

// RecipeAdditionHop is a quantity of a library hop added to one recipe.
// AddAtTime is minutes before the end of the stage.
type RecipeAdditionHop struct {
	NamedEntity
	RecipeID       int
	HopID          int
	Amount         float64
	AmountIsWeight bool
	Stage          AdditionStage
	AddAtTime      float64
}

func NewRecipeAdditionHop(recipeID, hopID int, amount float64, stage AdditionStage) *RecipeAdditionHop {
	return &RecipeAdditionHop{
		NamedEntity:    newNamed(""),
		RecipeID:       recipeID,
		HopID:          hopID,
		Amount:         amount,
		AmountIsWeight: true,
		Stage:          stage,
	}
}

var InstructionTable = &schema.Table{
	Name: "instruction",
	Fields: fields(
		nameField(),
		schema.Field{Property: "directions", Column: "directions", Type: schema.String},
		schema.Field{Property: "hasTimer", Column: "has_timer", Type: schema.Bool},
		schema.Field{Property: "timerValue", Column: "timer_value", Type: schema.String},
		schema.Field{Property: "completed", Column: "completed", Type: schema.Bool},
	),
}

var RecipeTable = &schema.Table{
	Name: "recipe",
	Fields: fields(
		nameField(),
		schema.Field{Property: "type", Column: "type", Type: schema.Enum, Enum: RecipeTypes},
		schema.Field{Property: "batchSize", Column: "batch_size", Type: schema.Double},
		schema.Field{Property: "created", Column: "created", Type: schema.Date},
		schema.Field{Property: "notes", Column: "notes", Type: schema.String},
		schema.Field{Property: "ageDays", Column: "age_days", Type: schema.Double},
		folderField(),
		foreignKey("mashId", "mash_id", "mash"),
		foreignKey("boilId", "boil_id", "boil"),
		foreignKey("fermentationId", "fermentation_id", "fermentation"),
	),
	Junctions: []schema.Junction{
		{
			Table:          "equipment_in_recipe",
			ThisKeyColumn:  "recipe_id",
			OtherKeyColumn: "equipment_id",
			OtherTable:     "equipment",
			Property:       "equipmentId",
			Cardinality:    schema.AtMostOne,
		},
		{
			Table:          "instruction_in_recipe",
			ThisKeyColumn:  "recipe_id",
			OtherKeyColumn: "instruction_id",
			OrderColumn:    "instruction_number",
			OtherTable:     "instruction",
			Property:       "instructionIds",
			Cardinality:    schema.Many,
		},
	},
}

var RecipeAdditionHopTable = &schema.Table{
	Name: "recipe_addition_hop",
	Fields: fields(
		nameField(),
		foreignKey("recipeId", "recipe_id", "recipe"),
		foreignKey("hopId", "hop_id", "hop"),
		schema.Field{Property: "amount", Column: "amount", Type: schema.Double},
		schema.Field{Property: "amountIsWeight", Column: "amount_is_weight", Type: schema.Bool},
		schema.Field{Property: "stage", Column: "stage", Type: schema.Enum, Enum: AdditionStages},
		schema.Field{Property: "addAtTime", Column: "add_at_time_mins", Type: schema.Double},
	),
}

func instructionMapping() objectstore.Mapping[*Instruction] {
	return objectstore.Mapping[*Instruction]{
		Table: InstructionTable,
		New: func(b objectstore.Bundle) *Instruction {
			return &Instruction{
				NamedEntity: namedFromBundle(b),
				Directions:  b.String("directions"),
				HasTimer:    b.Bool("hasTimer"),
				TimerValue:  b.String("timerValue"),
				Completed:   b.Bool("completed"),
			}
		},
		Fields: withNamed(map[string]func(*Instruction) any{
			"directions": func(i *Instruction) any { return i.Directions },
			"hasTimer":   func(i *Instruction) any { return i.HasTimer },
			"timerValue": func(i *Instruction) any { return i.TimerValue },
			"completed":  func(i *Instruction) any { return i.Completed },
		}),
	}
}

func recipeMapping() objectstore.Mapping[*Recipe] {
	return objectstore.Mapping[*Recipe]{
		Table: RecipeTable,
		New: func(b objectstore.Bundle) *Recipe {
			return &Recipe{
				NamedEntity:    namedFromBundle(b),
				Type:           RecipeType(b.Int("type")),
				BatchSize:      b.Float("batchSize"),
				Created:        b.Time("created"),
				Notes:          b.String("notes"),
				AgeDays:        b.Float("ageDays"),
				Folder:         b.String(PropFolder),
				MashID:         b.Int("mashId"),
				BoilID:         b.Int("boilId"),
				FermentationID: b.Int("fermentationId"),
			}
		},
		Fields: withNamed(map[string]func(*Recipe) any{
			"type":           func(r *Recipe) any { return int(r.Type) },
			"batchSize":      func(r *Recipe) any { return r.BatchSize },
			"created":        func(r *Recipe) any { return r.Created },
			"notes":          func(r *Recipe) any { return r.Notes },
			"ageDays":        func(r *Recipe) any { return r.AgeDays },
			PropFolder:       func(r *Recipe) any { return r.Folder },
			"mashId":         func(r *Recipe) any { return r.MashID },
			"boilId":         func(r *Recipe) any { return r.BoilID },
			"fermentationId": func(r *Recipe) any { return r.FermentationID },
		}),
		Links: map[string]objectstore.Link[*Recipe]{
			"equipmentId": {
				Get: func(r *Recipe) []int {
					if r.EquipmentID > 0 {
						return []int{r.EquipmentID}
					}
					return nil
				},
				Set: func(r *Recipe, ids []int) {
					r.EquipmentID = 0
					if len(ids) > 0 {
						r.EquipmentID = ids[0]
					}
				},
			},
			"instructionIds": {
				Get: func(r *Recipe) []int { return r.InstructionIDs },
				Set: func(r *Recipe, ids []int) { r.InstructionIDs = ids },
			},
		},
	}
}

func recipeAdditionHopMapping() objectstore.Mapping[*RecipeAdditionHop] {
	return objectstore.Mapping[*RecipeAdditionHop]{
		Table: RecipeAdditionHopTable,
		New: func(b objectstore.Bundle) *RecipeAdditionHop {
			return &RecipeAdditionHop{
				NamedEntity:    namedFromBundle(b),
				RecipeID:       b.Int("recipeId"),
				HopID:          b.Int("hopId"),
				Amount:         b.Float("amount"),
				AmountIsWeight: b.Bool("amountIsWeight"),
				Stage:          AdditionStage(b.Int("stage")),
				AddAtTime:      b.Float("addAtTime"),
			}
		},
		Fields: withNamed(map[string]func(*RecipeAdditionHop) any{
			"recipeId":       func(a *RecipeAdditionHop) any { return a.RecipeID },
			"hopId":          func(a *RecipeAdditionHop) any { return a.HopID },
			"amount":         func(a *RecipeAdditionHop) any { return a.Amount },
			"amountIsWeight": func(a *RecipeAdditionHop) any { return a.AmountIsWeight },
			"stage":          func(a *RecipeAdditionHop) any { return int(a.Stage) },
			"addAtTime":      func(a *RecipeAdditionHop) any { return a.AddAtTime },
		}),
	}
}
