package model

import "github.com/roach88/brewdb/internal/schema"

// HopType is the brewing role of a hop variety.
type HopType int

const (
	HopBittering HopType = iota
	HopAroma
	HopAromaAndBittering
)

// HopForm is the physical form a hop is sold in.
type HopForm int

const (
	HopPellet HopForm = iota
	HopPlug
	HopLeaf
	HopExtract
)

// MashStepType selects how a mash step reaches its temperature.
type MashStepType int

const (
	MashInfusion MashStepType = iota
	MashTemperature
	MashDecoction
)

// RecipeType is the brewing method of a recipe.
type RecipeType int

const (
	RecipeExtract RecipeType = iota
	RecipePartialMash
	RecipeAllGrain
)

// AdditionStage is the point in the process an ingredient is added.
type AdditionStage int

const (
	StageMash AdditionStage = iota
	StageBoil
	StageFermentation
	StagePackaging
)

// Stored string forms. These must never change once written to a database;
// renaming one requires a migration step.
var (
	HopTypes = schema.MustEnumMapping("HopType",
		schema.EnumPair{Value: int(HopBittering), Name: "bittering"},
		schema.EnumPair{Value: int(HopAroma), Name: "aroma"},
		schema.EnumPair{Value: int(HopAromaAndBittering), Name: "aroma/bittering"},
	)

	HopForms = schema.MustEnumMapping("HopForm",
		schema.EnumPair{Value: int(HopPellet), Name: "pellet"},
		schema.EnumPair{Value: int(HopPlug), Name: "plug"},
		schema.EnumPair{Value: int(HopLeaf), Name: "leaf"},
		schema.EnumPair{Value: int(HopExtract), Name: "extract"},
	)

	MashStepTypes = schema.MustEnumMapping("MashStepType",
		schema.EnumPair{Value: int(MashInfusion), Name: "infusion"},
		schema.EnumPair{Value: int(MashTemperature), Name: "temperature"},
		schema.EnumPair{Value: int(MashDecoction), Name: "decoction"},
	)

	RecipeTypes = schema.MustEnumMapping("RecipeType",
		schema.EnumPair{Value: int(RecipeExtract), Name: "extract"},
		schema.EnumPair{Value: int(RecipePartialMash), Name: "partial mash"},
		schema.EnumPair{Value: int(RecipeAllGrain), Name: "all grain"},
	)

	AdditionStages = schema.MustEnumMapping("AdditionStage",
		schema.EnumPair{Value: int(StageMash), Name: "add_to_mash"},
		schema.EnumPair{Value: int(StageBoil), Name: "add_to_boil"},
		schema.EnumPair{Value: int(StageFermentation), Name: "add_to_fermentation"},
		schema.EnumPair{Value: int(StagePackaging), Name: "add_to_package"},
	)
)

func (t HopType) String() string       { return enumString(HopTypes, int(t)) }
func (f HopForm) String() string       { return enumString(HopForms, int(f)) }
func (t MashStepType) String() string  { return enumString(MashStepTypes, int(t)) }
func (t RecipeType) String() string    { return enumString(RecipeTypes, int(t)) }
func (s AdditionStage) String() string { return enumString(AdditionStages, int(s)) }

func enumString(m *schema.EnumMapping, v int) string {
	if s, ok := m.String(v); ok {
		return s
	}
	return m.Name() + "(?)"
}
