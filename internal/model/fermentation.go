package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Fermentation is a fermentation profile. A recipe owns exactly one.
type Fermentation struct {
	NamedEntity
	Description string
	Folder      string
}

func NewFermentation(name string) *Fermentation {
	return &Fermentation{NamedEntity: newNamed(name)}
}

// FermentationStep is one stage of a fermentation. StepTime is in days.
type FermentationStep struct {
	NamedEntity
	StepTime       float64
	StartTemp      float64
	EndTemp        float64
	StepNumber     int
	FermentationID int
}

func NewFermentationStep(name string, fermentationID, stepNumber int) *FermentationStep {
	return &FermentationStep{NamedEntity: newNamed(name), FermentationID: fermentationID, StepNumber: stepNumber}
}

var FermentationTable = &schema.Table{
	Name: "fermentation",
	Fields: fields(
		nameField(),
		schema.Field{Property: "description", Column: "description", Type: schema.String},
		folderField(),
	),
}

var FermentationStepTable = &schema.Table{
	Name: "fermentation_step",
	Fields: fields(
		nameField(),
		schema.Field{Property: "stepTime", Column: "step_time", Type: schema.Double},
		schema.Field{Property: "startTemp", Column: "start_temp", Type: schema.Double},
		schema.Field{Property: "endTemp", Column: "end_temp", Type: schema.Double},
		schema.Field{Property: "stepNumber", Column: "step_number", Type: schema.UInt},
		foreignKey("fermentationId", "fermentation_id", "fermentation"),
	),
}

func fermentationMapping() objectstore.Mapping[*Fermentation] {
	return objectstore.Mapping[*Fermentation]{
		Table: FermentationTable,
		New: func(b objectstore.Bundle) *Fermentation {
			return &Fermentation{
				NamedEntity: namedFromBundle(b),
				Description: b.String("description"),
				Folder:      b.String(PropFolder),
			}
		},
		Fields: withNamed(map[string]func(*Fermentation) any{
			"description": func(f *Fermentation) any { return f.Description },
			PropFolder:    func(f *Fermentation) any { return f.Folder },
		}),
	}
}

func fermentationStepMapping() objectstore.Mapping[*FermentationStep] {
	return objectstore.Mapping[*FermentationStep]{
		Table: FermentationStepTable,
		New: func(b objectstore.Bundle) *FermentationStep {
			return &FermentationStep{
				NamedEntity:    namedFromBundle(b),
				StepTime:       b.Float("stepTime"),
				StartTemp:      b.Float("startTemp"),
				EndTemp:        b.Float("endTemp"),
				StepNumber:     b.Int("stepNumber"),
				FermentationID: b.Int("fermentationId"),
			}
		},
		Fields: withNamed(map[string]func(*FermentationStep) any{
			"stepTime":       func(s *FermentationStep) any { return s.StepTime },
			"startTemp":      func(s *FermentationStep) any { return s.StartTemp },
			"endTemp":        func(s *FermentationStep) any { return s.EndTemp },
			"stepNumber":     func(s *FermentationStep) any { return s.StepNumber },
			"fermentationId": func(s *FermentationStep) any { return s.FermentationID },
		}),
	}
}
