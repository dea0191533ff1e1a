package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Boil is a boil profile. A recipe owns exactly one.
type Boil struct {
	NamedEntity
	Description string
	PreBoilSize float64
	BoilTime    float64
	Folder      string
}

func NewBoil(name string) *Boil {
	return &Boil{NamedEntity: newNamed(name)}
}

// BoilStep is one phase of a boil profile.
type BoilStep struct {
	NamedEntity
	StepTime   float64
	StartTemp  float64
	EndTemp    float64
	RampTime   float64
	StepNumber int
	BoilID     int
}

func NewBoilStep(name string, boilID, stepNumber int) *BoilStep {
	return &BoilStep{NamedEntity: newNamed(name), BoilID: boilID, StepNumber: stepNumber}
}

var BoilTable = &schema.Table{
	Name: "boil",
	Fields: fields(
		nameField(),
		schema.Field{Property: "description", Column: "description", Type: schema.String},
		schema.Field{Property: "preBoilSize", Column: "pre_boil_size", Type: schema.Double},
		schema.Field{Property: "boilTime", Column: "boil_time", Type: schema.Double},
		folderField(),
	),
}

var BoilStepTable = &schema.Table{
	Name: "boil_step",
	Fields: fields(
		nameField(),
		schema.Field{Property: "stepTime", Column: "step_time", Type: schema.Double},
		schema.Field{Property: "startTemp", Column: "start_temp", Type: schema.Double},
		schema.Field{Property: "endTemp", Column: "end_temp", Type: schema.Double},
		schema.Field{Property: "rampTime", Column: "ramp_time", Type: schema.Double},
		schema.Field{Property: "stepNumber", Column: "step_number", Type: schema.UInt},
		foreignKey("boilId", "boil_id", "boil"),
	),
}

func boilMapping() objectstore.Mapping[*Boil] {
	return objectstore.Mapping[*Boil]{
		Table: BoilTable,
		New: func(b objectstore.Bundle) *Boil {
			return &Boil{
				NamedEntity: namedFromBundle(b),
				Description: b.String("description"),
				PreBoilSize: b.Float("preBoilSize"),
				BoilTime:    b.Float("boilTime"),
				Folder:      b.String(PropFolder),
			}
		},
		Fields: withNamed(map[string]func(*Boil) any{
			"description": func(o *Boil) any { return o.Description },
			"preBoilSize": func(o *Boil) any { return o.PreBoilSize },
			"boilTime":    func(o *Boil) any { return o.BoilTime },
			PropFolder:    func(o *Boil) any { return o.Folder },
		}),
	}
}

func boilStepMapping() objectstore.Mapping[*BoilStep] {
	return objectstore.Mapping[*BoilStep]{
		Table: BoilStepTable,
		New: func(b objectstore.Bundle) *BoilStep {
			return &BoilStep{
				NamedEntity: namedFromBundle(b),
				StepTime:    b.Float("stepTime"),
				StartTemp:   b.Float("startTemp"),
				EndTemp:     b.Float("endTemp"),
				RampTime:    b.Float("rampTime"),
				StepNumber:  b.Int("stepNumber"),
				BoilID:      b.Int("boilId"),
			}
		},
		Fields: withNamed(map[string]func(*BoilStep) any{
			"stepTime":   func(s *BoilStep) any { return s.StepTime },
			"startTemp":  func(s *BoilStep) any { return s.StartTemp },
			"endTemp":    func(s *BoilStep) any { return s.EndTemp },
			"rampTime":   func(s *BoilStep) any { return s.RampTime },
			"stepNumber": func(s *BoilStep) any { return s.StepNumber },
			"boilId":     func(s *BoilStep) any { return s.BoilID },
		}),
	}
}
