package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Mash is a mash profile. Its steps reference it through MashStep.MashID.
type Mash struct {
	NamedEntity
	GrainTemp float64
	Folder    string
}

func NewMash(name string) *Mash {
	return &Mash{NamedEntity: newNamed(name)}
}

// MashStep is one rest of a mash. Temperatures are °C, times minutes.
type MashStep struct {
	NamedEntity
	Type       MashStepType
	StepTemp   float64
	StepTime   float64
	EndTemp    float64
	RampTime   float64
	StepNumber int
	MashID     int
}

func NewMashStep(name string, mashID, stepNumber int) *MashStep {
	return &MashStep{NamedEntity: newNamed(name), MashID: mashID, StepNumber: stepNumber}
}

var MashTable = &schema.Table{
	Name: "mash",
	Fields: fields(
		nameField(),
		schema.Field{Property: "grainTemp", Column: "grain_temp", Type: schema.Double},
		folderField(),
	),
}

var MashStepTable = &schema.Table{
	Name: "mash_step",
	Fields: fields(
		nameField(),
		schema.Field{Property: "type", Column: "mstype", Type: schema.Enum, Enum: MashStepTypes},
		schema.Field{Property: "stepTemp", Column: "step_temp", Type: schema.Double},
		schema.Field{Property: "stepTime", Column: "step_time", Type: schema.Double},
		schema.Field{Property: "endTemp", Column: "end_temp", Type: schema.Double},
		schema.Field{Property: "rampTime", Column: "ramp_time", Type: schema.Double},
		schema.Field{Property: "stepNumber", Column: "step_number", Type: schema.UInt},
		foreignKey("mashId", "mash_id", "mash"),
	),
}

func mashMapping() objectstore.Mapping[*Mash] {
	return objectstore.Mapping[*Mash]{
		Table: MashTable,
		New: func(b objectstore.Bundle) *Mash {
			return &Mash{
				NamedEntity: namedFromBundle(b),
				GrainTemp:   b.Float("grainTemp"),
				Folder:      b.String(PropFolder),
			}
		},
		Fields: withNamed(map[string]func(*Mash) any{
			"grainTemp": func(m *Mash) any { return m.GrainTemp },
			PropFolder:  func(m *Mash) any { return m.Folder },
		}),
	}
}

func mashStepMapping() objectstore.Mapping[*MashStep] {
	return objectstore.Mapping[*MashStep]{
		Table: MashStepTable,
		New: func(b objectstore.Bundle) *MashStep {
			return &MashStep{
				NamedEntity: namedFromBundle(b),
				Type:        MashStepType(b.Int("type")),
				StepTemp:    b.Float("stepTemp"),
				StepTime:    b.Float("stepTime"),
				EndTemp:     b.Float("endTemp"),
				RampTime:    b.Float("rampTime"),
				StepNumber:  b.Int("stepNumber"),
				MashID:      b.Int("mashId"),
			}
		},
		Fields: withNamed(map[string]func(*MashStep) any{
			"type":       func(s *MashStep) any { return int(s.Type) },
			"stepTemp":   func(s *MashStep) any { return s.StepTemp },
			"stepTime":   func(s *MashStep) any { return s.StepTime },
			"endTemp":    func(s *MashStep) any { return s.EndTemp },
			"rampTime":   func(s *MashStep) any { return s.RampTime },
			"stepNumber": func(s *MashStep) any { return s.StepNumber },
			"mashId":     func(s *MashStep) any { return s.MashID },
		}),
	}
}
