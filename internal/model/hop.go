package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Hop is a hop variety in the ingredient library. Amount is in kilograms
// when AmountIsWeight is set and in litres otherwise.
type Hop struct {
	NamedEntity
	Alpha          float64
	Amount         float64
	AmountIsWeight bool
	Notes          string
	Type           HopType
	Form           HopForm
	Year           string
	Origin         string
	Substitutes    string
	Folder         string
}

// NewHop returns an unsaved hop.
func NewHop(name string, alpha float64) *Hop {
	return &Hop{NamedEntity: newNamed(name), Alpha: alpha, AmountIsWeight: true}
}

var HopTable = &schema.Table{
	Name: "hop",
	Fields: fields(
		nameField(),
		schema.Field{Property: "alpha", Column: "alpha", Type: schema.Double},
		schema.Field{Property: "amount", Column: "amount", Type: schema.Double},
		schema.Field{Property: "amountIsWeight", Column: "amount_is_weight", Type: schema.Bool},
		schema.Field{Property: "notes", Column: "notes", Type: schema.String},
		schema.Field{Property: "type", Column: "htype", Type: schema.Enum, Enum: HopTypes},
		schema.Field{Property: "form", Column: "form", Type: schema.Enum, Enum: HopForms},
		schema.Field{Property: "year", Column: "year", Type: schema.String},
		schema.Field{Property: "origin", Column: "origin", Type: schema.String},
		schema.Field{Property: "substitutes", Column: "substitutes", Type: schema.String},
		folderField(),
	),
}

func hopMapping() objectstore.Mapping[*Hop] {
	return objectstore.Mapping[*Hop]{
		Table: HopTable,
		New: func(b objectstore.Bundle) *Hop {
			return &Hop{
				NamedEntity:    namedFromBundle(b),
				Alpha:          b.Float("alpha"),
				Amount:         b.Float("amount"),
				AmountIsWeight: b.Bool("amountIsWeight"),
				Notes:          b.String("notes"),
				Type:           HopType(b.Int("type")),
				Form:           HopForm(b.Int("form")),
				Year:           b.String("year"),
				Origin:         b.String("origin"),
				Substitutes:    b.String("substitutes"),
				Folder:         b.String(PropFolder),
			}
		},
		Fields: withNamed(map[string]func(*Hop) any{
			"alpha":          func(h *Hop) any { return h.Alpha },
			"amount":         func(h *Hop) any { return h.Amount },
			"amountIsWeight": func(h *Hop) any { return h.AmountIsWeight },
			"notes":          func(h *Hop) any { return h.Notes },
			"type":           func(h *Hop) any { return int(h.Type) },
			"form":           func(h *Hop) any { return int(h.Form) },
			"year":           func(h *Hop) any { return h.Year },
			"origin":         func(h *Hop) any { return h.Origin },
			"substitutes":    func(h *Hop) any { return h.Substitutes },
			PropFolder:       func(h *Hop) any { return h.Folder },
		}),
	}
}
