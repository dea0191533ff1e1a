package model

import (
	"github.com/roach88/brewdb/internal/objectstore"
	"github.com/roach88/brewdb/internal/schema"
)

// Equipment is a brewing system profile. Volumes are litres, times minutes.
type Equipment struct {
	NamedEntity
	BoilSize    float64
	BatchSize   float64
	KettleTopUp float64
	BoilTime    float64
	Folder      string
}

func NewEquipment(name string) *Equipment {
	return &Equipment{NamedEntity: newNamed(name)}
}

var EquipmentTable = &schema.Table{
	Name: "equipment",
	Fields: fields(
		nameField(),
		schema.Field{Property: "boilSize", Column: "boil_size", Type: schema.Double},
		schema.Field{Property: "batchSize", Column: "batch_size", Type: schema.Double},
		schema.Field{Property: "kettleTopUp", Column: "kettle_top_up", Type: schema.Double},
		schema.Field{Property: "boilTime", Column: "boil_time", Type: schema.Double},
		folderField(),
	),
}

func equipmentMapping() objectstore.Mapping[*Equipment] {
	return objectstore.Mapping[*Equipment]{
		Table: EquipmentTable,
		New: func(b objectstore.Bundle) *Equipment {
			return &Equipment{
				NamedEntity: namedFromBundle(b),
				BoilSize:    b.Float("boilSize"),
				BatchSize:   b.Float("batchSize"),
				KettleTopUp: b.Float("kettleTopUp"),
				BoilTime:    b.Float("boilTime"),
				Folder:      b.String(PropFolder),
			}
		},
		Fields: withNamed(map[string]func(*Equipment) any{
			"boilSize":    func(e *Equipment) any { return e.BoilSize },
			"batchSize":   func(e *Equipment) any { return e.BatchSize },
			"kettleTopUp": func(e *Equipment) any { return e.KettleTopUp },
			"boilTime":    func(e *Equipment) any { return e.BoilTime },
			PropFolder:    func(e *Equipment) any { return e.Folder },
		}),
	}
}
