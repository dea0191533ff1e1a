package model

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/brewdb/internal/database"
	"github.com/roach88/brewdb/internal/objectstore"
)

// Store is the type-independent surface shared by every entity store.
type Store interface {
	TableName() string
	CreateTables(ctx context.Context, q database.Querier) error
	AddTableConstraints(ctx context.Context, q database.Querier) error
	LoadAll(ctx context.Context) error
	Len() int
}

// Registry owns one object store per entity type.
type Registry struct {
	Hops              *objectstore.Store[*Hop]
	Equipment         *objectstore.Store[*Equipment]
	Mashes            *objectstore.Store[*Mash]
	MashSteps         *objectstore.Store[*MashStep]
	Boils             *objectstore.Store[*Boil]
	BoilSteps         *objectstore.Store[*BoilStep]
	Fermentations     *objectstore.Store[*Fermentation]
	FermentationSteps *objectstore.Store[*FermentationStep]
	Instructions      *objectstore.Store[*Instruction]
	Recipes           *objectstore.Store[*Recipe]
	HopAdditions      *objectstore.Store[*RecipeAdditionHop]
}

// NewRegistry builds the stores for db. Nothing is read until LoadAll.
func NewRegistry(db *sql.DB, d database.Dialect) (*Registry, error) {
	r := &Registry{}
	var err error
	if r.Hops, err = objectstore.New(db, d, hopMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Equipment, err = objectstore.New(db, d, equipmentMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Mashes, err = objectstore.New(db, d, mashMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.MashSteps, err = objectstore.New(db, d, mashStepMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Boils, err = objectstore.New(db, d, boilMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.BoilSteps, err = objectstore.New(db, d, boilStepMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Fermentations, err = objectstore.New(db, d, fermentationMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.FermentationSteps, err = objectstore.New(db, d, fermentationStepMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Instructions, err = objectstore.New(db, d, instructionMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.Recipes, err = objectstore.New(db, d, recipeMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if r.HopAdditions, err = objectstore.New(db, d, recipeAdditionHopMapping()); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return r, nil
}

// Stores lists every store, referenced tables before the tables that
// reference them.
func (r *Registry) Stores() []Store {
	return []Store{
		r.Hops,
		r.Equipment,
		r.Instructions,
		r.Mashes,
		r.MashSteps,
		r.Boils,
		r.BoilSteps,
		r.Fermentations,
		r.FermentationSteps,
		r.Recipes,
		r.HopAdditions,
	}
}

// LoadAll fills every store from the database.
func (r *Registry) LoadAll(ctx context.Context) error {
	for _, s := range r.Stores() {
		if err := s.LoadAll(ctx); err != nil {
			return err
		}
	}
	slog.Info("object stores loaded", "hops", r.Hops.Len(), "recipes", r.Recipes.Len())
	return nil
}

// StepsOfMash returns the live steps of a mash ordered by step number.
func (r *Registry) StepsOfMash(mashID int) []*MashStep {
	steps := r.MashSteps.FindAllMatching(func(s *MashStep) bool {
		return s.MashID == mashID && !s.Deleted
	})
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps
}

// StepsOfBoil returns the live steps of a boil ordered by step number.
func (r *Registry) StepsOfBoil(boilID int) []*BoilStep {
	steps := r.BoilSteps.FindAllMatching(func(s *BoilStep) bool {
		return s.BoilID == boilID && !s.Deleted
	})
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps
}

// StepsOfFermentation returns the live steps of a fermentation ordered by
// step number.
func (r *Registry) StepsOfFermentation(fermentationID int) []*FermentationStep {
	steps := r.FermentationSteps.FindAllMatching(func(s *FermentationStep) bool {
		return s.FermentationID == fermentationID && !s.Deleted
	})
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].StepNumber < steps[j].StepNumber })
	return steps
}

// HopAdditionsOf returns the live hop additions of a recipe in key order.
func (r *Registry) HopAdditionsOf(recipeID int) []*RecipeAdditionHop {
	return r.HopAdditions.FindAllMatching(func(a *RecipeAdditionHop) bool {
		return a.RecipeID == recipeID && !a.Deleted
	})
}

// InstructionsOf returns the instructions of a recipe in checklist order.
func (r *Registry) InstructionsOf(recipe *Recipe) []*Instruction {
	return r.Instructions.GetByIDs(recipe.InstructionIDs)
}

// DeleteHop flags a hop deleted and hidden, then evicts it from the cache.
// If the write fails the hop keeps its previous flags.
func (r *Registry) DeleteHop(ctx context.Context, h *Hop) error {
	deleted, display := h.Deleted, h.Display
	h.Deleted = true
	h.Display = false
	if err := r.Hops.Update(ctx, h); err != nil {
		h.Deleted, h.Display = deleted, display
		return fmt.Errorf("delete hop %d: %w", h.Key(), err)
	}
	r.Hops.SoftDelete(h.Key())
	return nil
}
