package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/brewdb/internal/model"
)

// HopView is the listed form of a hop.
type HopView struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Alpha  float64 `json:"alpha"`
	Type   string  `json:"type"`
	Form   string  `json:"form"`
	Origin string  `json:"origin,omitempty"`
}

func viewOf(h *model.Hop) HopView {
	return HopView{
		ID:     h.Key(),
		Name:   h.Name,
		Alpha:  h.Alpha,
		Type:   h.Type.String(),
		Form:   h.Form.String(),
		Origin: h.Origin,
	}
}

// HopList renders as one line per hop in text mode.
type HopList []HopView

func (l HopList) String() string {
	if len(l) == 0 {
		return "No hops"
	}
	var sb strings.Builder
	for _, h := range l {
		fmt.Fprintf(&sb, "%4d  %-24s %5.1f%%  %-16s %s\n", h.ID, h.Name, h.Alpha, h.Type, h.Form)
	}
	return sb.String()
}

// NewHopsCommand creates the hops command group.
func NewHopsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hops",
		Short: "List and edit the hop library",
	}
	cmd.AddCommand(newHopsListCommand(rootOpts))
	cmd.AddCommand(newHopsAddCommand(rootOpts))
	cmd.AddCommand(newHopsDeleteCommand(rootOpts))
	return cmd
}

func newHopsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List hops in name order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			s, err := openLoaded(commandContext(cmd), rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeSchema, "failed to open database", err)
			}
			defer s.Close()

			hops := s.registry.Hops.FindAllMatching(func(h *model.Hop) bool {
				return h.Display && !h.Deleted
			})
			sort.SliceStable(hops, func(i, j int) bool { return hops[i].Name < hops[j].Name })

			list := make(HopList, 0, len(hops))
			for _, h := range hops {
				list = append(list, viewOf(h))
			}
			return formatter.Success(list)
		},
	}
}

type hopsAddOptions struct {
	alpha  float64
	form   string
	typ    string
	origin string
}

func newHopsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &hopsAddOptions{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a hop to the library",
		Example: `  brewdb hops add Cascade --alpha 5.5 --type aroma
  brewdb hops add "East Kent Goldings" --alpha 5 --form leaf --origin UK`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			form, ok := model.HopForms.Value(opts.form)
			if !ok {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("unknown hop form %q", opts.form), nil)
			}
			typ, ok := model.HopTypes.Value(opts.typ)
			if !ok {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("unknown hop type %q", opts.typ), nil)
			}

			ctx := commandContext(cmd)
			s, err := openLoaded(ctx, rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeSchema, "failed to open database", err)
			}
			defer s.Close()

			h := model.NewHop(args[0], opts.alpha)
			h.Form = model.HopForm(form)
			h.Type = model.HopType(typ)
			h.Origin = opts.origin
			if _, err := s.registry.Hops.Insert(ctx, h); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "failed to add hop", err)
			}
			formatter.VerboseLog("Inserted hop %d", h.Key())
			return formatter.Success(HopList{viewOf(h)})
		},
	}

	cmd.Flags().Float64Var(&opts.alpha, "alpha", 0, "alpha acid percentage")
	cmd.Flags().StringVar(&opts.form, "form", "pellet", "pellet, plug, leaf or extract")
	cmd.Flags().StringVar(&opts.typ, "type", "bittering", "bittering, aroma or aroma/bittering")
	cmd.Flags().StringVar(&opts.origin, "origin", "", "country of origin")

	return cmd
}

func newHopsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Mark a hop deleted and hide it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, fmt.Sprintf("invalid hop id %q", args[0]), err)
			}

			ctx := commandContext(cmd)
			s, err := openLoaded(ctx, rootOpts)
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeSchema, "failed to open database", err)
			}
			defer s.Close()

			h, ok := s.registry.Hops.GetByID(id)
			if !ok {
				return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("hop %d not found", id), nil)
			}
			if err := s.registry.DeleteHop(ctx, h); err != nil {
				return formatter.Fail(ExitFailure, ErrCodeWriteFailed, "failed to delete hop", err)
			}
			return formatter.Success(fmt.Sprintf("✓ Hop %d deleted", id))
		},
	}
}
