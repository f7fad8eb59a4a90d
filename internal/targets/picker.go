package targets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrPickCancelled reports that the user (or a batch context) declined to
// choose a compile target.
var ErrPickCancelled = errors.New("target selection cancelled")

// Picker chooses compile targets when the mapping and the include graph
// are not enough. Keeping it behind an interface keeps the resolver's
// graph logic host-agnostic.
type Picker interface {
	// Pick selects zero or more targets from candidates. An empty
	// candidate list means no root was inferred at all and the picker
	// may ask for a path outright.
	Pick(header string, candidates []string) ([]string, error)
}

// AutoFailPicker is the batch implementation: it never prompts.
type AutoFailPicker struct{}

func (AutoFailPicker) Pick(string, []string) ([]string, error) {
	return nil, ErrPickCancelled
}

// TTYPicker prompts on the terminal with a multi-select form.
type TTYPicker struct{}

func (TTYPicker) Pick(header string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		var entered string
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("No compile target found for %s", header)).
				Description("Enter the path of the root file to compile").
				Value(&entered),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, ErrPickCancelled
			}
			return nil, err
		}
		entered = strings.TrimSpace(entered)
		if entered == "" {
			return nil, ErrPickCancelled
		}
		return []string{entered}, nil
	}

	var picked []string
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title(fmt.Sprintf("Compile targets for %s", header)).
			Options(huh.NewOptions(candidates...)...).
			Value(&picked),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrPickCancelled
		}
		return nil, err
	}
	if len(picked) == 0 {
		return nil, ErrPickCancelled
	}
	return picked, nil
}
