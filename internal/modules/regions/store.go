// Package regions supplies named RegionalContext parameter bundles. Built-in
// bundles cover the default city plus Malaysia and Thailand presets; a YAML
// file can add or override bundles at startup.
package regions

import (
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mahbubchula/policysim/internal/domain"
	"github.com/mahbubchula/policysim/internal/modules/policy"
)

// Store holds the context catalog, read-only after initialization
type Store struct {
	contexts map[string]domain.RegionalContext
	log      zerolog.Logger
}

// NewStore builds the catalog from the built-in bundles plus the optional
// YAML file at path. An empty path skips file loading; a missing file is an
// error (a configured path is expected to exist).
func NewStore(path string, log zerolog.Logger) (*Store, error) {
	s := &Store{
		contexts: make(map[string]domain.RegionalContext),
		log:      log.With().Str("service", "regions").Logger(),
	}
	for _, ctx := range builtinContexts() {
		s.contexts[ctx.Name] = ctx
	}

	if path != "" {
		if err := s.loadFile(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// contextsFile is the YAML document layout
type contextsFile struct {
	Contexts []domain.RegionalContext `yaml:"contexts"`
}

func (s *Store) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read contexts file: %w", err)
	}

	var file contextsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse contexts file %s: %w", path, err)
	}

	for _, ctx := range file.Contexts {
		if ctx.Name == "" {
			return fmt.Errorf("contexts file %s: context without a name", path)
		}
		if err := validateContext(ctx); err != nil {
			return fmt.Errorf("context %q: %w", ctx.Name, err)
		}
		if len(ctx.BaselineShares) == 0 {
			ctx.BaselineShares = domain.DefaultContext().BaselineShares
		}
		s.contexts[ctx.Name] = ctx
		s.log.Info().Str("context", ctx.Name).Msg("Loaded regional context")
	}
	return nil
}

// Get looks up a context by name; unknown names are a lookup error
func (s *Store) Get(name string) (domain.RegionalContext, error) {
	if name == "" {
		return s.contexts["default"], nil
	}
	ctx, ok := s.contexts[name]
	if !ok {
		return domain.RegionalContext{}, policy.NewValidationError("context", "unknown context %q", name)
	}
	return ctx, nil
}

// List returns all contexts sorted by name
func (s *Store) List() []domain.RegionalContext {
	out := make([]domain.RegionalContext, 0, len(s.contexts))
	for _, ctx := range s.contexts {
		out = append(out, ctx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func validateContext(ctx domain.RegionalContext) error {
	if ctx.Population <= 0 || ctx.DailyTrips <= 0 {
		return fmt.Errorf("population and daily_trips must be positive")
	}
	if len(ctx.BaselineShares) > 0 && !ctx.BaselineShares.IsNormalized() {
		return fmt.Errorf("baseline shares sum to %v, want 1.0", ctx.BaselineShares.Sum())
	}
	return nil
}

func builtinContexts() []domain.RegionalContext {
	def := domain.DefaultContext()

	malaysia := def
	malaysia.Name = "malaysia"
	malaysia.Currency = "MYR"
	malaysia.CurrencySymbol = "RM"
	malaysia.FuelPricePerLiter = 2.05
	malaysia.TransitFare = 3.00
	malaysia.AvgHourlyWage = 15.00

	thailand := def
	thailand.Name = "thailand"
	thailand.Currency = "THB"
	thailand.CurrencySymbol = "฿"
	thailand.FuelPricePerLiter = 40.00
	thailand.TransitFare = 25.00
	thailand.AvgHourlyWage = 100.00

	return []domain.RegionalContext{def, malaysia, thailand}
}
