// Package seed loads startup fixtures of units and calls from a yaml file.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/towops/towops/internal/dispatch"
	"github.com/towops/towops/pkg/model"
)

type UnitFixture struct {
	ID    string  `yaml:"id"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
	Speed float64 `yaml:"speed"`
	Zone  string  `yaml:"zone"`
}

type CallFixture struct {
	ID       string  `yaml:"id"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
	Reason   string  `yaml:"reason"`
	Priority int     `yaml:"priority"`
	Zone     string  `yaml:"zone"`
}

type Fixture struct {
	Units []UnitFixture `yaml:"units"`
	Calls []CallFixture `yaml:"calls"`
}

func Load(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(b)
}

func Parse(b []byte) (*Fixture, error) {
	f := new(Fixture)

	if err := yaml.Unmarshal(b, f); err != nil {
		return nil, fmt.Errorf("bad seed file: %w", err)
	}

	for i, u := range f.Units {
		if u.ID == "" {
			return nil, fmt.Errorf("unit #%d has no id", i)
		}
	}

	for i, c := range f.Calls {
		if c.ID == "" {
			return nil, fmt.Errorf("call #%d has no id", i)
		}
	}

	return f, nil
}

// Apply records units before calls, in file order.
func (f *Fixture) Apply(st *dispatch.State) {
	for _, u := range f.Units {
		st.RecordUnit(model.Unit{
			ID:       u.ID,
			Location: model.NewLocation(u.Lat, u.Lon),
			Speed:    u.Speed,
			Zone:     u.Zone,
		})
	}

	for _, c := range f.Calls {
		st.RecordCall(model.Call{
			ID:       c.ID,
			Location: model.NewLocation(c.Lat, c.Lon),
			Reason:   c.Reason,
			Priority: c.Priority,
			Zone:     c.Zone,
		})
	}

	slog.Info(fmt.Sprintf("seeded %d units, %d calls", len(f.Units), len(f.Calls)), "logger", "seed")
}
