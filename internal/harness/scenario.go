package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
)

// Scenario is one recorded edit history and its expected plan.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Base is the collection before the edits.
	Base []any `yaml:"base,omitempty"`

	// BaseSize makes the log sized: only the element count is known.
	// Mutually exclusive with Base.
	BaseSize *int `yaml:"base_size,omitempty"`

	// Strict rejects append/trailing flags that disagree with the index.
	Strict bool `yaml:"strict,omitempty"`

	// NoRestore disables value restoration.
	NoRestore bool `yaml:"no_restore,omitempty"`

	// Strategy is passed to fusion.WithStrategy. Empty means fused.
	Strategy string `yaml:"strategy,omitempty"`

	// PositionBase is the stored position of the first element in the
	// SQL round trip.
	PositionBase int `yaml:"position_base,omitempty"`

	Edits []EditStep `yaml:"edits"`

	Expect *Expect `yaml:"expect,omitempty"`

	// Error is the code a recording or fusion step must fail with.
	Error string `yaml:"error,omitempty"`
}

// EditStep is one recorded edit.
type EditStep struct {
	// Op is add, add_all or remove.
	Op       string `yaml:"op"`
	Index    int    `yaml:"index"`
	Append   bool   `yaml:"append,omitempty"`
	Trailing bool   `yaml:"trailing,omitempty"`
	Value    any    `yaml:"value,omitempty"`
	Values   []any  `yaml:"values,omitempty"`
}

// Expect lists the expected plan. Nil counts are not checked.
type Expect struct {
	Remove   *int   `yaml:"remove,omitempty"`
	Add      *int   `yaml:"add,omitempty"`
	Update   *int   `yaml:"update,omitempty"`
	Final    []any  `yaml:"final,omitempty"`
	Strategy string `yaml:"strategy,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.BaseSize != nil {
		if len(s.Base) > 0 {
			return fmt.Errorf("base and base_size are mutually exclusive")
		}
		if *s.BaseSize < 0 {
			return fmt.Errorf("base_size must be non-negative")
		}
	}

	if s.Expect == nil && s.Error == "" {
		return fmt.Errorf("one of expect or error is required")
	}
	if s.Expect != nil && s.Error != "" {
		return fmt.Errorf("expect and error are mutually exclusive")
	}

	if s.Strategy != "" && !fusion.ValidStrategies[fusion.Strategy(s.Strategy)] {
		return fmt.Errorf("unknown strategy %q", s.Strategy)
	}

	if !ir.ValidPositionBases[s.PositionBase] {
		return fmt.Errorf("position_base must be 0 or 1")
	}

	for i, step := range s.Edits {
		if err := validateEditStep(i, &step); err != nil {
			return err
		}
	}

	return nil
}

func validateEditStep(index int, step *EditStep) error {
	switch edit.Kind(step.Op) {
	case edit.KindAdd:
		if step.Trailing {
			return fmt.Errorf("edits[%d]: trailing is only valid for remove", index)
		}
		if step.Values != nil {
			return fmt.Errorf("edits[%d]: add takes value, not values", index)
		}
	case edit.KindAddAll:
		if step.Trailing {
			return fmt.Errorf("edits[%d]: trailing is only valid for remove", index)
		}
		if step.Value != nil {
			return fmt.Errorf("edits[%d]: add_all takes values, not value", index)
		}
	case edit.KindRemove:
		if step.Append {
			return fmt.Errorf("edits[%d]: append is not valid for remove", index)
		}
		if step.Value != nil || step.Values != nil {
			return fmt.Errorf("edits[%d]: remove takes no value", index)
		}
	case "":
		return fmt.Errorf("edits[%d]: op is required", index)
	default:
		return fmt.Errorf("edits[%d]: unknown op %q", index, step.Op)
	}
	return nil
}

// toEdit converts the step to a typed edit.
func (step EditStep) toEdit() (edit.Edit, error) {
	switch edit.Kind(step.Op) {
	case edit.KindAdd:
		v, err := ir.FromAny(step.Value)
		if err != nil {
			return nil, err
		}
		return edit.Add{Index: step.Index, Append: step.Append, Value: v}, nil
	case edit.KindAddAll:
		vs, err := toValues(step.Values)
		if err != nil {
			return nil, err
		}
		return edit.AddAll{Index: step.Index, Append: step.Append, Values: vs}, nil
	case edit.KindRemove:
		return edit.Remove{Index: step.Index, Trailing: step.Trailing}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// BaseValues returns the base list and whether its values are known.
// Sized scenarios get placeholder values o1..on.
func (s *Scenario) BaseValues() ([]ir.IRValue, bool, error) {
	return scenarioBase(s)
}

// Replay performs the scenario's edits on list through its mutating
// methods, so the list and its log change together.
func (s *Scenario) Replay(list *edit.RecordingList) error {
	for i, step := range s.Edits {
		e, err := step.toEdit()
		if err != nil {
			return fmt.Errorf("edits[%d]: %w", i, err)
		}
		switch e := e.(type) {
		case edit.Add:
			err = list.Insert(e.Index, e.Value)
		case edit.AddAll:
			err = list.InsertAll(e.Index, e.Values...)
		case edit.Remove:
			_, err = list.RemoveAt(e.Index)
		}
		if err != nil {
			return fmt.Errorf("edits[%d]: %w", i, err)
		}
	}
	return nil
}

func toValues(raw []any) ([]ir.IRValue, error) {
	out := make([]ir.IRValue, len(raw))
	for i, r := range raw {
		v, err := ir.FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
