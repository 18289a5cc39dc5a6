package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a named list of edit steps.
type Scenario struct {
	// Name identifies the scenario and its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Steps run in order against a fresh factory.
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one operation. Which fields apply depends on Op; see the package
// documentation.
type Step struct {
	Op string `yaml:"op" json:"op"`

	// Item is the object the step acts on.
	Item string `yaml:"item,omitempty" json:"item,omitempty"`

	// Items lists the keys created by a create step.
	Items []string `yaml:"items,omitempty" json:"items,omitempty"`

	// Prop names a property of Item.
	Prop string `yaml:"prop,omitempty" json:"prop,omitempty"`

	// Value is the new value for set, or the expected rendering for expect.
	Value *string `yaml:"value,omitempty" json:"value,omitempty"`

	// Target is the member for link and remove, or the referent for ref.
	Target string `yaml:"target,omitempty" json:"target,omitempty"`

	// Before positions a link in front of this member of the list.
	Before string `yaml:"before,omitempty" json:"before,omitempty"`

	// Front links at the front of the list.
	Front bool `yaml:"front,omitempty" json:"front,omitempty"`

	// Panics is the precondition code the step must fail with.
	Panics string `yaml:"panics,omitempty" json:"panics,omitempty"`

	// Expectations, checked only by expect steps.
	Status    string   `yaml:"status,omitempty" json:"status,omitempty"`
	Events    []string `yaml:"events,omitempty" json:"events,omitempty"`
	UndoDepth *int     `yaml:"undo_depth,omitempty" json:"undo_depth,omitempty"`
	RedoDepth *int     `yaml:"redo_depth,omitempty" json:"redo_depth,omitempty"`
	Staged    *int     `yaml:"staged,omitempty" json:"staged,omitempty"`
	Live      *int     `yaml:"live,omitempty" json:"live,omitempty"`
}

// Step operations.
const (
	OpCreate  = "create"
	OpSet     = "set"
	OpLink    = "link"
	OpUnlink  = "unlink"
	OpRemove  = "remove"
	OpClear   = "clear"
	OpRef     = "ref"
	OpDestroy = "destroy"
	OpCommit  = "commit"
	OpUnstage = "unstage"
	OpUndo    = "undo"
	OpRedo    = "redo"
	OpReset   = "reset"
	OpExpect  = "expect"
)

// LoadScenario reads, decodes and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document. Unknown fields
// are rejected, then the document is checked against the CUE schema and
// the cross-field rules the schema does not express.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks the rules that depend on more than one field.
func validateScenario(s *Scenario) error {
	var errs []error
	for i, step := range s.Steps {
		if step.Op != OpExpect {
			continue
		}
		if step.Value != nil && (step.Item == "" || step.Prop == "") {
			errs = append(errs, fmt.Errorf("steps[%d]: expect value requires item and prop", i))
		}
		if step.Status != "" && step.Item == "" {
			errs = append(errs, fmt.Errorf("steps[%d]: expect status requires item", i))
		}
		if step.Prop != "" && step.Value == nil {
			errs = append(errs, fmt.Errorf("steps[%d]: expect prop requires value", i))
		}
	}
	return errors.Join(errs...)
}
