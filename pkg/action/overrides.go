package action

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Overrides selects the fields Clone replaces. A nil field keeps the
// receiver's value; a non-nil field is used even when empty, and then fails
// validation like any other construction input.
type Overrides struct {
	Name    *string
	Service *string
	Action  *Invocable
}

// WithName returns a copy of o that replaces the name.
func (o Overrides) WithName(name string) Overrides {
	o.Name = &name
	return o
}

// WithService returns a copy of o that replaces the service.
func (o Overrides) WithService(service string) Overrides {
	o.Service = &service
	return o
}

// WithAction returns a copy of o that replaces the invocable.
func (o Overrides) WithAction(action Invocable) Overrides {
	o.Action = &action
	return o
}

type overridesInput struct {
	Name    any `mapstructure:"name"`
	Service any `mapstructure:"service"`
	Action  any `mapstructure:"action"`
}

// OverridesFromMap decodes loosely typed overrides keyed by "name",
// "service" and "action". Missing keys and nil values are absent; unknown
// keys fail with ErrValidation and wrong value kinds with ErrType.
func OverridesFromMap(values map[string]any) (Overrides, error) {
	var input overridesInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &input,
	})
	if err != nil {
		return Overrides{}, fmt.Errorf("decode overrides: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return Overrides{}, fmt.Errorf("decode overrides: %w: %v", ErrValidation, err)
	}

	var overrides Overrides
	if input.Name != nil {
		name, ok := input.Name.(string)
		if !ok {
			return Overrides{}, fmt.Errorf("decode overrides: %w", typeError(FieldName, input.Name))
		}
		overrides = overrides.WithName(name)
	}
	if input.Service != nil {
		service, ok := input.Service.(string)
		if !ok {
			return Overrides{}, fmt.Errorf("decode overrides: %w", typeError(FieldService, input.Service))
		}
		overrides = overrides.WithService(service)
	}
	if input.Action != nil {
		fn, ok := invocableOf(input.Action)
		if !ok {
			return Overrides{}, fmt.Errorf("decode overrides: %w", typeError(FieldAction, input.Action))
		}
		overrides = overrides.WithAction(fn)
	}

	return overrides, nil
}
