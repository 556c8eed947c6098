package boardfile

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// IntPair is a 2-tuple of ints. The authoring tool writes tuples either as
// {"Item1": a, "Item2": b} or as a plain [a, b] list; both are accepted.
type IntPair struct {
	Item1 int `json:"Item1" yaml:"Item1"`
	Item2 int `json:"Item2" yaml:"Item2"`
}

// FloatPair is the float counterpart of IntPair.
type FloatPair struct {
	Item1 float64 `json:"Item1" yaml:"Item1"`
	Item2 float64 `json:"Item2" yaml:"Item2"`
}

func (p *IntPair) UnmarshalJSON(data []byte) error {
	var list []int
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) != 2 {
			return fmt.Errorf("%w: want 2 values, got %d", ErrBadTuple, len(list))
		}
		p.Item1, p.Item2 = list[0], list[1]
		return nil
	}
	type plain IntPair
	return json.Unmarshal(data, (*plain)(p))
}

func (p *FloatPair) UnmarshalJSON(data []byte) error {
	var list []float64
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) != 2 {
			return fmt.Errorf("%w: want 2 values, got %d", ErrBadTuple, len(list))
		}
		p.Item1, p.Item2 = list[0], list[1]
		return nil
	}
	type plain FloatPair
	return json.Unmarshal(data, (*plain)(p))
}

func (p *IntPair) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []int
		if err := node.Decode(&list); err != nil {
			return err
		}
		if len(list) != 2 {
			return fmt.Errorf("%w: want 2 values, got %d", ErrBadTuple, len(list))
		}
		p.Item1, p.Item2 = list[0], list[1]
		return nil
	}
	type plain IntPair
	return node.Decode((*plain)(p))
}

func (p *FloatPair) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []float64
		if err := node.Decode(&list); err != nil {
			return err
		}
		if len(list) != 2 {
			return fmt.Errorf("%w: want 2 values, got %d", ErrBadTuple, len(list))
		}
		p.Item1, p.Item2 = list[0], list[1]
		return nil
	}
	type plain FloatPair
	return node.Decode((*plain)(p))
}
