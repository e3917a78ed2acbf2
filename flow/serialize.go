package flow

import "encoding/json"

// Marshal serialises a Flow to JSON.
func Marshal(f *Flow) ([]byte, error) {
	return json.Marshal(f)
}

// Unmarshal deserialises a Flow from JSON.
func Unmarshal(data []byte) (*Flow, error) {
	var f Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// MarshalSteps serialises a step slice to JSON.
func MarshalSteps(steps []Step) ([]byte, error) {
	return json.Marshal(steps)
}

// UnmarshalSteps deserialises a step slice from JSON.
func UnmarshalSteps(data []byte) ([]Step, error) {
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// FillString returns the fill value as a string, for values recorded from
// text inputs, selects, and file/password placeholders.
func (s *Step) FillString() (string, bool) {
	v, ok := s.Value.(string)
	return v, ok
}

// FillBool returns the fill value as a bool, for checkbox/radio fills.
// JSON decoding preserves booleans, so both in-process and round-tripped
// steps answer consistently.
func (s *Step) FillBool() (bool, bool) {
	v, ok := s.Value.(bool)
	return v, ok
}
