// Copyright 2026 The Faultline Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLOutput is an embeddable struct that adds --yaml output support to
// a command's parameter struct, mirroring [JSONOutput]. Commands that
// embed both let the user pick either encoding; the Emit methods are
// checked in sequence and at most one fires.
type YAMLOutput struct {
	OutputYAML bool `json:"-" flag:"yaml" desc:"output as YAML"`
}

// EmitYAML writes result as YAML to stdout if --yaml is set. Returns
// (true, nil) on success, (true, err) on write failure, or (false, nil)
// when --yaml is not set and the caller should proceed with the next
// output mode.
func (y *YAMLOutput) EmitYAML(result any) (bool, error) {
	if !y.OutputYAML {
		return false, nil
	}
	return true, WriteYAML(normalizeNilSlice(result))
}

// WriteYAML marshals value as YAML and writes it to stdout. The value
// is round-tripped through its JSON encoding first so --yaml and
// --json output carry identical field names.
func WriteYAML(value any) error {
	data, err := marshalYAML(value)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func marshalYAML(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}
