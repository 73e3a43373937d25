// Copyright 2025 Philipp Hossner
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mapper

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"hiero-solo/pkg/data/plain"
)

// ToModel binds a plain document to out, a pointer to a struct with yaml
// tags.
func ToModel(obj map[string]any, out any) error {
	data, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return &ConfigurationError{Key: "", Message: fmt.Sprintf("cannot bind document to %T", out), Err: err}
	}
	return nil
}

// FromModel converts a struct with yaml tags into a plain document.
func FromModel(model any) (map[string]any, error) {
	if model == nil {
		return nil, fmt.Errorf("model must not be nil")
	}

	data, err := yaml.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model %T: %w", model, err)
	}

	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode model %T: %w", model, err)
	}
	if out == nil {
		out = map[string]any{}
	}

	obj, _ := plain.Normalize(out).(map[string]any)
	return obj, nil
}
