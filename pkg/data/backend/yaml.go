package backend

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"hiero-solo/pkg/data/plain"
)

// decodeObject parses YAML bytes into a plain document.
func decodeObject(key string, data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, &StorageBackendError{Operation: OperationReadObject, Key: key, Message: "data is empty for key"}
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &StorageBackendError{Operation: OperationReadObject, Key: key, Message: "error parsing yaml from key", Err: err}
	}
	if raw == nil {
		return nil, &StorageBackendError{Operation: OperationReadObject, Key: key, Message: "data is empty for key"}
	}

	obj, ok := plain.Normalize(raw).(map[string]any)
	if !ok {
		return nil, &StorageBackendError{
			Operation: OperationReadObject,
			Key:       key,
			Message:   fmt.Sprintf("expected a mapping but found %T for key", raw),
		}
	}
	return obj, nil
}

// encodeObject renders a plain document as YAML.
func encodeObject(key string, obj map[string]any) ([]byte, error) {
	if obj == nil {
		return nil, &IllegalArgumentError{Message: "data must not be nil"}
	}

	data, err := yaml.Marshal(obj)
	if err != nil {
		return nil, &StorageBackendError{Operation: OperationWriteObject, Key: key, Message: "error encoding yaml for key", Err: err}
	}
	return data, nil
}
