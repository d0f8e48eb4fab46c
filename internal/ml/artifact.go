package ml

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed model.schema.json
var modelSchemaJSON []byte

const modelSchemaURL = "model.schema.json"

var modelSchema = compileModelSchema()

func compileModelSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(modelSchemaURL, bytes.NewReader(modelSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add model schema resource: %v", err))
	}
	return compiler.MustCompile(modelSchemaURL)
}

// Encode serializes the model artifact.
func (m *Model) Encode() ([]byte, error) {
	if err := m.validateShape(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}

// Save writes the artifact atomically through a temp file in the target
// directory.
func (m *Model) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// Load reads and validates an artifact from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}
	m, err := Decode(data)
	if err != nil {
		var ce *CorruptModelError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Decode parses an artifact, checking it against the embedded schema and
// then its internal consistency.
func Decode(data []byte) (*Model, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptModelError{Reason: "invalid JSON", Err: err}
	}
	if err := modelSchema.Validate(doc); err != nil {
		return nil, &CorruptModelError{Reason: "schema violation", Err: err}
	}

	m := &Model{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, &CorruptModelError{Reason: "decode failed", Err: err}
	}
	if err := m.validateShape(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) validateShape() error {
	n := len(m.FeatureNames)
	if n == 0 {
		return &CorruptModelError{Reason: "no features"}
	}
	if len(m.Coefficients) != n || len(m.ScalerMean) != n || len(m.ScalerStd) != n {
		return &CorruptModelError{Reason: fmt.Sprintf(
			"length mismatch: %d features, %d coefficients, %d means, %d stds",
			n, len(m.Coefficients), len(m.ScalerMean), len(m.ScalerStd))}
	}
	if !finite(m.Intercept) {
		return &CorruptModelError{Reason: "non-finite intercept"}
	}
	for i := 0; i < n; i++ {
		if !finite(m.Coefficients[i]) || !finite(m.ScalerMean[i]) || !finite(m.ScalerStd[i]) {
			return &CorruptModelError{Reason: fmt.Sprintf("non-finite value for feature %s", m.FeatureNames[i])}
		}
		if m.ScalerStd[i] <= 0 {
			return &CorruptModelError{Reason: fmt.Sprintf("non-positive std for feature %s", m.FeatureNames[i])}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
