// Package dataset loads labeled training corpora from CSV or JSON files.
//
// CSV files carry a "text,label" header. JSON files are either an object
// {"human": [...], "ai": [...]} whose entries are plain strings or
// {"text","label"} objects, or a plain array of {"text","label"} objects.
// Label 0 is human, 1 is AI.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ai-detector/internal/ml"
)

const (
	LabelHuman = 0
	LabelAI    = 1
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .json.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Load reads a dataset file, choosing the decoder by extension.
func Load(path string) ([]ml.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var samples []ml.Sample
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		samples, err = ReadCSV(f)
	case ".json":
		samples, err = ReadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}

	human, ai := Counts(samples)
	log.Info().
		Str("path", path).
		Int("samples", len(samples)).
		Int("human", human).
		Int("ai", ai).
		Msg("Dataset loaded")

	return samples, nil
}

// ReadCSV decodes a "text,label" CSV stream. Extra columns are ignored.
func ReadCSV(r io.Reader) ([]ml.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("header must contain text and label columns, got %v", header)
	}

	var samples []ml.Sample
	for rec := 1; ; rec++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if textCol >= len(record) || labelCol >= len(record) {
			return nil, fmt.Errorf("record %d: expected at least %d fields, got %d", rec, max(textCol, labelCol)+1, len(record))
		}

		label, err := strconv.Atoi(strings.TrimSpace(record[labelCol]))
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid label %q: %w", rec, record[labelCol], err)
		}
		samples = append(samples, ml.Sample{Text: record[textCol], Label: label})
	}

	return samples, nil
}

type entry struct {
	Text  string `json:"text"`
	Label *int   `json:"label"`
}

// UnmarshalJSON accepts a bare string as well as an object.
func (e *entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Text)
	}
	type plain entry
	return json.Unmarshal(data, (*plain)(e))
}

type grouped struct {
	Human []entry `json:"human"`
	AI    []entry `json:"ai"`
}

// ReadJSON decodes the grouped object form or the flat array form.
func ReadJSON(r io.Reader) ([]ml.Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var entries []entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		samples := make([]ml.Sample, 0, len(entries))
		for i, e := range entries {
			if e.Label == nil {
				return nil, fmt.Errorf("entry %d: missing label", i)
			}
			samples = append(samples, ml.Sample{Text: e.Text, Label: *e.Label})
		}
		return samples, nil
	}

	var g grouped
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	samples := make([]ml.Sample, 0, len(g.Human)+len(g.AI))
	samples = appendGroup(samples, g.Human, LabelHuman)
	samples = appendGroup(samples, g.AI, LabelAI)
	return samples, nil
}

// appendGroup labels entries with the group label unless they carry their own.
func appendGroup(samples []ml.Sample, entries []entry, label int) []ml.Sample {
	for _, e := range entries {
		l := label
		if e.Label != nil {
			l = *e.Label
		}
		samples = append(samples, ml.Sample{Text: e.Text, Label: l})
	}
	return samples
}

// Counts returns the number of human and AI samples.
func Counts(samples []ml.Sample) (human, ai int) {
	for _, s := range samples {
		switch s.Label {
		case LabelHuman:
			human++
		case LabelAI:
			ai++
		}
	}
	return human, ai
}
