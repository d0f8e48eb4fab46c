package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-detector/internal/ml"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ml.Sample
		wantErr bool
	}{
		{
			name:  "basic",
			input: "text,label\nhello there,0\nAs an AI language model,1\n",
			want: []ml.Sample{
				{Text: "hello there", Label: 0},
				{Text: "As an AI language model", Label: 1},
			},
		},
		{
			name:  "quoted multi-line text and reordered columns",
			input: "label,text,source\n1,\"first line,\nsecond line\",web\n",
			want: []ml.Sample{
				{Text: "first line,\nsecond line", Label: 1},
			},
		},
		{
			name:  "byte order mark and padded label",
			input: "\ufeffText,Label\n你知道嗎？, 0 \n",
			want: []ml.Sample{
				{Text: "你知道嗎？", Label: 0},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:    "missing label column",
			input:   "text,kind\nhello,human\n",
			wantErr: true,
		},
		{
			name:    "non-numeric label",
			input:   "text,label\nhello,human\n",
			wantErr: true,
		},
		{
			name:    "short record",
			input:   "text,label\nhello\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadCSV() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ml.Sample
		wantErr bool
	}{
		{
			name:  "grouped strings",
			input: `{"human": ["I saw a crow today."], "ai": ["Artificial intelligence represents a paradigm shift."]}`,
			want: []ml.Sample{
				{Text: "I saw a crow today.", Label: 0},
				{Text: "Artificial intelligence represents a paradigm shift.", Label: 1},
			},
		},
		{
			name:  "grouped objects",
			input: `{"human": [{"text": "a", "label": 0}], "ai": [{"text": "b", "label": 1}, {"text": "c"}]}`,
			want: []ml.Sample{
				{Text: "a", Label: 0},
				{Text: "b", Label: 1},
				{Text: "c", Label: 1},
			},
		},
		{
			name:  "object label wins over group",
			input: `{"human": [{"text": "odd", "label": 1}]}`,
			want: []ml.Sample{
				{Text: "odd", Label: 1},
			},
		},
		{
			name:  "flat array",
			input: `[{"text": "x", "label": 1}, {"text": "y", "label": 0}]`,
			want: []ml.Sample{
				{Text: "x", Label: 1},
				{Text: "y", Label: 0},
			},
		},
		{
			name:    "flat array without label",
			input:   `[{"text": "x"}]`,
			wantErr: true,
		},
		{
			name:    "malformed",
			input:   `{"human": [`,
			wantErr: true,
		},
		{
			name:  "empty",
			input: "  ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadJSON(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ReadJSON() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("text,label\nhi,0\nhello,1\n"), 0o644))
	samples, err := Load(csvPath)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	jsonPath := filepath.Join(dir, "train.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"human":["a","b"],"ai":["c"]}`), 0o644))
	samples, err = Load(jsonPath)
	require.NoError(t, err)
	human, ai := Counts(samples)
	assert.Equal(t, 2, human)
	assert.Equal(t, 1, ai)

	txtPath := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("whatever"), 0o644))
	_, err = Load(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCounts(t *testing.T) {
	human, ai := Counts([]ml.Sample{{Label: 0}, {Label: 1}, {Label: 1}, {Label: 7}})
	assert.Equal(t, 1, human)
	assert.Equal(t, 2, ai)
}
