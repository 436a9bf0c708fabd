package output

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type item struct {
	ID   int64  `json:"item_id"`
	Name string `json:"item_name"`
}

type items []item

func (it items) Table() Table {
	t := Table{Headers: []string{"ID", "NAME"}}
	for _, i := range it {
		t.Rows = append(t.Rows, []string{strconv.FormatInt(i.ID, 10), i.Name})
	}
	return t
}

func TestParseFormat(t *testing.T) {
	tcs := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tc := range tcs {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, items{{ID: 1, Name: "Phones"}}))

	require.Equal(t, "ID  NAME\n1   Phones\n", buf.String())
}

func TestWrite_TableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, map[string]int{"a": 1}))

	require.JSONEq(t, `{"a":1}`, buf.String())
}

func TestWrite_JSONUsesJSONTags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, item{ID: 7, Name: "P7"}))

	require.JSONEq(t, `{"item_id":7,"item_name":"P7"}`, buf.String())
}

func TestWrite_YAMLUsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, items{{ID: 7, Name: "true"}}))

	out := buf.String()
	require.Contains(t, out, "item_id: 7")
	require.NotContains(t, out, "{")

	// строка "true" должна остаться строкой.
	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 1)
	require.Equal(t, "true", back[0]["item_name"])
	require.Equal(t, 7, back[0]["item_id"])
}
