package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/market-basket/internal/common"
	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/testutil"
)

func itemLists(transactions []model.Transaction) [][]string {
	out := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		out = append(out, txn.Items)
	}
	return out
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		want    [][]string
	}{
		{
			name:    "one item per field",
			input:   "milk,bread\nbread\n",
			wantIDs: []string{"1", "2"},
			want:    [][]string{{"bread", "milk"}, {"bread"}},
		},
		{
			name:    "header with ids and packed items",
			input:   "id,items\nA7,milk;bread;milk\nB2, eggs\n",
			wantIDs: []string{"A7", "B2"},
			want:    [][]string{{"bread", "milk"}, {"eggs"}},
		},
		{
			name:    "trims labels around separators",
			input:   "a ; a,b \n",
			wantIDs: []string{"1"},
			want:    [][]string{{"a", "b"}},
		},
		{
			name:    "quoted field",
			input:   "\"rice, basmati\",tea\n",
			wantIDs: []string{"1"},
			want:    [][]string{{"rice, basmati", "tea"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemLists(got))

			ids := make([]string, 0, len(got))
			for _, txn := range got {
				ids = append(ids, txn.ID)
			}
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, ids)
			}
		})
	}
}

func TestReadCSV_Groceries(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(testutil.GroceriesCSV))
	require.NoError(t, err)
	assert.Equal(t, testutil.Groceries(), got)
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("milk,\"bread\n"))
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	input := `[
		["dounai", "woju"],
		{"id": "x", "items": ["niaobu", "woju"]},
		{"items": ["putaojiu"]}
	]`

	got, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "x", got[1].ID)
	assert.Equal(t, "3", got[2].ID)
	assert.Equal(t, [][]string{{"dounai", "woju"}, {"niaobu", "woju"}, {"putaojiu"}}, itemLists(got))

	_, err = ReadJSON(strings.NewReader(`{"items": []}`))
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`[["a"], 3]`))
	assert.Error(t, err)
}

func TestReadJSON_TrimsLabels(t *testing.T) {
	got, err := ReadJSON(strings.NewReader(`[[" milk", "milk ", "  "], {"id": " 7 ", "items": ["tea "]}]`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"milk"}, {"tea"}}, itemLists(got))
	assert.Equal(t, "7", got[1].ID)
}

func TestReadYAML(t *testing.T) {
	input := `
- [dounai, woju]
- id: x
  items: [niaobu, woju]
- - putaojiu
`
	got, err := ReadYAML(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "x", got[1].ID)
	assert.Equal(t, [][]string{{"dounai", "woju"}, {"niaobu", "woju"}, {"putaojiu"}}, itemLists(got))

	got, err = ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadYAML(strings.NewReader("baskets: 3\n"))
	assert.Error(t, err)

	_, err = ReadYAML(strings.NewReader("- 3\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"baskets.csv":  testutil.GroceriesCSV,
		"baskets.json": `[["dounai","woju"],["woju","niaobu","putaojiu","tiancai"],["dounai","niaobu","putaojiu","chengzhi"],["woju","dounai","niaobu","putaojiu"],["woju","dounai","niaobu","chengzhi"]]`,
		"baskets.YML":  "- [dounai, woju]\n- [woju, niaobu, putaojiu, tiancai]\n- [dounai, niaobu, putaojiu, chengzhi]\n- [woju, dounai, niaobu, putaojiu]\n- [woju, dounai, niaobu, chengzhi]\n",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, itemLists(testutil.Groceries()), itemLists(got), name)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("baskets.parquet")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader(""), Format("xml"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
