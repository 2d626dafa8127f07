package table

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWorkbook zips a minimal two-sheet workbook. The second sheet's
// relationship target uses a leading slash, which some writers emit.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	parts := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="Notes" sheetId="1" r:id="rId1"/><sheet name="Polls" sheetId="2" r:id="rId2"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>
<Relationship Id="rId2" Type="worksheet" Target="/xl/worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<si><t>candidate</t></si><si><t>pct</t></si><si><t>Clinton</t></si><si><r><t>Tru</t></r><r><t>mp</t></r></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>note</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>hello</t></is></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>44.5</v></c></row>
<row r="3"><c r="A3" t="s"><v>3</v></c></row>
<row r="4"><c r="B4"><v>40</v></c></row>
</sheetData></worksheet>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadXLSXSheetSelection(t *testing.T) {
	data := buildWorkbook(t)

	byName, err := ReadXLSX(data, "polls", 0, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate", "pct"}, byName.Columns())
	require.Equal(t, 3, byName.Len())

	cand, _ := byName.Value(1, "candidate")
	assert.Equal(t, "Trump", cand.String(), "rich text runs are joined")
	pct, _ := byName.Value(0, "pct")
	assert.True(t, pct.Equal(Num(44.5)))
	pct, _ = byName.Value(1, "pct")
	assert.True(t, pct.IsNull(), "missing cell")
	cand, _ = byName.Value(2, "candidate")
	assert.True(t, cand.IsNull(), "leading gap")

	byIndex, err := ReadXLSX(data, "", 2, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, byName.Columns(), byIndex.Columns())

	first, err := ReadXLSX(data, "", 0, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, first.Columns())
}

func TestReadXLSXMissingSheet(t *testing.T) {
	_, err := ReadXLSX(buildWorkbook(t), "Budget", 0, ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available sheets: Notes, Polls")
}

func TestReadXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polls.xlsx")
	require.NoError(t, os.WriteFile(path, buildWorkbook(t), 0o644))

	tab, err := ReadXLSXFile(path, "Polls", 0, ReadOptions{MaxRows: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, tab.Len())

	_, err = ReadXLSXFile(path, "Nope", 0, ReadOptions{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "polls.xlsx: "))
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"styles.xml", "xl/styles.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.input); got != tt.expected {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	for ref, want := range map[string]int{"A1": 0, "c12": 2, "AA3": 26, "7": -1} {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
