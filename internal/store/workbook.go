package store

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// workbookFile mirrors a workbook TOML file:
//
//	[cells]
//	A1 = 5
//	A2 = "=A1*2"
//
//	[labels]
//	Total = "A2"
type workbookFile struct {
	Cells  map[string]any    `toml:"cells"`
	Labels map[string]string `toml:"labels"`
}

// LoadWorkbook reads a workbook file into a new Memory store.
func LoadWorkbook(path string) (*Memory, error) {
	var wb workbookFile
	meta, err := toml.DecodeFile(path, &wb)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	m, err := fromWorkbook(wb, meta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeWorkbook builds a store from workbook TOML text.
func DecodeWorkbook(data string) (*Memory, error) {
	var wb workbookFile
	meta, err := toml.Decode(data, &wb)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return fromWorkbook(wb, meta)
}

func fromWorkbook(wb workbookFile, meta toml.MetaData) (*Memory, error) {
	if !meta.IsDefined("cells") {
		return nil, fmt.Errorf("missing [cells]")
	}
	m := NewMemory()
	// Sorted for stable error messages.
	keys := make([]string, 0, len(wb.Cells))
	for k := range wb.Cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ref, err := reference.ParseCell(k)
		if err != nil {
			return nil, fmt.Errorf("[cells].%s: %w", k, err)
		}
		c := Cell{Reference: ref}
		if s, ok := wb.Cells[k].(string); ok {
			c.Formula = s
		} else {
			v, err := value.FromGo(wb.Cells[k])
			if err != nil {
				return nil, fmt.Errorf("[cells].%s: %w", k, err)
			}
			c.Value, c.HasValue = v, true
		}
		m.SaveCell(c)
	}
	for name, target := range wb.Labels {
		if !reference.IsName(name) {
			return nil, fmt.Errorf("[labels].%s is not a valid label name", name)
		}
		ref, err := reference.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("[labels].%s: %w", name, err)
		}
		m.SaveLabel(LabelMapping{Label: reference.LabelName(name), Target: ref})
	}
	return m, nil
}
