package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/vmihailenco/msgpack/v5"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// Current schema version - increment when the snapshot format changes
const snapshotSchemaVersion uint16 = 1

// ErrSnapshotSchema reports a snapshot written by an incompatible version.
var ErrSnapshotSchema = errors.New("snapshot schema mismatch")

// Snapshot is the msgpack form of a recalculated workbook.
type Snapshot struct {
	Schema uint16
	Cells  []SnapshotCell
	Labels []SnapshotLabel
}

type SnapshotCell struct {
	Column   int
	Row      int
	Formula  string
	HasValue bool
	Value    SnapshotValue
}

type SnapshotLabel struct {
	Name   string
	Target string
}

// Value kinds stored in a snapshot.
const (
	snapEmpty uint8 = iota
	snapNumber
	snapText
	snapBool
	snapError
	snapDate
	snapTime
	snapDateTime
	snapList
)

// SnapshotValue is a tagged union of formula values.
type SnapshotValue struct {
	Kind uint8
	Num  float64         `msgpack:",omitempty"`
	Text string          `msgpack:",omitempty"`
	Bool bool            `msgpack:",omitempty"`
	List []SnapshotValue `msgpack:",omitempty"`
}

func encodeValue(v any) (SnapshotValue, error) {
	switch x := v.(type) {
	case nil:
		return SnapshotValue{Kind: snapEmpty}, nil
	case float64:
		return SnapshotValue{Kind: snapNumber, Num: x}, nil
	case string:
		return SnapshotValue{Kind: snapText, Text: x}, nil
	case bool:
		return SnapshotValue{Kind: snapBool, Bool: x}, nil
	case value.Error:
		return SnapshotValue{Kind: snapError, Num: float64(x.Kind), Text: x.Message}, nil
	case civil.Date:
		return SnapshotValue{Kind: snapDate, Text: x.String()}, nil
	case civil.Time:
		return SnapshotValue{Kind: snapTime, Text: x.String()}, nil
	case civil.DateTime:
		return SnapshotValue{Kind: snapDateTime, Text: x.String()}, nil
	case []any:
		list := make([]SnapshotValue, len(x))
		for i, e := range x {
			sv, err := encodeValue(e)
			if err != nil {
				return SnapshotValue{}, err
			}
			list[i] = sv
		}
		return SnapshotValue{Kind: snapList, List: list}, nil
	}
	return SnapshotValue{}, fmt.Errorf("cannot store %T in a snapshot", v)
}

func decodeValue(sv SnapshotValue) (any, error) {
	switch sv.Kind {
	case snapEmpty:
		return nil, nil
	case snapNumber:
		return sv.Num, nil
	case snapText:
		return sv.Text, nil
	case snapBool:
		return sv.Bool, nil
	case snapError:
		return value.NewError(value.ErrorKind(sv.Num), sv.Text), nil
	case snapDate:
		return civil.ParseDate(sv.Text)
	case snapTime:
		return civil.ParseTime(sv.Text)
	case snapDateTime:
		return civil.ParseDateTime(sv.Text)
	case snapList:
		out := make([]any, len(sv.List))
		for i, e := range sv.List {
			v, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown snapshot value kind %d", sv.Kind)
}

// TakeSnapshot captures the cells and labels of m.
func TakeSnapshot(m *Memory) (*Snapshot, error) {
	s := &Snapshot{Schema: snapshotSchemaVersion}
	for _, c := range m.Cells() {
		sv, err := encodeValue(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Reference, err)
		}
		s.Cells = append(s.Cells, SnapshotCell{
			Column:   c.Reference.Column.Index,
			Row:      c.Reference.Row.Index,
			Formula:  c.Formula,
			HasValue: c.HasValue,
			Value:    sv,
		})
	}
	for _, l := range m.Labels() {
		s.Labels = append(s.Labels, SnapshotLabel{Name: string(l.Label), Target: l.Target.String()})
	}
	return s, nil
}

// Restore rebuilds a Memory store from a snapshot.
func (s *Snapshot) Restore() (*Memory, error) {
	if s.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSnapshotSchema, s.Schema, snapshotSchemaVersion)
	}
	m := NewMemory()
	for _, sc := range s.Cells {
		v, err := decodeValue(sc.Value)
		if err != nil {
			return nil, err
		}
		ref := reference.Cell(sc.Column, sc.Row)
		m.SaveCell(Cell{Reference: ref, Formula: sc.Formula, Value: v, HasValue: sc.HasValue})
	}
	for _, sl := range s.Labels {
		target, err := reference.Parse(sl.Target)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", sl.Name, err)
		}
		m.SaveLabel(LabelMapping{Label: reference.LabelName(sl.Name), Target: target})
	}
	return m, nil
}

// SaveSnapshot writes m to path atomically.
func SaveSnapshot(path string, m *Memory) error {
	snap, err := TakeSnapshot(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmp)
	}()

	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, path)
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap.Restore()
}
