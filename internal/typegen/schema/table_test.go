package schema

import (
	"errors"
	"reflect"
	"testing"
)

func mustField(t *testing.T, name string, kind Kind, opts ...FieldOption) Field {
	t.Helper()
	f, err := NewField(name, kind, opts...)
	if err != nil {
		t.Fatalf("NewField(%s) failed: %v", name, err)
	}
	return f
}

func TestNewTable(t *testing.T) {
	t.Run("preserves field order", func(t *testing.T) {
		table, err := NewTable("Customers", []Field{
			mustField(t, "zeta", KindText),
			mustField(t, "alpha", KindNumber),
			mustField(t, "mid", KindDate),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var names []string
		for _, f := range table.Fields() {
			names = append(names, f.Name())
		}
		if !reflect.DeepEqual(names, []string{"zeta", "alpha", "mid"}) {
			t.Errorf("field order not preserved: %v", names)
		}
		if table.Len() != 3 {
			t.Errorf("expected 3 fields, got %d", table.Len())
		}
	})

	t.Run("metadata", func(t *testing.T) {
		table, err := NewTable("Customers", nil,
			TableExternalID("T1"),
			TableComment(" customer records "),
			NavigationPaths("Orders", "Invoices", "Orders", ""),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.ExternalID() != "T1" {
			t.Errorf("expected T1, got %s", table.ExternalID())
		}
		if table.Comment() != "customer records" {
			t.Errorf("unexpected comment %q", table.Comment())
		}
		if !reflect.DeepEqual(table.NavigationPaths(), []string{"Invoices", "Orders"}) {
			t.Errorf("navigation paths should be a sorted set, got %v", table.NavigationPaths())
		}
	})

	t.Run("lookup and primary key", func(t *testing.T) {
		table, err := NewTable("Customers", []Field{
			mustField(t, "id", KindText, PrimaryKey()),
			mustField(t, "age", KindNumber),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		pk, ok := table.PrimaryKey()
		if !ok || pk.Name() != "id" {
			t.Errorf("expected primary key id, got %v", pk)
		}
		if !table.HasField("age") || table.HasField("missing") {
			t.Error("HasField mismatch")
		}
		if f, ok := table.Field("age"); !ok || f.Kind() != KindNumber {
			t.Errorf("unexpected field lookup result %v", f)
		}
	})

	t.Run("no primary key", func(t *testing.T) {
		table, _ := NewTable("Log", []Field{mustField(t, "line", KindText)})
		if _, ok := table.PrimaryKey(); ok {
			t.Error("expected no primary key")
		}
	})

	t.Run("duplicate field", func(t *testing.T) {
		_, err := NewTable("Customers", []Field{
			mustField(t, "id", KindText),
			mustField(t, "id", KindNumber),
		})
		if !errors.Is(err, ErrDuplicateField) {
			t.Errorf("expected ErrDuplicateField, got %v", err)
		}
	})

	t.Run("multiple primary keys", func(t *testing.T) {
		_, err := NewTable("Customers", []Field{
			mustField(t, "id", KindText, PrimaryKey()),
			mustField(t, "uuid", KindText, PrimaryKey()),
		})
		if !errors.Is(err, ErrMultiplePrimaryKeys) {
			t.Errorf("expected ErrMultiplePrimaryKeys, got %v", err)
		}
	})

	t.Run("zero value field rejected", func(t *testing.T) {
		if _, err := NewTable("Customers", []Field{{}}); err == nil {
			t.Error("expected error for zero value field")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := NewTable("", nil); !errors.Is(err, ErrEmptyName) {
			t.Errorf("expected ErrEmptyName, got %v", err)
		}
	})

	t.Run("fields are copied", func(t *testing.T) {
		table, _ := NewTable("Customers", []Field{mustField(t, "id", KindText)})
		fields := table.Fields()
		fields[0] = mustField(t, "other", KindNumber)
		if f := table.Fields()[0]; f.Name() != "id" {
			t.Error("mutating the returned slice must not affect the table")
		}
	})
}

func TestSchema(t *testing.T) {
	s := NewSchema()
	a, _ := NewTable("A", nil)
	b, _ := NewTable("B", nil)

	if err := s.Add(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(a); !errors.Is(err, ErrDuplicateTable) {
		t.Errorf("expected ErrDuplicateTable, got %v", err)
	}

	tables := s.Tables()
	if len(tables) != 2 || tables[0].Name() != "B" || tables[1].Name() != "A" {
		t.Errorf("expected insertion order B, A")
	}
	if _, ok := s.Table("A"); !ok {
		t.Error("expected to find table A")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 tables, got %d", s.Len())
	}
}
