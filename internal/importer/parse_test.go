package importer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseBytes_Comma(t *testing.T) {
	data := []byte("PersonID,Age,Gender\np1,74,F\np2,81,M\n")

	header, records, err := parseBytes("patients.csv", data)
	if err != nil {
		t.Fatalf("parseBytes: %v", err)
	}
	if want := []string{"PersonID", "Age", "Gender"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %v, want %v", header, want)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1][0] != "p2" {
		t.Errorf("records[1][0] = %q, want p2", records[1][0])
	}
}

func TestParseBytes_TabFallback(t *testing.T) {
	data := []byte("PersonID\tAge\tGender\np1\t74\tF\n")

	header, records, err := parseBytes("patients.tsv", data)
	if err != nil {
		t.Fatalf("parseBytes: %v", err)
	}
	if len(header) != 3 {
		t.Fatalf("header = %v, want 3 columns", header)
	}
	if header[1] != "Age" {
		t.Errorf("header[1] = %q, want Age", header[1])
	}
	if len(records) != 1 || records[0][2] != "F" {
		t.Errorf("records = %v, want one record ending in F", records)
	}
}

func TestParseBytes_BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("PersonID,Age\np1,74\n")...)

	header, _, err := parseBytes("excel.csv", data)
	if err != nil {
		t.Fatalf("parseBytes: %v", err)
	}
	if header[0] != "PersonID" {
		t.Errorf("header[0] = %q, want PersonID without BOM", header[0])
	}
}

func TestParseBytes_SingleColumn(t *testing.T) {
	// One legit column, no tabs anywhere: stays a comma parse.
	data := []byte("PersonID\np1\np2\n")

	header, records, err := parseBytes("ids.csv", data)
	if err != nil {
		t.Fatalf("parseBytes: %v", err)
	}
	if len(header) != 1 || header[0] != "PersonID" {
		t.Errorf("header = %v, want [PersonID]", header)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestParseBytes_TrimsHeaderWhitespace(t *testing.T) {
	data := []byte(" PersonID , Age \np1,74\n")

	header, _, err := parseBytes("padded.csv", data)
	if err != nil {
		t.Fatalf("parseBytes: %v", err)
	}
	if want := []string{"PersonID", "Age"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %v, want %v", header, want)
	}
}

func TestParseBytes_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"ragged rows", "a,b,c\n1,2\n"},
		{"empty file", ""},
		{"unterminated quote", "a,b\n\"oops,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseBytes("bad.csv", []byte(tt.data))
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedInputError", err)
			}
			if malformed.Filename != "bad.csv" {
				t.Errorf("Filename = %q, want bad.csv", malformed.Filename)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged.csv")
	if err := os.WriteFile(path, []byte("PersonID,Age\np1,74\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	header, records, err := ParseFile("upload.csv", path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(header) != 2 || len(records) != 1 {
		t.Errorf("got header=%v records=%v", header, records)
	}
}

func TestHeaderIndex_FirstOccurrenceWins(t *testing.T) {
	idx := headerIndex([]string{"a", "b", "a"})
	if idx["a"] != 0 {
		t.Errorf("idx[a] = %d, want 0", idx["a"])
	}
	if idx["b"] != 1 {
		t.Errorf("idx[b] = %d, want 1", idx["b"])
	}
}
