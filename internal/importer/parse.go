package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"strings"
)

// utf8BOM is the byte-order mark Excel prepends to UTF-8 CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads a staged file and splits it into a header row and
// data records. Comma delimiting is attempted first, then tab; if
// neither yields a consistent table the file is malformed. displayName
// is used only for error messages, never for path resolution.
func ParseFile(displayName, path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return parseBytes(displayName, data)
}

func parseBytes(displayName string, data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	header, records, commaErr := readTable(data, ',')
	// A single-column result with tabs in the raw bytes usually means
	// the file is tab-delimited, not a one-column CSV.
	if commaErr == nil && (len(header) > 1 || !bytes.ContainsRune(data, '\t')) {
		return header, records, nil
	}

	tabHeader, tabRecords, tabErr := readTable(data, '\t')
	if tabErr == nil && len(tabHeader) > 1 {
		return tabHeader, tabRecords, nil
	}

	if commaErr == nil {
		return header, records, nil
	}
	return nil, nil, &MalformedInputError{Filename: displayName, Err: commaErr}
}

// readTable parses raw bytes with the given delimiter. The first row is
// the header; every record must carry the same field count.
func readTable(data []byte, comma rune) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("empty file")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	return header, rows[1:], nil
}

// headerIndex maps each header name to its position. The first
// occurrence wins when a name repeats.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}
