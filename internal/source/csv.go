package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/market-basket/internal/model"
)

// itemSeparator splits several items packed into one CSV field.
const itemSeparator = ";"

// ReadCSV reads one basket per record. Every field holds one or more items
// separated by ';'. When the first record's first field is "id", that record
// is a header and the first column of every later record is the basket ID;
// otherwise IDs are the one-based record numbers. Records may have different
// lengths.
func ReadCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var (
		transactions []model.Transaction
		withIDs      bool
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		if line == 1 && len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "id") {
			withIDs = true
			continue
		}

		id := strconv.Itoa(len(transactions) + 1)
		fields := record
		if withIDs {
			id = strings.TrimSpace(record[0])
			fields = record[1:]
		}

		var items []string
		for _, field := range fields {
			items = append(items, strings.Split(field, itemSeparator)...)
		}
		transactions = append(transactions, model.NewTransaction(id, cleanItems(items)...))
	}

	return transactions, nil
}
