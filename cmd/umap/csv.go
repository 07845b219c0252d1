package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// loadCSV loads data from a CSV file (no header, numeric values only).
func loadCSV(filename string) ([][]float32, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	data := make([][]float32, len(records))
	for i, record := range records {
		data[i] = make([]float32, len(record))
		for j, val := range record {
			f, err := strconv.ParseFloat(val, 32)
			if err != nil {
				return nil, fmt.Errorf("row %d, col %d: %w", i, j, err)
			}
			data[i][j] = float32(f)
		}
	}

	return data, nil
}

// saveCSV saves an embedding to a CSV file.
func saveCSV(filename string, embedding [][]float32) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, row := range embedding {
		record := make([]string, len(row))
		for j, val := range row {
			record[j] = strconv.FormatFloat(float64(val), 'f', 6, 32)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
