package classifier

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dataset is the labeled commit dataset the Bank is trained on.
type Dataset struct {
	Records []Record
	Labels  map[Category][]int
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// IssueDataset is the labeled issue dataset of the issue text classifiers.
type IssueDataset struct {
	Titles       []string
	Descriptions []string
	Labels       []int
}

// Len returns the number of rows.
func (d *IssueDataset) Len() int {
	return len(d.Labels)
}

type csvTable struct {
	columns map[string]int
	rows    [][]string
}

func readTable(reader io.Reader) (*csvTable, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New("the dataset is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read the header")
	}
	table := &csvTable{columns: map[string]int{}}
	for i, name := range header {
		table.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read row %d", len(table.rows)+1)
		}
		table.rows = append(table.rows, row)
	}
	if len(table.rows) == 0 {
		return nil, errors.New("the dataset has no rows")
	}
	return table, nil
}

func (t *csvTable) require(names ...string) error {
	for _, name := range names {
		if _, exists := t.columns[name]; !exists {
			return errors.Errorf("column %q is missing", name)
		}
	}
	return nil
}

func (t *csvTable) get(row []string, name string) string {
	index, exists := t.columns[name]
	if !exists || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// parseFlag accepts 0/1, true/false and the float forms written by pandas.
func parseFlag(value string) (int, error) {
	switch strings.ToLower(value) {
	case "", "0", "false", "0.0":
		return 0, nil
	case "1", "true", "1.0":
		return 1, nil
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Errorf("%q is not a binary label", value)
	}
	if number != 0 {
		return 1, nil
	}
	return 0, nil
}

// LoadDataset reads the commit dataset. The header must contain message, paths and
// issue_type plus one column per category; "Maintainance" is accepted for maintenance.
func LoadDataset(reader io.Reader) (*Dataset, error) {
	table, err := readTable(reader)
	if err != nil {
		return nil, err
	}
	if err = table.require("message", "paths", "issue_type"); err != nil {
		return nil, err
	}
	columns := map[Category]string{}
	for name := range table.columns {
		if c, err := ParseCategory(name); err == nil {
			columns[c] = name
		}
	}
	for _, c := range Categories {
		if _, exists := columns[c]; !exists {
			return nil, errors.Errorf("column %q is missing", c)
		}
	}
	dataset := &Dataset{Labels: map[Category][]int{}}
	for i, row := range table.rows {
		dataset.Records = append(dataset.Records, Record{
			Message:   table.get(row, "message"),
			Paths:     table.get(row, "paths"),
			IssueType: table.get(row, "issue_type"),
		})
		for _, c := range Categories {
			flag, err := parseFlag(table.get(row, columns[c]))
			if err != nil {
				return nil, errors.Wrapf(err, "row %d, column %s", i+1, c)
			}
			dataset.Labels[c] = append(dataset.Labels[c], flag)
		}
	}
	return dataset, nil
}

// LoadDatasetFile opens and reads the commit dataset.
func LoadDatasetFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	dataset, err := LoadDataset(file)
	return dataset, errors.Wrapf(err, "failed to load %s", path)
}

// LoadIssueDataset reads the title,description,bug dataset.
func LoadIssueDataset(reader io.Reader) (*IssueDataset, error) {
	table, err := readTable(reader)
	if err != nil {
		return nil, err
	}
	if err = table.require("title", "description", "bug"); err != nil {
		return nil, err
	}
	dataset := &IssueDataset{}
	for i, row := range table.rows {
		flag, err := parseFlag(table.get(row, "bug"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		dataset.Titles = append(dataset.Titles, table.get(row, "title"))
		dataset.Descriptions = append(dataset.Descriptions, table.get(row, "description"))
		dataset.Labels = append(dataset.Labels, flag)
	}
	return dataset, nil
}

// LoadIssueDatasetFile opens and reads the issue dataset.
func LoadIssueDatasetFile(path string) (*IssueDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	dataset, err := LoadIssueDataset(file)
	return dataset, errors.Wrapf(err, "failed to load %s", path)
}
