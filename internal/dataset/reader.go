// Package dataset parses the two-section rating stream: a training
// section of "<user> <item> <rating>" records and a test section of
// "<user> <item>" queries, each introduced by a literal marker line.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

// Section marker lines, matched case-sensitively.
const (
	TrainMarker = "train dataset"
	TestMarker  = "test dataset"
)

// Query is one test-section record.
type Query struct {
	User int64
	Item int64
}

// Reader consumes a rating stream in order: ReadTraining first, then
// Next until it reports the end of input.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Reader{sc: sc}
}

// ReadTraining loads the training section into store, consuming both
// section markers. Blank lines are skipped. It returns the number of
// records read; the count includes overwrites of duplicate pairs.
func (r *Reader) ReadTraining(store ratings.Store) (int, error) {
	inTrain := false
	count := 0
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		switch line {
		case TrainMarker:
			if inTrain {
				return count, &SchemaError{Line: r.line, Msg: `duplicate "train dataset" marker`}
			}
			inTrain = true
			continue
		case TestMarker:
			if !inTrain {
				return count, &SchemaError{Line: r.line, Msg: `"test dataset" marker before "train dataset"`}
			}
			return count, nil
		}
		if !inTrain {
			return count, &SchemaError{Line: r.line, Msg: `expected "train dataset" marker`}
		}
		user, item, value, err := parseTrainRecord(line)
		if err != nil {
			return count, &ParseError{Line: r.line, Text: line, Err: err}
		}
		store.Add(user, item, value)
		count++
	}
	if err := r.sc.Err(); err != nil {
		return count, err
	}
	return count, &SchemaError{Line: r.line + 1, Msg: `missing "test dataset" marker at end of input`}
}

// Next returns the next test query. ok is false at end of input.
func (r *Reader) Next() (q Query, ok bool, err error) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			continue
		}
		q, err := parseTestRecord(line)
		if err != nil {
			return Query{}, false, &ParseError{Line: r.line, Text: line, Err: err}
		}
		return q, true, nil
	}
	return Query{}, false, r.sc.Err()
}

func parseTrainRecord(line string) (user, item int64, value float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	if user, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("user id: %w", err)
	}
	if item, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return 0, 0, 0, fmt.Errorf("item id: %w", err)
	}
	if value, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("rating: %w", err)
	}
	return user, item, value, nil
}

func parseTestRecord(line string) (Query, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Query{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	user, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Query{}, fmt.Errorf("user id: %w", err)
	}
	item, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Query{}, fmt.Errorf("item id: %w", err)
	}
	return Query{User: user, Item: item}, nil
}
