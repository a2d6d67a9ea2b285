package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Query is the JSON body of a weather query message.
type Query struct {
	Location string `json:"location"`
	Date     string `json:"date"` // YYYY-MM-DD
}

// ParseQuery decodes a query message. A missing date falls back to the
// message timestamp so producers can omit it for "today" queries.
func ParseQuery(raw RawEvent) (string, time.Time, error) {
	var q Query
	if err := json.Unmarshal(raw.Value, &q); err != nil {
		return "", time.Time{}, fmt.Errorf("parse query: %w", err)
	}

	if strings.TrimSpace(q.Date) == "" {
		if raw.Timestamp.IsZero() {
			return "", time.Time{}, fmt.Errorf("parse query: date is required")
		}
		return q.Location, raw.Timestamp.UTC(), nil
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(q.Date))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parse query date: %w", err)
	}
	return q.Location, date, nil
}

// ReportKey identifies a report by its case-folded location and calendar day.
// Equal keys always carry equal reports.
func ReportKey(location string, date time.Time) string {
	return strings.ToLower(location) + "|" + DayKey(date)
}

// SerializeReport encodes a report for the sink topic, stamped with generatedAt.
func SerializeReport(report WeatherReport, date, generatedAt time.Time) (OutputEvent, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize weather report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(ReportKey(report.Location, date)),
		Value: data,
		Headers: map[string]string{
			"condition":    string(report.Condition),
			"seed":         strconv.FormatInt(int64(DeriveSeed(report.Location, date)), 10),
			"generated_at": generatedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
