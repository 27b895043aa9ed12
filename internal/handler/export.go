package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_title", "trip_start_date", "trip_end_date",
	"day_number", "location_name", "place_notes",
}

// ExportTrip handles GET /trips/{tripId}/export.
// It returns one row per place with the trip fields repeated.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportTrip(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	format := req.query("format")
	if format != "" && format != "csv" && format != "json" {
		return nil, fmt.Errorf("%w: format must be csv or json", domain.ErrValidation)
	}

	rows, err := s.export.Export(ctx, caller, tripID)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}

	if format == "csv" {
		return csv200Response{
			filename: "itinerary-" + tripID.String() + ".csv",
			body:     buildCSV(rows),
		}, nil
	}
	return ok200(buildJSONRows(rows)), nil
}

func buildJSONRows(rows []domain.ItineraryRow) []ItineraryRow {
	out := make([]ItineraryRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToResponse(r))
	}
	return out
}

// buildCSV encodes domain rows as CSV, header first.
func buildCSV(rows []domain.ItineraryRow) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail.
	_ = w.Write(csvHeaders)
	for _, r := range rows {
		_ = w.Write(domainRowToCSVRecord(r))
	}
	w.Flush()
	return &buf
}

// domainRowToResponse maps an itinerary row to the wire type. Empty place
// fields become nil so a trip without places exports a single trip-only row.
func domainRowToResponse(r domain.ItineraryRow) ItineraryRow {
	tripID, _ := uuid.Parse(r.TripID)
	row := ItineraryRow{
		TripId:        tripID,
		TripTitle:     r.TripTitle,
		TripStartDate: parseOptionalDate(r.TripStartDate),
		TripEndDate:   parseOptionalDate(r.TripEndDate),
	}
	if r.DayNumber > 0 {
		day := r.DayNumber
		row.DayNumber = &day
	}
	if r.LocationName != "" {
		name := r.LocationName
		row.LocationName = &name
	}
	if r.PlaceNotes != "" {
		notes := r.PlaceNotes
		row.PlaceNotes = &notes
	}
	return row
}

// domainRowToCSVRecord flattens a row; a zero day number is written as "".
func domainRowToCSVRecord(r domain.ItineraryRow) []string {
	day := ""
	if r.DayNumber > 0 {
		day = strconv.Itoa(r.DayNumber)
	}
	return []string{
		r.TripID,
		r.TripTitle,
		r.TripStartDate,
		r.TripEndDate,
		day,
		r.LocationName,
		r.PlaceNotes,
	}
}

// parseOptionalDate parses a "2006-01-02" string. Empty or malformed input
// yields nil.
func parseOptionalDate(s string) *openapi_types.Date {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &openapi_types.Date{Time: t}
}
