package httpapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tidemap/enviro-aggregation/internal/journal"
	"github.com/tidemap/enviro-aggregation/internal/params"
	"github.com/tidemap/enviro-aggregation/internal/series"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
//
// Note the contract of the series endpoint: only syntactically malformed
// requests get an HTTP error. A well-formed request always answers 200 with
// a structured FetchResult; provider failures, range adjustments and empty
// results are all expressed inside the body, where the UI's diagnostic
// panel can render them.
func RegisterRoutes(app *fiber.App, svc *series.Service, jrnl *journal.Journal) {
	v1 := app.Group("/api/v1")

	v1.Get("/environment/series", func(c *fiber.Ctx) error {
		req, err := parseSeriesQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result := svc.Fetch(c.Context(), req)

		if jrnl != nil {
			jrnl.Record(journal.Entry{
				RequestID: result.RequestID,
				Location:  req.Location,
				Start:     req.Range.Start.Format("2006-01-02"),
				End:       req.Range.End.Format("2006-01-02"),
				Success:   result.Success,
				Rows:      len(result.Data),
				Error:     result.Error,
				Log:       result.Log,
			})
		}

		return c.JSON(result)
	})

	v1.Get("/parameters", func(c *fiber.Ctx) error {
		descs := params.List()
		out := make([]fiber.Map, 0, len(descs))
		for _, d := range descs {
			out = append(out, fiber.Map{
				"key":          d.Key,
				"displayName":  d.DisplayName,
				"upstreamName": d.Upstream,
				"unit":         d.Unit,
				"source":       d.Source,
				"plotColor":    params.PlotColor(d.Key),
			})
		}
		return c.JSON(fiber.Map{"parameters": out})
	})

	v1.Get("/diagnostics/recent", func(c *fiber.Ctx) error {
		if jrnl == nil {
			return c.JSON(fiber.Map{"entries": []journal.Entry{}})
		}
		return c.JSON(fiber.Map{"entries": jrnl.Recent()})
	})
}

// seriesQuery holds the raw query parameters of the series endpoint.
type seriesQuery struct {
	Latitude   string `validate:"required"`
	Longitude  string `validate:"required"`
	StartDate  string `validate:"required,datetime=2006-01-02"`
	EndDate    string `validate:"required,datetime=2006-01-02"`
	Parameters string `validate:"required"`
	Station    string
}

func parseSeriesQuery(c *fiber.Ctx) (series.FetchRequest, error) {
	q := seriesQuery{
		Latitude:   c.Query("latitude"),
		Longitude:  c.Query("longitude"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Parameters: c.Query("parameters"),
		Station:    c.Query("station"),
	}
	if err := validate.Struct(q); err != nil {
		return series.FetchRequest{}, err
	}

	lat, err := strconv.ParseFloat(q.Latitude, 64)
	if err != nil {
		return series.FetchRequest{}, fiber.NewError(fiber.StatusBadRequest, "latitude must be a number")
	}
	lon, err := strconv.ParseFloat(q.Longitude, 64)
	if err != nil {
		return series.FetchRequest{}, fiber.NewError(fiber.StatusBadRequest, "longitude must be a number")
	}

	r, err := series.ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return series.FetchRequest{}, err
	}

	return series.FetchRequest{
		Location:  series.Location{Latitude: lat, Longitude: lon},
		Range:     r,
		Keys:      splitParameters(q.Parameters),
		StationID: q.Station,
	}, nil
}

func splitParameters(raw string) []params.Key {
	parts := strings.Split(raw, ",")
	keys := make([]params.Key, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		keys = append(keys, params.Key(p))
	}
	return keys
}
