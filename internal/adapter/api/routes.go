package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-hotspot-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// HeaderPartial marks a future-hotspot response cut short by its deadline.
const HeaderPartial = "X-Partial-Result"

// DefaultEnrichTimeout bounds a single future-hotspot request.
const DefaultEnrichTimeout = 2 * time.Minute

var validate = validator.New()

// HotspotService is the subset of the pipeline service the API serves.
type HotspotService interface {
	ComputeHotspots(ctx context.Context) (domain.FeatureCollection, error)
	ComputeFutureHotspots(ctx context.Context) (domain.FeatureCollection, error)
	Forecast(ctx context.Context, at domain.Coordinates) (domain.ForecastResult, error)
}

// NewApp creates the public map API with a central JSON error handler.
func NewApp(svc HotspotService, enrichTimeout time.Duration, logger *slog.Logger) *fiber.App {
	if enrichTimeout <= 0 {
		enrichTimeout = DefaultEnrichTimeout
	}
	app := fiber.New(fiber.Config{
		AppName:               "flood-hotspot-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          enrichTimeout + 10*time.Second,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(cors.New())

	RegisterRoutes(app, svc, enrichTimeout)
	return app
}

// RegisterRoutes wires the map and weather handlers into the router.
func RegisterRoutes(r fiber.Router, svc HotspotService, enrichTimeout time.Duration) {
	r.Get("/map/hotspots", func(c *fiber.Ctx) error {
		fc, err := svc.ComputeHotspots(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fc)
	})

	r.Get("/map/future-hotspots", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), enrichTimeout)
		defer cancel()

		fc, err := svc.ComputeFutureHotspots(ctx)
		if err != nil {
			if isContextErr(err) && len(fc.Features) > 0 {
				c.Set(HeaderPartial, "true")
				return c.JSON(fc)
			}
			return err
		}
		return c.JSON(fc)
	})

	r.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q := forecastQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
		at, err := q.coordinates()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := svc.Forecast(c.UserContext(), at)
		if err != nil {
			return err
		}
		status := fiber.StatusOK
		if !result.Available() {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(newForecastResponse(at, result))
	})
}

// forecastQuery holds the raw lat/lon query parameters.
type forecastQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

var errLatLonRequired = errors.New("lat and lon are required and must be valid coordinates")

func (q forecastQuery) coordinates() (domain.Coordinates, error) {
	if err := validate.Struct(q); err != nil {
		return domain.Coordinates{}, errLatLonRequired
	}
	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return domain.Coordinates{}, errLatLonRequired
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return domain.Coordinates{}, errLatLonRequired
	}
	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}

type forecastSummary struct {
	MaxIntensityMmPerHr *float64 `json:"max_intensity_mm_per_hour"`
	TotalRainfallMm     *float64 `json:"total_rainfall_mm"`
}

type forecastResponse struct {
	Location  domain.Coordinates `json:"location"`
	RiskLevel domain.RiskTier    `json:"risk_level"`
	Message   string             `json:"message"`
	Summary   forecastSummary    `json:"summary"`
}

func newForecastResponse(at domain.Coordinates, r domain.ForecastResult) forecastResponse {
	return forecastResponse{
		Location:  at,
		RiskLevel: r.Risk,
		Message:   r.Message,
		Summary: forecastSummary{
			MaxIntensityMmPerHr: r.MaxIntensityMmPerHr,
			TotalRainfallMm:     r.TotalAccumulationMm,
		},
	}
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		case isContextErr(err):
			code = fiber.StatusServiceUnavailable
			message = "request timed out"
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("api request failed", "path", c.Path(), "status", code, "error", err)
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
		})
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
