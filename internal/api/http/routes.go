package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"solar-dashboard/internal/dashboard"
	"solar-dashboard/internal/geocode"
	"solar-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. defaultDays
// is the forecast window used when the request does not specify one.
func RegisterRoutes(app *fiber.App, service *dashboard.Service, resolver *geocode.Resolver, defaultDays int) {
	v1 := app.Group("/api/v1")

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		// Always 200: failures and short queries both degrade to an empty
		// result list.
		results := resolver.Search(c.Context(), c.Query("q"))
		return c.JSON(fiber.Map{
			"results": emptyIfNil(results),
		})
	})

	v1.Get("/locations/recents", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"recents": emptyIfNil(resolver.Recents()),
		})
	})

	v1.Get("/location", func(c *fiber.Ctx) error {
		return c.JSON(service.Location())
	})

	v1.Put("/location", func(c *fiber.Ctx) error {
		var loc weather.Location
		if err := c.BodyParser(&loc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(loc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := service.SetLocation(loc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to persist location")
		}
		return c.JSON(loc)
	})

	v1.Get("/solar/current", func(c *fiber.Ctx) error {
		view, err := service.Current(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch weather data")
		}
		return c.JSON(view)
	})

	v1.Get("/solar/forecast", func(c *fiber.Ctx) error {
		req := forecastQuery{Days: defaultDays}
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		forecast, err := service.Forecast(c.Context(), req.Days)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "Failed to fetch forecast")
		}
		return c.JSON(fiber.Map{
			"days":     req.Days,
			"forecast": forecast,
		})
	})

	v1.Get("/capacity", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"capacity": service.Capacity(),
		})
	})

	v1.Put("/capacity", func(c *fiber.Ctx) error {
		var req capacityBody
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := service.SetCapacity(req.Capacity); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(req)
	})
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Days int `validate:"gte=1,lte=7"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	daysStr := c.Query("days")
	if daysStr == "" {
		return nil
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return errors.New("days must be an integer")
	}
	f.Days = days
	return nil
}

// capacityBody carries the system-capacity input; empty means "unset".
type capacityBody struct {
	Capacity string `json:"capacity"`
}

func emptyIfNil(locs []weather.Location) []weather.Location {
	if locs == nil {
		return []weather.Location{}
	}
	return locs
}
