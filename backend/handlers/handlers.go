package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/fantasyrun/runner-market/backend/models"
	"github.com/fantasyrun/runner-market/backend/utils"
	"github.com/fantasyrun/runner-market/internal/domain/catalog"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/domain/packs"
)

const healthTimeout = 3 * time.Second

// PackPurchaser mints purchased packs.
type PackPurchaser interface {
	PurchasePack(ctx context.Context, in packs.PurchaseInput) (*packs.Purchase, error)
}

// RunnerSearcher looks up runners in a season catalog.
type RunnerSearcher interface {
	Search(ctx context.Context, season, query string) ([]catalog.Runner, error)
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Market  marketplace.Service
	Packs   PackPurchaser
	Runners RunnerSearcher
	Season  string
	// Checks are probed by the health endpoint, keyed by component name.
	Checks  map[string]func(ctx context.Context) error
	Version string
	Commit  string
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		health := webmodels.NewHealthCheck(webApp.Version)
		for name, check := range webApp.Checks {
			health.AddComponent(name, check(ctx))
		}

		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		return utils.SendJSON(c, status, health)
	}
}

// SearchRunners serves the season runner catalog, fuzzy filtered by ?q=.
func SearchRunners(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		season := c.Query("season", webApp.Season)
		runners, err := webApp.Runners.Search(c.UserContext(), season, c.Query("q"))
		switch {
		case errors.Is(err, catalog.ErrUnknownSeason):
			return utils.SendError(c, http.StatusNotFound, string(marketplace.KindNotFound), "unknown season "+season, nil)
		case err != nil:
			return utils.SendMarketError(c, &marketplace.Error{Kind: marketplace.KindMarketplace, Message: "runner catalog unavailable", Err: err})
		}
		return utils.SendSuccess(c, webmodels.NewRunnerResponses(runners), "")
	}
}

// PurchasePack mints a pack the caller already paid for on chain.
func PurchasePack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.PackPurchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "invalid request body", map[string]string{"body": err.Error()})
		}

		purchase, err := webApp.Packs.PurchasePack(c.UserContext(), packs.PurchaseInput{
			BuyerID:  utils.UserID(c),
			PackType: req.PackType,
			Price:    req.Price,
			TxHash:   req.TxHash,
		})
		if err != nil {
			return utils.SendMarketError(c, err)
		}
		return utils.SendCreated(c, webmodels.NewPackPurchaseResponse(purchase), "Pack minted")
	}
}
