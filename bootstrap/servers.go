package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"history-server/config"
	appmw "history-server/middleware"
	"history-server/rest"
	"history-server/usecase"
	appOtel "history-server/utils/otel"
)

// newHTTPServer creates the REST HTTP server.
func newHTTPServer(
	cfg *config.Config,
	searchUC *usecase.SearchHistoryUsecase,
	insertUC *usecase.InsertHistoryUsecase,
	refreshUC *usecase.RefreshCacheUsecase,
	rulesUC *usecase.ManageRulesUsecase,
	otelCfg appOtel.Config,
) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if otelCfg.Enabled {
		e.Use(appmw.OTelStatus())
	}

	handler := rest.NewHandler(searchUC, insertUC, refreshUC, rulesUC, nil)
	handler.RegisterRoutes(e)

	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           e,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
}
