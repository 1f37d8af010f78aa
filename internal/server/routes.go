package server

import (
	"errors"
	"net/http"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/pkg/marstek"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/snapshot", s.SnapshotHandler)
	e.POST("/refresh", s.RefreshHandler)
	e.POST("/mode", s.SetModeHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) SnapshotHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	}
	response, ok := res.(domain.GetSnapshotResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorBody(errors.New("unexpected response")))
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusServiceUnavailable, errorBody(response.GetResponseError()))
	}
	return c.JSON(http.StatusOK, response.Snapshot)
}

func (s *Server) RefreshHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.RefreshSnapshotRequest{}, 30*time.Second).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	}
	response, ok := res.(domain.RefreshSnapshotResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorBody(errors.New("unexpected response")))
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusServiceUnavailable, errorBody(response.GetResponseError()))
	}
	return c.JSON(http.StatusOK, response.Snapshot)
}

type setModeBody struct {
	Mode   string         `json:"mode"`
	Config map[string]any `json:"config"`
}

func (s *Server) SetModeHandler(c echo.Context) error {
	var body setModeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	switch body.Mode {
	case marstek.MODE_AUTO, marstek.MODE_AI, marstek.MODE_MANUAL, marstek.MODE_PASSIVE:
	default:
		return c.JSON(http.StatusBadRequest, errorBody(errors.New("invalid mode")))
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.SetOperatingModeRequest{
		Mode:   body.Mode,
		Config: body.Config,
	}, 30*time.Second).Result()
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	}
	response, ok := res.(domain.SetOperatingModeResponse)
	if !ok {
		return c.JSON(http.StatusInternalServerError, errorBody(errors.New("unexpected response")))
	}
	if response.HasResponseError() {
		return c.JSON(http.StatusServiceUnavailable, errorBody(response.GetResponseError()))
	}
	if !response.Accepted {
		return c.JSON(http.StatusConflict, map[string]any{"accepted": false})
	}
	return c.JSON(http.StatusOK, map[string]any{"accepted": true})
}

func errorBody(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
