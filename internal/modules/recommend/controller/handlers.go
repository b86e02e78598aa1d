package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ebitech02/WanderWise/internal/modules/recommend/service"
	"github.com/ebitech02/WanderWise/internal/modules/recommend/views"
	"github.com/ebitech02/WanderWise/internal/utils"
)

func writePage(w http.ResponseWriter, status int, render func(io.Writer) error) {
	if err := utils.WriteHTML(w, status, render); err != nil {
		slog.Error("template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func writeErrorPage(w http.ResponseWriter, status int, msg string) {
	writePage(w, status, func(w io.Writer) error {
		return views.RenderError(w, &views.ErrorData{Status: status, Message: msg})
	})
}

// recommendStatus maps a pipeline error to the response status.
func recommendStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrListingUnavailable):
		return http.StatusBadGateway, "country listing is currently unavailable, please try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "building recommendations took too long"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "failed to build recommendations"
	}
}

func (c *recommendControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	writePage(w, http.StatusOK, views.RenderIndex)
}

func (c *recommendControllerImpl) handleForm(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &views.FormData{
		Continents:        continentNames(),
		Climates:          climateNames(),
		SelectedContinent: q.Get("continent"),
		SelectedClimate:   q.Get("climate"),
	}
	writePage(w, http.StatusOK, func(w io.Writer) error { return views.RenderForm(w, data) })
}

func (c *recommendControllerImpl) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		c.renderFormError(w, "", "", "could not read the submitted form")
		return
	}
	continentIn, climateIn := r.PostForm.Get("continent"), r.PostForm.Get("climate")

	continent, label, err := parsePreferences(continentIn, climateIn)
	if err != nil {
		c.renderFormError(w, continentIn, climateIn, err.Error())
		return
	}

	q := url.Values{}
	q.Set("continent", continent.Name)
	q.Set("climate", label.String())
	http.Redirect(w, r, "/recommendations?"+q.Encode(), http.StatusSeeOther)
}

func (c *recommendControllerImpl) renderFormError(w http.ResponseWriter, continent, climateName, msg string) {
	data := &views.FormData{
		Continents:        continentNames(),
		Climates:          climateNames(),
		SelectedContinent: strings.TrimSpace(continent),
		SelectedClimate:   strings.TrimSpace(climateName),
		Error:             msg,
	}
	writePage(w, http.StatusBadRequest, func(w io.Writer) error { return views.RenderForm(w, data) })
}

func (c *recommendControllerImpl) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	continent, label, err := parsePreferences(q.Get("continent"), q.Get("climate"))
	if err != nil {
		writeErrorPage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.service.Recommend(r.Context(), continent, label)
	if err != nil {
		status, msg := recommendStatus(err)
		slog.Error("recommendations failed", "continent", continent.Name, "climate", label.String(), "error", err)
		writeErrorPage(w, status, msg)
		return
	}

	data := &views.RecommendationsData{
		Continent: res.Continent,
		Climate:   res.Climate.String(),
		Countries: res.Countries,
		Skipped:   res.Skipped,
	}
	writePage(w, http.StatusOK, func(w io.Writer) error { return views.RenderRecommendations(w, data) })
}

func (c *recommendControllerImpl) handleRecommendationsAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	continent, label, err := parsePreferences(q.Get("continent"), q.Get("climate"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := c.service.Recommend(r.Context(), continent, label)
	if err != nil {
		status, msg := recommendStatus(err)
		slog.Error("recommendations failed", "continent", continent.Name, "climate", label.String(), "error", err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

func (c *recommendControllerImpl) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.CacheStats(r.Context())
	if err != nil {
		slog.Error("cache stats failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to read cache stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *recommendControllerImpl) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := c.service.ClearClimate(r.Context(), "http"); err != nil {
		slog.Error("cache clear failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *recommendControllerImpl) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.PathValue("country"))
	if country == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing country")
		return
	}
	if err := c.service.InvalidateClimate(r.Context(), country, "http"); err != nil {
		slog.Error("cache invalidate failed", "country", country, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to invalidate cache entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
