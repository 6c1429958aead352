package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/service"
)

// handleCreateConfiguration handles POST /v1/configurations.
func (s *Server) handleCreateConfiguration(w http.ResponseWriter, r *http.Request, userID string) {
	var in service.CreateConfigurationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.svc.CreateConfiguration(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleGetConfiguration handles GET /v1/configurations/{id}.
func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	c, err := s.svc.GetConfiguration(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateConfiguration handles PUT /v1/configurations/{id}.
func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in service.UpdateConfigurationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	c, err := s.svc.UpdateConfiguration(r.Context(), userID, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleRestoreVersion handles POST /v1/configurations/{id}/versions/{version}/restore.
func (s *Server) handleRestoreVersion(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "version must be an integer")
		return
	}

	c, err := s.svc.RestoreConfigurationVersion(r.Context(), userID, id, version)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleListConfigurations handles GET /v1/configurations.
func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request, userID string) {
	q := r.URL.Query()
	filter := model.ConfigurationFilter{Name: q.Get("name")}

	var err error
	if filter.CreatedFrom, err = parseTimeParam(q.Get("created_from")); err != nil {
		writeError(w, http.StatusBadRequest, "created_from must be RFC 3339")
		return
	}
	if filter.CreatedTo, err = parseTimeParam(q.Get("created_to")); err != nil {
		writeError(w, http.StatusBadRequest, "created_to must be RFC 3339")
		return
	}

	page := parsePageParams(q.Get("page"), q.Get("page_size"))
	configs, total, err := s.svc.ListConfigurations(r.Context(), userID, filter, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Ensure configurations is never null in JSON output.
	if configs == nil {
		configs = []*model.Configuration{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"configurations": configs,
		"page_info":      pageInfo(page, total),
	})
}

// handleListVersions handles GET /v1/configurations/{id}/versions.
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request, userID string) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	q := r.URL.Query()
	var filter model.VersionFilter
	var err error
	if filter.CreatedFrom, err = parseTimeParam(q.Get("created_from")); err != nil {
		writeError(w, http.StatusBadRequest, "created_from must be RFC 3339")
		return
	}
	if filter.CreatedTo, err = parseTimeParam(q.Get("created_to")); err != nil {
		writeError(w, http.StatusBadRequest, "created_to must be RFC 3339")
		return
	}

	page := parsePageParams(q.Get("page"), q.Get("page_size"))
	versions, total, err := s.svc.ListVersions(r.Context(), userID, id, filter, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if versions == nil {
		versions = []*model.ConfigurationVersion{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"versions":  versions,
		"page_info": pageInfo(page, total),
	})
}

func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parsePageParams(pageStr, sizeStr string) model.Page {
	var p model.Page
	if n, err := strconv.Atoi(pageStr); err == nil {
		p.Number = n
	}
	if n, err := strconv.Atoi(sizeStr); err == nil {
		p.Size = n
	}
	return p.Normalize()
}

func pageInfo(page model.Page, total int) model.PageInfo {
	return model.PageInfo{
		PageNumber: page.Number,
		PageSize:   page.Size,
		TotalItems: total,
	}
}
