package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iothome/core/internal/device"
)

// Pagination bounds for list endpoints.
const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// page holds parsed pagination query parameters.
type page struct {
	number int
	size   int
}

// parsePage reads ?page and ?size with defaults and clamping.
func parsePage(r *http.Request) (page, error) {
	p := page{number: 0, size: defaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page{}, errors.New("page must be a non-negative integer")
		}
		p.number = n
	}
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page{}, errors.New("size must be a positive integer")
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		p.size = n
	}
	return p, nil
}

// listResponse is the envelope for paginated collections.
type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// parseID reads the {id} URL parameter.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// decodeEdit reads an Edit body, rejecting empty edits.
func decodeEdit(r *http.Request) (device.Edit, error) {
	var edit device.Edit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		return device.Edit{}, errors.New("invalid JSON body")
	}
	if edit.Name == nil && edit.Description == nil {
		return device.Edit{}, errors.New("nothing to update")
	}
	return edit, nil
}

// handleListDevices returns a page of devices.
//
// GET /api/v1/devices?page=0&size=50
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	devices, total, err := s.repo.ListDevicesPage(r.Context(), p.number, p.size)
	if err != nil {
		s.logger.Error("listing devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}

	writeJSON(w, http.StatusOK, listResponse{Items: devices, Total: total, Page: p.number, Size: p.size})
}

// handleGetDevice returns a single device.
//
// GET /api/v1/devices/{code}
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.repo.GetDeviceByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "error", err)
		writeInternalError(w, "failed to get device")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDevice edits a device's name/description.
//
// PATCH /api/v1/devices/{code}
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	edit, err := decodeEdit(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	d, err := s.repo.UpdateDevice(r.Context(), chi.URLParam(r, "code"), edit)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("updating device", "error", err)
		writeInternalError(w, "failed to update device")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleListSensors returns a page of a device's sensors.
//
// GET /api/v1/devices/{code}/sensors
func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	code := chi.URLParam(r, "code")
	if _, err := s.repo.GetDeviceByCode(r.Context(), code); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "error", err)
		writeInternalError(w, "failed to list sensors")
		return
	}

	sensors, total, err := s.repo.ListSensorsPage(r.Context(), code, p.number, p.size)
	if err != nil {
		s.logger.Error("listing sensors", "error", err)
		writeInternalError(w, "failed to list sensors")
		return
	}
	if sensors == nil {
		sensors = []device.Sensor{}
	}

	writeJSON(w, http.StatusOK, listResponse{Items: sensors, Total: total, Page: p.number, Size: p.size})
}

// handleGetSensor returns a single sensor.
//
// GET /api/v1/devices/{code}/sensors/{id}
func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sensor, err := s.repo.GetSensor(r.Context(), chi.URLParam(r, "code"), id)
	if err != nil {
		if errors.Is(err, device.ErrSensorNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		s.logger.Error("getting sensor", "error", err)
		writeInternalError(w, "failed to get sensor")
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// handleUpdateSensor edits a sensor's display name/description.
//
// PATCH /api/v1/devices/{code}/sensors/{id}
func (s *Server) handleUpdateSensor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	edit, err := decodeEdit(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sensor, err := s.repo.UpdateSensor(r.Context(), chi.URLParam(r, "code"), id, edit)
	if err != nil {
		if errors.Is(err, device.ErrSensorNotFound) {
			writeNotFound(w, "sensor not found")
			return
		}
		s.logger.Error("updating sensor", "error", err)
		writeInternalError(w, "failed to update sensor")
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// handleListActuators returns a page of a device's actuators.
//
// GET /api/v1/devices/{code}/actuators
func (s *Server) handleListActuators(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	code := chi.URLParam(r, "code")
	if _, err := s.repo.GetDeviceByCode(r.Context(), code); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device", "error", err)
		writeInternalError(w, "failed to list actuators")
		return
	}

	actuators, total, err := s.repo.ListActuatorsPage(r.Context(), code, p.number, p.size)
	if err != nil {
		s.logger.Error("listing actuators", "error", err)
		writeInternalError(w, "failed to list actuators")
		return
	}
	if actuators == nil {
		actuators = []device.Actuator{}
	}

	writeJSON(w, http.StatusOK, listResponse{Items: actuators, Total: total, Page: p.number, Size: p.size})
}

// handleGetActuator returns a single actuator.
//
// GET /api/v1/devices/{code}/actuators/{id}
func (s *Server) handleGetActuator(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	actuator, err := s.repo.GetActuator(r.Context(), chi.URLParam(r, "code"), id)
	if err != nil {
		if errors.Is(err, device.ErrActuatorNotFound) {
			writeNotFound(w, "actuator not found")
			return
		}
		s.logger.Error("getting actuator", "error", err)
		writeInternalError(w, "failed to get actuator")
		return
	}
	writeJSON(w, http.StatusOK, actuator)
}

// handleUpdateActuator edits an actuator's display name/description.
//
// PATCH /api/v1/devices/{code}/actuators/{id}
func (s *Server) handleUpdateActuator(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	edit, err := decodeEdit(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	actuator, err := s.repo.UpdateActuator(r.Context(), chi.URLParam(r, "code"), id, edit)
	if err != nil {
		if errors.Is(err, device.ErrActuatorNotFound) {
			writeNotFound(w, "actuator not found")
			return
		}
		s.logger.Error("updating actuator", "error", err)
		writeInternalError(w, "failed to update actuator")
		return
	}
	writeJSON(w, http.StatusOK, actuator)
}

// actionRequest is the body of an actuator command.
type actionRequest struct {
	State *int `json:"state"`
}

// handleActuatorAction publishes an actuator command to the device.
//
// POST /api/v1/devices/{code}/actuators/{id}/action {"state": N}
//
// Range validation against the stored level happens here, at the HTTP
// boundary; the publisher only resolves the name and sends. The command
// goes to the device over MQTT, and the stored state only changes when
// the device reports back on its update topic. 202 reflects that.
func (s *Server) handleActuatorAction(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "command dispatch not available")
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.State == nil {
		writeBadRequest(w, "state is required")
		return
	}

	code := chi.URLParam(r, "code")
	actuator, err := s.repo.GetActuatorByID(r.Context(), id)
	if err != nil || actuator.DeviceCode != code {
		if err != nil && !errors.Is(err, device.ErrActuatorNotFound) {
			s.logger.Error("loading actuator for action",
				"device_code", code, "actuator_id", id, "error", err)
			writeInternalError(w, "failed to load actuator")
			return
		}
		writeNotFound(w, "actuator not found")
		return
	}
	if *req.State < 0 || *req.State > actuator.Level {
		writeValidationError(w, "state outside actuator range")
		return
	}

	if err := s.publisher.SendActuatorAction(r.Context(), code, id, *req.State); err != nil {
		if errors.Is(err, device.ErrActuatorNotFound) {
			writeNotFound(w, "actuator not found")
			return
		}
		s.logger.Error("dispatching actuator action",
			"device_code", code, "actuator_id", id, "error", err)
		writeError(w, http.StatusBadGateway, ErrCodeUnavailable, "failed to reach device")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"device_code": code,
		"actuator_id": id,
		"state":       *req.State,
	})
}
