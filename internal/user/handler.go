package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user/entity"
)

// MaxBodyBytes caps request bodies at 100kb.
const MaxBodyBytes = 100 << 10

// Client-facing error messages.
const (
	MsgMissingFields  = "Campos obligatorios incompletos"
	MsgAgeOutOfRange  = "Edad fuera de rango"
	MsgEmailTaken     = "El correo ya está registrado"
	MsgUserNotFound   = "Usuario no encontrado"
	MsgInvalidPayload = "Cuerpo de solicitud inválido"
	MsgPayloadTooBig  = "Cuerpo de solicitud demasiado grande"
	MsgReadFailed     = "Error al leer el archivo"
	MsgProcessFailed  = "Error al procesar el archivo"
)

// Handler exposes HTTP endpoints for the user registry.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// List handles GET /usuarios.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Errorw("list users failed", "err", err)
		h.writeError(w, http.StatusInternalServerError, MsgReadFailed)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// Create handles POST /usuarios.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create user failed", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

// Update handles PUT /usuarios/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, MsgUserNotFound)
		return
	}
	req, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update user failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

// Delete handles DELETE /usuarios/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeError(w, http.StatusNotFound, MsgUserNotFound)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, "delete user failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodePayload reads the JSON body. An empty body decodes as an empty
// payload; on failure the error response is already written.
func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (entity.Payload, bool) {
	var req entity.Payload
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&req)
	if err == nil || errors.Is(err, io.EOF) {
		return req, true
	}
	h.logger.Debugw("invalid payload", "method", r.Method, "path", r.URL.Path, "err", err)
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		h.writeError(w, http.StatusRequestEntityTooLarge, MsgPayloadTooBig)
	} else {
		h.writeError(w, http.StatusBadRequest, MsgInvalidPayload)
	}
	return entity.Payload{}, false
}

// pathID reads the {id} wildcard the way a lenient integer parse does:
// leading whitespace and an optional sign, then the longest run of digits.
// "5abc" is 5; a value with no leading digits matches no stored id.
func pathID(r *http.Request) (int64, bool) {
	s := strings.TrimLeft(r.PathValue("id"), " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	id, err := strconv.ParseInt(s[:end], 10, 64)
	return id, err == nil
}

// fail maps service errors to status codes and fixed messages.
func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		h.writeError(w, http.StatusBadRequest, MsgMissingFields)
	case errors.Is(err, ErrAgeOutOfRange):
		h.writeError(w, http.StatusBadRequest, MsgAgeOutOfRange)
	case errors.Is(err, ErrEmailTaken):
		h.writeError(w, http.StatusBadRequest, MsgEmailTaken)
	case errors.Is(err, ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, MsgUserNotFound)
	default:
		h.logger.Errorw(msg, "err", err)
		h.writeError(w, http.StatusInternalServerError, MsgProcessFailed)
		return
	}
	h.logger.Debugw(msg, "err", err)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
