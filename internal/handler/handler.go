package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"stemma/internal/canvas"
	"stemma/internal/codec"
	"stemma/internal/domain"
	"stemma/internal/geom"
	"stemma/internal/graph"
	"stemma/internal/interaction"
	"stemma/internal/loader"
	"stemma/internal/repository"
	"stemma/internal/service"
	"stemma/internal/validation"
)

// maxBodySize bounds request bodies
const maxBodySize = 4 << 20

// CanvasHandler handles canvas API requests
type CanvasHandler struct {
	svc    *service.CanvasService
	logger *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(svc *service.CanvasService, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{svc: svc, logger: logger.Named("http")}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InputResponse is the reply to one raw input event
type InputResponse struct {
	State    interaction.State       `json:"state"`
	Message  *domain.MessageEnvelope `json:"message,omitempty"`
	Change   graph.Change            `json:"change"`
	Captured bool                    `json:"captured"`
}

// InsertRequest asks for a new node, below Parent when set
type InsertRequest struct {
	Parent domain.NodeID `json:"parent,omitempty"`
}

// BoundsRequest sets the surface bounds
type BoundsRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// PersonRequest is a partial person update
type PersonRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Sex       *string `json:"sex,omitempty" validate:"omitempty,oneof=male female m f"`
}

// GetGraph returns the canvas as a layout
func (h *CanvasHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	layout, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "Failed to get graph", err)
		return
	}

	h.writeJSON(w, layout, http.StatusOK)
}

// GetStatus returns the interaction state, viewport and counters
func (h *CanvasHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		h.fail(w, "Failed to get status", err)
		return
	}

	h.writeJSON(w, status, http.StatusOK)
}

// GetFrame returns the current frame. The frame digest is the ETag, so an
// unchanged canvas answers 304.
func (h *CanvasHandler) GetFrame(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Frame(r.Context())
	if err != nil {
		h.fail(w, "Failed to render frame", err)
		return
	}

	etag := `"` + res.Digest + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.writeJSON(w, res.Frame, http.StatusOK)
}

// PostInput feeds one raw input event to the canvas
func (h *CanvasHandler) PostInput(w http.ResponseWriter, r *http.Request) {
	var ev interaction.Event
	if !h.decode(w, r, &ev) {
		return
	}

	resp, err := h.handleInput(r, ev)
	if err != nil {
		h.fail(w, "Failed to handle input", err)
		return
	}

	h.writeJSON(w, resp, http.StatusOK)
}

func (h *CanvasHandler) handleInput(r *http.Request, ev interaction.Event) (InputResponse, error) {
	out, err := h.svc.HandleEvent(r.Context(), ev)
	if err != nil {
		return InputResponse{}, err
	}
	return inputResponse(out)
}

func inputResponse(out canvas.Outcome) (InputResponse, error) {
	resp := InputResponse{State: out.State, Change: out.Change, Captured: out.Captured}
	if out.Message != nil {
		env, err := domain.EncodeMessage(out.Message)
		if err != nil {
			return resp, err
		}
		resp.Message = &env
	}
	return resp, nil
}

// PostMessage applies a host message, such as a Scaled from a zoom slider
func (h *CanvasHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var env domain.MessageEnvelope
	if !h.decode(w, r, &env) {
		return
	}

	msg, err := env.Decode()
	if err != nil {
		h.writeError(w, "Invalid message", err.Error(), http.StatusBadRequest)
		return
	}

	change, err := h.svc.Apply(r.Context(), msg)
	if err != nil {
		h.fail(w, "Failed to apply message", err)
		return
	}

	h.writeJSON(w, change, http.StatusOK)
}

// CreateNode inserts a new person
func (h *CanvasHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	rec, err := h.svc.InsertNode(r.Context(), req.Parent)
	if err != nil {
		h.fail(w, "Failed to insert node", err)
		return
	}

	h.writeJSON(w, rec, http.StatusCreated)
}

// GetNode returns a single node
func (h *CanvasHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	rec, err := h.svc.Node(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}

	h.writeJSON(w, rec, http.StatusOK)
}

// UpdateNode edits the name and sex of a person
func (h *CanvasHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.nodeID(w, r)
	if !ok {
		return
	}

	var req PersonRequest
	if !h.decode(w, r, &req) {
		return
	}

	patch := canvas.PersonPatch{FirstName: req.FirstName, LastName: req.LastName}
	if req.Sex != nil {
		sex, err := domain.ParseSex(*req.Sex)
		if err != nil {
			h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		patch.Sex = &sex
	}

	rec, err := h.svc.UpdatePerson(r.Context(), id, patch)
	if err != nil {
		h.fail(w, "Failed to update node", err)
		return
	}

	h.writeJSON(w, rec, http.StatusOK)
}

// SetBounds records new surface bounds
func (h *CanvasHandler) SetBounds(w http.ResponseWriter, r *http.Request) {
	var req BoundsRequest
	if !h.decode(w, r, &req) {
		return
	}

	bounds := geom.Rectangle{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := h.svc.Resize(r.Context(), bounds); err != nil {
		h.fail(w, "Failed to set bounds", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportYAML inserts the people of a family seed file
func (h *CanvasHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}

	family, err := loader.ParseYAML(data)
	if err != nil {
		h.writeError(w, "Failed to import YAML", err.Error(), http.StatusBadRequest)
		return
	}

	ids, err := h.svc.ImportFamily(r.Context(), family)
	if err != nil {
		h.fail(w, "Failed to import YAML", err)
		return
	}

	h.writeJSON(w, map[string]any{"imported": len(ids), "ids": ids}, http.StatusOK)
}

// ImportLayout replaces the canvas with a layout document
func (h *CanvasHandler) ImportLayout(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	layout, err := c.Parse(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.writeError(w, "Failed to import layout", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Load(r.Context(), layout); err != nil {
		h.fail(w, "Failed to load layout", err)
		return
	}

	h.writeJSON(w, map[string]int{"nodes": len(layout.Nodes), "edges": len(layout.Edges)}, http.StatusOK)
}

// Export writes the canvas as a layout document
func (h *CanvasHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	layout, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.fail(w, "Failed to export layout", err)
		return
	}

	switch c.Format() {
	case "yaml":
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Header().Set("Content-Disposition", "attachment; filename=layout.yml")
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename=layout.json")
	}

	if err := c.Export(layout, w); err != nil {
		// Can't write error response as we already set headers
		h.logger.Error("export failed", zap.String("format", c.Format()), zap.Error(err))
	}
}

// ListLayouts lists the stored layouts
func (h *CanvasHandler) ListLayouts(w http.ResponseWriter, r *http.Request) {
	infos, err := h.svc.Layouts(r.Context())
	if err != nil {
		h.fail(w, "Failed to list layouts", err)
		return
	}

	h.writeJSON(w, infos, http.StatusOK)
}

// SaveLayout stores the canvas under a name
func (h *CanvasHandler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.svc.Save(r.Context(), name); err != nil {
		h.fail(w, "Failed to save layout", err)
		return
	}

	h.writeJSON(w, map[string]string{"status": "saved", "name": name}, http.StatusCreated)
}

// RestoreLayout replaces the canvas with a stored layout
func (h *CanvasHandler) RestoreLayout(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.svc.Restore(r.Context(), name); err != nil {
		h.fail(w, "Failed to restore layout", err)
		return
	}

	h.writeJSON(w, map[string]string{"status": "restored", "name": name}, http.StatusOK)
}

// Helper methods

func (h *CanvasHandler) nodeID(w http.ResponseWriter, r *http.Request) (domain.NodeID, bool) {
	id, err := domain.ParseNodeID(r.PathValue("id"))
	if err != nil || id.IsZero() {
		h.writeError(w, "Invalid node ID", "Node ID must be a UUID", http.StatusBadRequest)
		return domain.NilNodeID, false
	}
	return id, true
}

// decode reads a JSON body into v and validates it
func (h *CanvasHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validation.Struct(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case graph.IsNotFound(err), errors.Is(err, repository.ErrLayoutNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *CanvasHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *CanvasHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func (h *CanvasHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
