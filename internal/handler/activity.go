package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/reactivities/backend/internal/domain"
	"github.com/pkordes/reactivities/backend/internal/mediator"
)

// ListActivities handles GET /api/activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := mediator.SendAs[[]domain.Activity](r.Context(), s.mediator, mediator.ListActivities{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if activities == nil {
		activities = []domain.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// GetActivity handles GET /api/activities/{id}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	activity, err := mediator.SendAs[domain.Activity](r.Context(), s.mediator, mediator.ActivityDetails{ID: id})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// EditActivity handles PUT /api/activities/{id}. The body may omit id; if it
// carries one it must match the path.
func (s *Server) EditActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	activity, ok := decodeActivity(w, r)
	if !ok {
		return
	}

	switch activity.ID {
	case uuid.Nil:
		activity.ID = id
	case id:
	default:
		writeRequestError(w, codeInvalidRequest, "body id does not match path id")
		return
	}
	s.edit(w, r, activity)
}

// EditActivityFromBody handles PUT and POST /api/activities, where the body
// names the activity to edit.
func (s *Server) EditActivityFromBody(w http.ResponseWriter, r *http.Request) {
	activity, ok := decodeActivity(w, r)
	if !ok {
		return
	}
	s.edit(w, r, activity)
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request, activity domain.Activity) {
	if _, err := s.mediator.Send(r.Context(), mediator.EditActivity{Activity: activity}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request helpers --------------------------------------------------------

// pathID binds the {id} path segment. On failure it writes a 400 and
// returns false.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeRequestError(w, codeInvalidRequest, "invalid activity id")
		return uuid.Nil, false
	}
	return id, true
}

// decodeActivity reads a JSON activity from the body. On failure it writes
// a 400, or a 413 when the body exceeds the configured limit, and returns
// false.
func decodeActivity(w http.ResponseWriter, r *http.Request) (domain.Activity, bool) {
	var a domain.Activity
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&a)
	if err == nil {
		// The body must hold exactly one JSON value.
		if err = dec.Decode(&json.RawMessage{}); errors.Is(err, io.EOF) {
			return a, true
		}
		if err == nil || !errors.As(err, new(*http.MaxBytesError)) {
			writeRequestError(w, codeInvalidRequest, "unexpected data after activity")
			return domain.Activity{}, false
		}
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeRequestError(w, codePayloadTooLarge, "request body too large")
	case errors.Is(err, io.EOF):
		writeRequestError(w, codeInvalidRequest, "request body is required")
	default:
		writeRequestError(w, codeInvalidRequest, "malformed activity")
	}
	return domain.Activity{}, false
}
