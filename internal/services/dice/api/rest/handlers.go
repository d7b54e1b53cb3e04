package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/louisbranch/roll/internal/platform/errors"
	"github.com/louisbranch/roll/internal/platform/errors/i18n"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	"google.golang.org/grpc/codes"
)

const maxBodyBytes = 1 << 16

var errSeed = errors.New("seed must be an unsigned 64-bit integer")

// seed accepts a JSON number or a decimal string.
type seed uint64

func (s *seed) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	value, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return errSeed
	}
	*s = seed(value)
	return nil
}

type rollRequest struct {
	Sides    *int    `json:"sides"`
	Count    *int    `json:"count"`
	Notation *string `json:"notation"`
	Seed     *seed   `json:"seed"`
}

func (r rollRequest) options() service.RollOptions {
	if r.Seed == nil {
		return service.RollOptions{}
	}
	value := uint64(*r.Seed)
	return service.RollOptions{Seed: &value}
}

type rngResponse struct {
	SeedUsed   string `json:"seed_used"`
	SeedSource string `json:"seed_source"`
}

type rollResponse struct {
	ID          string      `json:"id,omitempty"`
	Operation   string      `json:"operation"`
	Notation    string      `json:"notation,omitempty"`
	Count       int         `json:"count"`
	Sides       int         `json:"sides"`
	Modifier    int         `json:"modifier"`
	HasModifier bool        `json:"has_modifier"`
	Individual  []int       `json:"individual,omitempty"`
	Sum         int         `json:"sum"`
	Total       int         `json:"total"`
	Rng         rngResponse `json:"rng"`
	CreatedAt   time.Time   `json:"created_at"`
}

type listResponse struct {
	Rolls         []rollResponse `json:"rolls"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler struct {
	dice *service.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.dice.Version()})
}

func (h *handler) roll(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Sides == nil {
		h.fail(w, r, service.MissingField("sides"))
		return
	}
	result, err := h.dice.Roll(r.Context(), *req.Sides, req.options())
	h.respond(w, r, result, err)
}

func (h *handler) rollMultiple(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := requireGroup(req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.dice.RollMultiple(r.Context(), *req.Count, *req.Sides, req.options())
	h.respond(w, r, result, err)
}

func (h *handler) rollIndividual(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := requireGroup(req); err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.dice.RollIndividual(r.Context(), *req.Count, *req.Sides, req.options())
	h.respond(w, r, result, err)
}

func (h *handler) rollNotation(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.Notation == nil {
		h.fail(w, r, service.MissingField("notation"))
		return
	}
	result, err := h.dice.RollNotation(r.Context(), *req.Notation, req.options())
	h.respond(w, r, result, err)
}

func (h *handler) getRoll(w http.ResponseWriter, r *http.Request) {
	record, err := h.dice.GetRoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromRecord(record))
}

func (h *handler) listRolls(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize := 0
	if raw := query.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, service.InvalidRequest("page_size must be an integer", err))
			return
		}
		pageSize = size
	}
	page, err := h.dice.ListRolls(r.Context(), pageSize, query.Get("page_token"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := listResponse{Rolls: make([]rollResponse, 0, len(page.Rolls)), NextPageToken: page.NextPageToken}
	for _, record := range page.Rolls {
		resp.Rolls = append(resp.Rolls, fromRecord(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request) (rollRequest, bool) {
	var req rollRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, errSeed) {
			h.fail(w, r, apperrors.Wrap(apperrors.CodeSeedOutOfRange, err.Error(), err))
		} else {
			h.fail(w, r, service.InvalidRequest(fmt.Sprintf("decode body: %v", err), err))
		}
		return rollRequest{}, false
	}
	return req, true
}

func (h *handler) respond(w http.ResponseWriter, r *http.Request, result service.RollResult, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromResult(result))
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = service.DomainError(err)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		log.Printf("dice http %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    string(apperrors.CodeUnknown),
			Message: "an unexpected error occurred",
		})
		return
	}
	catalog := i18n.GetCatalog(r.Header.Get("Accept-Language"))
	writeJSON(w, httpStatus(appErr.Code), errorResponse{
		Code:    string(appErr.Code),
		Message: catalog.Format(string(appErr.Code), appErr.Metadata),
	})
}

func requireGroup(req rollRequest) error {
	if req.Count == nil {
		return service.MissingField("count")
	}
	if req.Sides == nil {
		return service.MissingField("sides")
	}
	return nil
}

func httpStatus(code apperrors.Code) int {
	switch code.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("dice http: encode response: %v", err)
	}
}

func fromResult(result service.RollResult) rollResponse {
	return rollResponse{
		ID:          result.ID,
		Operation:   string(result.Operation),
		Notation:    result.Notation,
		Count:       result.Spec.Count,
		Sides:       result.Spec.Sides,
		Modifier:    result.Spec.Modifier,
		HasModifier: result.Spec.HasModifier,
		Individual:  result.Individual,
		Sum:         result.Sum,
		Total:       result.Total,
		Rng: rngResponse{
			SeedUsed:   strconv.FormatUint(result.Rng.SeedUsed, 10),
			SeedSource: result.Rng.SeedSource,
		},
		CreatedAt: result.CreatedAt,
	}
}

func fromRecord(record storage.RollRecord) rollResponse {
	sum := record.Total
	if record.HasModifier {
		sum -= record.Modifier
	}
	return rollResponse{
		ID:          record.ID,
		Operation:   string(record.Operation),
		Notation:    record.Notation,
		Count:       record.Count,
		Sides:       record.Sides,
		Modifier:    record.Modifier,
		HasModifier: record.HasModifier,
		Individual:  record.Individual,
		Sum:         sum,
		Total:       record.Total,
		Rng: rngResponse{
			SeedUsed:   strconv.FormatUint(record.Seed, 10),
			SeedSource: record.SeedSource,
		},
		CreatedAt: record.CreatedAt,
	}
}
