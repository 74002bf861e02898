package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/brewbox/internal/dispenser"
	"github.com/Simplici0/brewbox/internal/kiosk"
)

type server struct {
	kiosk    *kiosk.Service
	operator *operatorAuth
	logger   *zap.Logger
}

type sugarLevelRequest struct {
	Level *int `json:"level"`
}

type amountRequest struct {
	Amount *int `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newServer(svc *kiosk.Service, operator *operatorAuth, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{kiosk: svc, operator: operator, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/status", s.handleStatus)
	r.Get("/recipes", s.handleRecipes)
	r.Get("/recipes/{product}/servings", s.handleServings)
	r.Post("/coins", s.handleInsertCoin)
	r.Put("/sugar-level", s.handleSetSugarLevel)
	r.Post("/dispense/{product}", s.handleDispense)

	r.Group(func(r chi.Router) {
		r.Use(s.operator.middleware)
		r.Get("/dispenses", s.handleDispenses)
		r.Post("/stock/{ingredient}", s.handleAddResource)
		r.Post("/sugar", s.handleAddSugar)
	})

	return r
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.kiosk.Status())
}

func (s *server) handleRecipes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.kiosk.Catalog())
}

func (s *server) handleServings(w http.ResponseWriter, r *http.Request) {
	servings, err := s.kiosk.Servings(chi.URLParam(r, "product"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, servings)
}

func (s *server) handleInsertCoin(w http.ResponseWriter, r *http.Request) {
	state, err := s.kiosk.InsertCoin(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleSetSugarLevel(w http.ResponseWriter, r *http.Request) {
	var req sugarLevelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Level == nil {
		writeError(w, http.StatusBadRequest, "level is required")
		return
	}

	state, err := s.kiosk.SetSugarLevel(r.Context(), *req.Level)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleDispense(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.kiosk.Dispense(r.Context(), chi.URLParam(r, "product"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *server) handleDispenses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	receipts, err := s.kiosk.Dispenses(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *server) handleAddResource(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}

	state, err := s.kiosk.AddResource(r.Context(), chi.URLParam(r, "ingredient"), amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleAddSugar(w http.ResponseWriter, r *http.Request) {
	amount, ok := readAmount(w, r)
	if !ok {
		return
	}

	state, err := s.kiosk.AddSugar(r.Context(), amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func readAmount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return 0, false
	}
	return *req.Amount, true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json body")
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dispenser.ErrNoCoin):
		return http.StatusPaymentRequired
	case errors.Is(err, dispenser.ErrUnknownProduct), errors.Is(err, dispenser.ErrUnknownIngredient):
		return http.StatusNotFound
	case errors.Is(err, dispenser.ErrInsufficientIngredient), errors.Is(err, dispenser.ErrInsufficientSugar):
		return http.StatusConflict
	case errors.Is(err, dispenser.ErrNegativeAmount), errors.Is(err, dispenser.ErrSugarLevelTooHigh),
		errors.Is(err, dispenser.ErrStockOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
