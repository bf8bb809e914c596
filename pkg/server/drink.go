package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"siphon/pkg/model"
	"siphon/pkg/repository"
)

type DrinkServer struct {
	repository *repository.Repository
	logger     *zap.Logger
}

func NewDrinkServer(repository *repository.Repository, logger *zap.Logger) *DrinkServer {
	return &DrinkServer{repository: repository, logger: logger}
}

// drinkRequest is the POST/PATCH body.
type drinkRequest struct {
	Title  string             `json:"title"`
	Recipe []model.Ingredient `json:"recipe"`
}

func (s *DrinkServer) Healthz(writer http.ResponseWriter, _ *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *DrinkServer) ListDrinks(writer http.ResponseWriter, request *http.Request) {
	drinks, err := s.repository.ListDrinks(request.Context())
	if err != nil {
		s.serverFault(writer, "listing drinks", err)

		return
	}

	summaries := make([]*model.DrinkSummary, 0, len(drinks))

	for _, drink := range drinks {
		summary, err := drink.Summary()
		if err != nil {
			s.serverFault(writer, "rendering drink", err, zap.Uint("drink_id", drink.ID))

			return
		}

		summaries = append(summaries, summary)
	}

	writeJSON(writer, http.StatusOK, map[string]interface{}{"success": true, "drinks": summaries})
}

func (s *DrinkServer) ListDrinksDetail(writer http.ResponseWriter, request *http.Request) {
	drinks, err := s.repository.ListDrinks(request.Context())
	if err != nil {
		s.serverFault(writer, "listing drinks", err)

		return
	}

	details := make([]*model.DrinkDetail, 0, len(drinks))

	for _, drink := range drinks {
		detail, err := drink.Detail()
		if err != nil {
			s.serverFault(writer, "rendering drink", err, zap.Uint("drink_id", drink.ID))

			return
		}

		details = append(details, detail)
	}

	writeJSON(writer, http.StatusOK, map[string]interface{}{"success": true, "drinks": details})
}

func (s *DrinkServer) CreateDrink(writer http.ResponseWriter, request *http.Request) {
	var body drinkRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(writer, http.StatusBadRequest, "bad request")

		return
	}

	if body.Title == "" || len(body.Recipe) == 0 {
		writeError(writer, http.StatusUnprocessableEntity, "unprocessable")

		return
	}

	drink := model.Drink{Title: body.Title}
	if err := drink.SetIngredients(body.Recipe); err != nil {
		s.serverFault(writer, "encoding recipe", err)

		return
	}

	created, err := s.repository.CreateDrink(request.Context(), drink)
	if err != nil {
		s.storeError(writer, err)

		return
	}

	s.respondWithDetail(writer, created)
}

// UpdateDrink applies partial changes. An empty title or an empty
// recipe list leaves the stored field untouched; clients rely on this
// to patch a single field.
func (s *DrinkServer) UpdateDrink(writer http.ResponseWriter, request *http.Request) {
	drinkID, ok := pathID(request)
	if !ok {
		writeError(writer, http.StatusNotFound, "resource not found")

		return
	}

	drink, err := s.repository.GetDrink(request.Context(), drinkID)
	if err != nil {
		s.storeError(writer, err)

		return
	}

	var body drinkRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(writer, http.StatusBadRequest, "bad request")

		return
	}

	if body.Title != "" {
		drink.Title = body.Title
	}

	if len(body.Recipe) > 0 {
		if err := drink.SetIngredients(body.Recipe); err != nil {
			s.serverFault(writer, "encoding recipe", err)

			return
		}
	}

	updated, err := s.repository.UpdateDrink(request.Context(), drink)
	if err != nil {
		s.storeError(writer, err)

		return
	}

	s.respondWithDetail(writer, updated)
}

func (s *DrinkServer) DeleteDrink(writer http.ResponseWriter, request *http.Request) {
	drinkID, ok := pathID(request)
	if !ok {
		writeError(writer, http.StatusNotFound, "resource not found")

		return
	}

	deletedID, err := s.repository.DeleteDrink(request.Context(), drinkID)
	if err != nil {
		s.storeError(writer, err)

		return
	}

	writeJSON(writer, http.StatusOK, map[string]interface{}{"success": true, "deleted": deletedID})
}

func (s *DrinkServer) respondWithDetail(writer http.ResponseWriter, drink *model.Drink) {
	detail, err := drink.Detail()
	if err != nil {
		s.serverFault(writer, "rendering drink", err, zap.Uint("drink_id", drink.ID))

		return
	}

	writeJSON(writer, http.StatusOK, map[string]interface{}{"success": true, "drinks": []*model.DrinkDetail{detail}})
}

func (s *DrinkServer) storeError(writer http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDrinkNotFound):
		writeError(writer, http.StatusNotFound, "resource not found")
	case errors.Is(err, repository.ErrDuplicateTitle):
		writeError(writer, http.StatusBadRequest, "bad request")
	default:
		s.serverFault(writer, "storage failure", err)
	}
}

func (s *DrinkServer) serverFault(writer http.ResponseWriter, message string, err error, fields ...zap.Field) {
	s.logger.Error(message, append(fields, zap.Error(err))...)
	writeError(writer, http.StatusInternalServerError, "internal server error")
}

func pathID(request *http.Request) (uint, bool) {
	raw, found := mux.Vars(request)["id"]
	if !found {
		return 0, false
	}

	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint(parsed), true
}
