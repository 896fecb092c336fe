package controllers

import (
	"net/http"

	"github.com/angelmondragon/sweetshop-backend/api/responses"
	"github.com/angelmondragon/sweetshop-backend/api/validators"
	"github.com/angelmondragon/sweetshop-backend/internal/sweets"
	pkgerrors "github.com/angelmondragon/sweetshop-backend/pkg/errors"
	"github.com/angelmondragon/sweetshop-backend/pkg/logger"
)

const (
	sweetIDParam          = "id"
	invalidSweetIDMessage = "invalid sweet id"
	sweetDeletedMessage   = "Sweet deleted successfully"
)

func sweetsUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sweets service unavailable"))
}

func SweetsList(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SweetsSearch reads name, category, minPrice and maxPrice from the query string.
// The name is matched as sent, whitespace included.
func SweetsSearch(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.Search(r.Context(), sweets.SearchFilter{
			Name:     validators.QueryRaw(r, "name"),
			Category: validators.QueryString(r, "category"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SweetsGet(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, sweetIDParam, invalidSweetIDMessage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sweet, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sweet)
	}
}

func SweetsCreate(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		var body sweets.CreateSweetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sweet, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sweet)
	}
}

func SweetsUpdate(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, sweetIDParam, invalidSweetIDMessage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body sweets.UpdateSweetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sweet, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sweet)
	}
}

func SweetsDelete(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, sweetIDParam, invalidSweetIDMessage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, sweetDeletedMessage)
	}
}

func SweetsPurchase(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, sweetIDParam, invalidSweetIDMessage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sweet, err := svc.Purchase(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sweet)
	}
}

func SweetsRestock(svc sweets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			sweetsUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, sweetIDParam, invalidSweetIDMessage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body sweets.RestockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sweet, err := svc.Restock(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sweet)
	}
}
