package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/xcontext"
)

type errorBody struct {
	Code    errorx.Code `json:"code"`
	Message string      `json:"message"`
}

type responseBody struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func bindRequest(req *http.Request, method string, target any) error {
	switch method {
	case http.MethodGet:
		values := map[string]string{}
		for key := range req.URL.Query() {
			values[key] = req.URL.Query().Get(key)
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           target,
		})
		if err != nil {
			return errorx.Unknown
		}

		if err := decoder.Decode(values); err != nil {
			return errorx.New(errorx.BadRequest, "Cannot bind the query")
		}

	case http.MethodPost:
		if err := json.NewDecoder(req.Body).Decode(target); err != nil {
			return errorx.New(errorx.BadRequest, "Cannot bind the request body")
		}
	}

	return nil
}

func writeResponse(w http.ResponseWriter, ctx context.Context) {
	w.Header().Set("Content-Type", "application/json")

	if err := xcontext.Error(ctx); err != nil {
		var errx errorx.Error
		if !errors.As(err, &errx) {
			errx = errorx.Unknown
		}

		w.WriteHeader(httpStatus(errx.Code))
		json.NewEncoder(w).Encode(responseBody{
			Error: &errorBody{Code: errx.Code, Message: errx.Message},
		})
		return
	}

	json.NewEncoder(w).Encode(responseBody{Data: xcontext.Response(ctx)})
}

func httpStatus(code errorx.Code) int {
	switch code {
	case errorx.BadRequest, errorx.SelfReference:
		return http.StatusBadRequest
	case errorx.Unauthenticated:
		return http.StatusUnauthorized
	case errorx.PermissionDenied, errorx.Blocked:
		return http.StatusForbidden
	case errorx.NotFound:
		return http.StatusNotFound
	case errorx.AlreadyExists, errorx.MaximumReached:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
