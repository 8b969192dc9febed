package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/housing-predictor/internal/features"
	"github.com/yourusername/housing-predictor/internal/service"
)

// FieldDetail is one entry of a 422 response.
type FieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationResponse is the 422 body.
type ValidationResponse struct {
	Detail []FieldDetail `json:"detail"`
}

// ErrorResponse is the body of every other error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// PredictionResponse is the 200 body of POST /predict.
type PredictionResponse struct {
	Prediction float64 `json:"prediction"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API is running!"})
}

func (s *Server) predict(c *gin.Context) {
	raw, err := decodeObject(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{Detail: []FieldDetail{{
			Loc:  []string{"body"},
			Msg:  "Input should be a valid JSON object",
			Type: "model_attributes_type",
		}}})
		return
	}

	result, err := s.predictor.Predict(c.Request.Context(), raw)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, PredictionResponse{Prediction: result.Prediction})
}

// decodeObject reads a JSON object keeping numbers as json.Number so
// integer features are checked exactly.
func decodeObject(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("body is null")
	}
	return raw, nil
}

func (s *Server) writeError(c *gin.Context, err error) {
	var (
		validationErr  *service.ValidationError
		predictionErr  *service.PredictionError
		persistenceErr *service.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, validationResponse(validationErr.Errors))
	case errors.As(err, &predictionErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Prediction error: " + predictionErr.Error()})
	case errors.As(err, &persistenceErr):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Database save error: " + persistenceErr.Error()})
	default:
		s.logger.WithError(err).Error("Unhandled prediction failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error"})
	}
}

func validationResponse(errs features.ValidationErrors) ValidationResponse {
	out := ValidationResponse{Detail: make([]FieldDetail, 0, len(errs))}
	for _, e := range errs {
		out.Detail = append(out.Detail, FieldDetail{
			Loc:  []string{"body", e.Field()},
			Msg:  fieldMessage(e),
			Type: e.Type(),
		})
	}
	return out
}

func fieldMessage(e features.FieldError) string {
	switch e.Type() {
	case "missing":
		return "Field required"
	case "int_parsing":
		return "Input should be a valid integer"
	case "float_parsing":
		return "Input should be a valid number"
	default:
		return e.Error()
	}
}
