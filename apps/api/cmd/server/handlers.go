package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"unitranslate/packages/backend/translation"

	"go.uber.org/zap"
)

func rootHandler(logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"message": "Translation API is running"})
	}
}

func healthHandler(health func() translation.HealthStatus, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if status := health(); !status.Healthy {
				writeJSON(w, logger, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"detail": status.Message,
				})
				return
			}
		}
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func languagesHandler(api translation.API, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := api.Languages(r.Context())
		if err != nil {
			writeError(w, logger, http.StatusInternalServerError, fmt.Errorf("failed to load languages: %w", err))
			return
		}
		writeJSON(w, logger, http.StatusOK, catalog)
	}
}

func translateHandler(api translation.API, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := r.Body.Close(); err != nil {
				logger.Errorw("failed to close request body", "error", err)
			}
		}()

		var req translation.Request
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err := decoder.Decode(&req); err != nil {
			writeError(w, logger, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
			return
		}

		resp, err := api.Translate(r.Context(), req)
		if err != nil {
			if isClientError(err) {
				writeError(w, logger, http.StatusBadRequest, err)
				return
			}
			logger.Errorw("translation failed", "target", req.TargetLanguage, "source", req.SourceLanguage, "error", err)
			writeErrorMessage(w, logger, http.StatusInternalServerError, "Translation error: "+err.Error())
			return
		}

		writeJSON(w, logger, http.StatusOK, resp)
	}
}

func detectHandler(api translation.API, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		if strings.TrimSpace(text) == "" {
			writeError(w, logger, http.StatusBadRequest, errors.New("text query parameter is required"))
			return
		}

		resp, err := api.Detect(r.Context(), text)
		if err != nil {
			logger.Errorw("detection failed", "error", err)
			writeErrorMessage(w, logger, http.StatusInternalServerError, "Detection error: "+err.Error())
			return
		}

		writeJSON(w, logger, http.StatusOK, resp)
	}
}

func isClientError(err error) bool {
	return errors.Is(err, translation.ErrEmptyText) || errors.Is(err, translation.ErrUnknownLanguage)
}

func writeJSON(w http.ResponseWriter, logger *zap.SugaredLogger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, status int, err error) {
	writeErrorMessage(w, logger, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, logger *zap.SugaredLogger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]string{"error": msg}
	if encodeErr := json.NewEncoder(w).Encode(payload); encodeErr != nil {
		logger.Errorw("failed to encode error response", "error", encodeErr)
	}
}
