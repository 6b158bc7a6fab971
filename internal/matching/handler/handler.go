package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"name-matcher/internal/config"
	"name-matcher/internal/fileio"
	"name-matcher/internal/matching/model"
	"name-matcher/internal/matching/service"
	"name-matcher/internal/middleware"
)

// NoMatchesMessage is returned instead of an empty workbook.
const NoMatchesMessage = "no matches at or above the threshold"

// multipart parts above this size spill to temp files
const formMemory = 32 << 20

type matchResponse struct {
	Columns   []string             `json:"columns"`
	Rows      [][]any              `json:"rows"`
	Count     int                  `json:"count"`
	Threshold float64              `json:"threshold"`
	Left      model.DatasetSummary `json:"left"`
	Right     model.DatasetSummary `json:"right"`
	Message   string               `json:"message,omitempty"`
}

type errorResponse struct {
	Error   string                `json:"error"`
	Missing []model.MissingColumn `json:"missing,omitempty"`
}

// Match handles POST /match: two uploaded tables in, matched name pairs out
// as JSON or as an xlsx attachment.
func Match(cfg config.Config, logger zerolog.Logger, m *service.Matcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

		if err := r.ParseMultipartForm(formMemory); err != nil {
			if tooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
				return
			}
			writeError(w, http.StatusBadRequest, errorResponse{Error: "bad multipart form: " + err.Error()})
			return
		}
		defer r.MultipartForm.RemoveAll()

		left, err := readUpload(r, "fileA", "a_header_row")
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "left file: " + err.Error()})
			return
		}
		right, err := readUpload(r, "fileB", "b_header_row")
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "right file: " + err.Error()})
			return
		}

		defs := cfg.Matching // fields the form omits fall back to these
		mc := model.Config{
			LeftName:  formValue(r, "a_name", defs.LeftName),
			RightName: formValue(r, "b_name", defs.RightName),
			LeftID:    formValue(r, "a_id", defs.LeftID),
			RightID:   formValue(r, "b_id", defs.RightID),
		}
		mc.Threshold, err = parseThreshold(r.FormValue("threshold"), defs.Threshold)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		res, err := m.FindMatches(left, right, mc)
		if err != nil {
			var cfgErr *model.ConfigError
			switch {
			case errors.As(err, &cfgErr):
				log.Warn().Err(err).Msg("match rejected")
				writeError(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Missing: cfgErr.Missing})
			case errors.Is(err, model.ErrInvalidThreshold):
				writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			default:
				log.Error().Err(err).Msg("match failed")
				writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
			}
			return
		}
		if r.FormValue("sort") == "score" {
			res = res.Sorted()
		}

		defer func() {
			log.Info().
				Int("left_rows", len(left.Rows)).
				Int("right_rows", len(right.Rows)).
				Int("matches", res.Count()).
				Float64("threshold", mc.Threshold).
				Dur("elapsed", time.Since(start)).
				Msg("match done")
		}()

		if r.FormValue("format") == "xlsx" && !res.Empty() {
			var buf bytes.Buffer
			if err := fileio.WriteResultXLSX(&buf, res); err != nil {
				log.Error().Err(err).Msg("write xlsx")
				writeError(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
				return
			}
			w.Header().Set("Content-Type", fileio.XLSXContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileio.ResultFilename))
			w.Header().Set("Cache-Control", "no-store")
			if _, err := buf.WriteTo(w); err != nil {
				log.Error().Err(err).Msg("send xlsx")
			}
			return
		}

		resp := matchResponse{
			Columns:   res.Columns,
			Rows:      res.Table(),
			Count:     res.Count(),
			Threshold: res.Threshold,
			Left:      res.Left,
			Right:     res.Right,
		}
		if res.Empty() { // same message for json and xlsx
			resp.Message = NoMatchesMessage
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func readUpload(r *http.Request, field, headerField string) (model.Dataset, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("missing %s: %w", field, err)
	}
	defer f.Close()

	headerRow := atoi(r.FormValue(headerField), 1)
	if headerRow < 1 { // 1-based, like the sheet itself
		headerRow = 1
	}
	return fileio.ReadDataset(f, hdr.Filename, headerRow)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, e errorResponse) { writeJSON(w, status, e) }
