// Package analysis provides the HTTP endpoints for the AI analyses.
//
// Image analyses accept either JSON {"image": "<data URL or base64>"} or a
// multipart form with an "image" file field. Any failure after input
// validation is answered with 502 and the feature's generic message; the
// cause is only logged.
package analysis

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/respond"
	"agrisense/internal/infra/analyzer"
	analysisUC "agrisense/internal/usecase/analysis"
)

// multipartOverhead is allowed on top of the image limit for form framing.
const multipartOverhead = 1 << 20

// jsonEnvelope covers the data URL prefix and the JSON around the image.
const jsonEnvelope = 64 << 10

// MaxJSONBodyBytes is the body size a JSON upload of an image of maxImage
// bytes needs once base64 encoded.
func MaxJSONBodyBytes(maxImage int64) int64 {
	if maxImage <= 0 {
		maxImage = analysisUC.DefaultMaxImageBytes
	}
	return int64(base64.StdEncoding.EncodedLen(int(maxImage))) + jsonEnvelope
}

func tooLarge(maxBytes int64) error {
	return &entity.ValidationError{Field: "image", Message: fmt.Sprintf("image must not exceed %d bytes", maxBytes)}
}

// Register mounts the analysis routes. limit wraps each handler, typically
// with the per-IP rate limiter; nil mounts them unwrapped.
func Register(mux *http.ServeMux, svc *analysisUC.Service, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}
	mux.Handle("POST /analysis/soil", limit(SoilHandler{svc}))
	mux.Handle("POST /analysis/disease", limit(DiseaseHandler{svc}))
	mux.Handle("POST /analysis/crops", limit(CropsHandler{svc}))
	mux.Handle("POST /analysis/yield", limit(YieldHandler{svc}))
}

// writeError maps validation errors to 400 and analysis failures to 502.
func writeError(w http.ResponseWriter, kind analyzer.Kind, err error) {
	if entity.IsValidationError(err) {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	var ae *analysisUC.AnalysisError
	if errors.As(err, &ae) {
		respond.WriteError(w, http.StatusBadGateway, respond.NewAppError(http.StatusBadGateway, ae.UserMessage(), err))
		return
	}
	respond.WriteError(w, http.StatusBadGateway, respond.NewAppError(http.StatusBadGateway, analysisUC.UserMessage(kind), err))
}

// readImage extracts the uploaded image from a JSON or multipart body.
func readImage(r *http.Request, maxBytes int64) (analyzer.Image, error) {
	if maxBytes <= 0 {
		maxBytes = analysisUC.DefaultMaxImageBytes
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r, maxBytes)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxJSONBodyBytes(maxBytes))
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return analyzer.Image{}, tooLarge(maxBytes)
		}
		return analyzer.Image{}, &entity.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return analysisUC.DecodeDataURL(req.Image)
}

func readMultipart(r *http.Request, maxBytes int64) (analyzer.Image, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes+multipartOverhead)
	file, header, err := r.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return analyzer.Image{}, tooLarge(maxBytes)
		}
		return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "image file is required"}
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return analyzer.Image{}, &entity.ValidationError{Field: "image", Message: "image could not be read"}
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = analysisUC.DetectImageType(data, header.Filename)
	}
	return analyzer.Image{Data: data, MIMEType: mimeType}, nil
}

type SoilHandler struct{ Svc *analysisUC.Service }

func (h SoilHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(r, h.Svc.MaxImageBytes)
	if err != nil {
		writeError(w, analyzer.KindSoil, err)
		return
	}
	out, err := h.Svc.AnalyzeSoil(r.Context(), img)
	if err != nil {
		writeError(w, analyzer.KindSoil, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

type DiseaseHandler struct{ Svc *analysisUC.Service }

func (h DiseaseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	img, err := readImage(r, h.Svc.MaxImageBytes)
	if err != nil {
		writeError(w, analyzer.KindDisease, err)
		return
	}
	out, err := h.Svc.DiagnoseDisease(r.Context(), img)
	if err != nil {
		writeError(w, analyzer.KindDisease, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

type CropsHandler struct{ Svc *analysisUC.Service }

func (h CropsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SoilInfo string `json:"soilInfo"`
		Region   string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	out, err := h.Svc.RecommendCrops(r.Context(), analysisUC.CropQuery{SoilInfo: req.SoilInfo, Region: req.Region})
	if err != nil {
		writeError(w, analyzer.KindCrops, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

type YieldHandler struct{ Svc *analysisUC.Service }

// ServeHTTP 収量予測 {crop, area(ha), soilType, climate}
func (h YieldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Crop     string  `json:"crop"`
		Area     float64 `json:"area"`
		SoilType string  `json:"soilType"`
		Climate  string  `json:"climate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	out, err := h.Svc.PredictYield(r.Context(), analysisUC.YieldQuery{
		Crop:         req.Crop,
		AreaHectares: req.Area,
		SoilType:     req.SoilType,
		Climate:      req.Climate,
	})
	if err != nil {
		writeError(w, analyzer.KindYield, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
