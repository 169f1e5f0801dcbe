package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"agrisense/internal/config"
	"agrisense/internal/domain/entity"
	"agrisense/internal/handler/http/respond"
	"agrisense/internal/infra/analyzer"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/observability/tracing"
)

// CropQuery is the input of RecommendCrops.
type CropQuery struct {
	SoilInfo string
	Region   string
}

// YieldQuery is the input of PredictYield. Climate is optional.
type YieldQuery struct {
	Crop         string
	AreaHectares float64
	SoilType     string
	Climate      string
}

// Service runs analyses against an analyzer.Provider.
type Service struct {
	Provider      analyzer.Provider
	Prompts       *config.PromptCatalog
	Cache         *cache.Cache // nil disables memoization of text analyses
	MaxImageBytes int64

	group singleflight.Group
}

// NewService wires a Service. A non-positive cacheTTL disables the memo cache.
func NewService(p analyzer.Provider, prompts *config.PromptCatalog, cacheTTL time.Duration, maxImageBytes int64) *Service {
	s := &Service{Provider: p, Prompts: prompts, MaxImageBytes: maxImageBytes}
	if cacheTTL > 0 {
		s.Cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// AnalyzeSoil classifies a soil photo.
func (s *Service) AnalyzeSoil(ctx context.Context, img analyzer.Image) (*entity.SoilAnalysis, error) {
	if err := s.validateImage(analyzer.KindSoil, img); err != nil {
		return nil, err
	}
	var out entity.SoilAnalysis
	if err := s.run(ctx, analyzer.KindSoil, nil, &img, &out, func() error { return normalizeSoil(&out) }); err != nil {
		return nil, err
	}
	return &out, nil
}

// DiagnoseDisease diagnoses a plant photo. When the plant is diseased and
// the model gave no usable link, a pesticide search link is filled in.
func (s *Service) DiagnoseDisease(ctx context.Context, img analyzer.Image) (*entity.DiseaseAnalysis, error) {
	if err := s.validateImage(analyzer.KindDisease, img); err != nil {
		return nil, err
	}
	var out entity.DiseaseAnalysis
	if err := s.run(ctx, analyzer.KindDisease, nil, &img, &out, func() error { return normalizeDisease(&out) }); err != nil {
		return nil, err
	}
	return &out, nil
}

// RecommendCrops recommends crops for a soil description and region.
// Results are memoized per normalized input.
func (s *Service) RecommendCrops(ctx context.Context, q CropQuery) (*entity.CropRecommendation, error) {
	q.SoilInfo = strings.TrimSpace(q.SoilInfo)
	q.Region = strings.TrimSpace(q.Region)
	if q.SoilInfo == "" {
		return nil, s.invalid(analyzer.KindCrops, &entity.ValidationError{Field: "soilInfo", Message: "soil information is required"})
	}
	if q.Region == "" {
		return nil, s.invalid(analyzer.KindCrops, &entity.ValidationError{Field: "region", Message: "region is required"})
	}

	key := cacheKey(analyzer.KindCrops, q.SoilInfo, q.Region)
	v, err := s.memo(ctx, analyzer.KindCrops, key, func(ctx context.Context) (any, error) {
		var out entity.CropRecommendation
		err := s.run(ctx, analyzer.KindCrops, q, nil, &out, func() error { return normalizeCrops(&out) })
		return &out, err
	})
	if err != nil {
		return nil, err
	}
	return cloneCrops(v.(*entity.CropRecommendation)), nil
}

// PredictYield estimates the yield of a planting. Results are memoized per
// normalized input.
func (s *Service) PredictYield(ctx context.Context, q YieldQuery) (*entity.YieldPrediction, error) {
	q.Crop = strings.TrimSpace(q.Crop)
	q.SoilType = strings.TrimSpace(q.SoilType)
	q.Climate = strings.TrimSpace(q.Climate)
	if q.Crop == "" {
		return nil, s.invalid(analyzer.KindYield, &entity.ValidationError{Field: "crop", Message: "crop is required"})
	}
	if q.AreaHectares <= 0 {
		return nil, s.invalid(analyzer.KindYield, &entity.ValidationError{Field: "area", Message: "area must be greater than 0"})
	}
	if q.SoilType == "" {
		return nil, s.invalid(analyzer.KindYield, &entity.ValidationError{Field: "soilType", Message: "soil type is required"})
	}

	key := cacheKey(analyzer.KindYield, q.Crop, strconv.FormatFloat(q.AreaHectares, 'f', -1, 64), q.SoilType, q.Climate)
	v, err := s.memo(ctx, analyzer.KindYield, key, func(ctx context.Context) (any, error) {
		var out entity.YieldPrediction
		err := s.run(ctx, analyzer.KindYield, q, nil, &out, func() error { return normalizeYield(&out) })
		return &out, err
	})
	if err != nil {
		return nil, err
	}
	return cloneYield(v.(*entity.YieldPrediction)), nil
}

func (s *Service) validateImage(kind analyzer.Kind, img analyzer.Image) error {
	if err := ValidateImage(img, s.MaxImageBytes); err != nil {
		return s.invalid(kind, err)
	}
	return nil
}

func (s *Service) invalid(kind analyzer.Kind, err error) error {
	metrics.RecordAnalysis(string(kind), metrics.OutcomeInvalid)
	return err
}

// run renders the prompt, calls the provider and decodes into out.
// Every error it returns is an *AnalysisError.
func (s *Service) run(ctx context.Context, kind analyzer.Kind, data any, img *analyzer.Image, out any, normalize func() error) (err error) {
	ctx, span := tracing.GetTracer().Start(ctx, "analysis."+string(kind))
	span.SetAttributes(
		attribute.String("analysis.kind", string(kind)),
		attribute.String("analysis.provider", s.Provider.Name()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "analysis failed")
			metrics.RecordAnalysis(string(kind), metrics.OutcomeFailure)
			slog.WarnContext(ctx, "analysis failed",
				slog.String("kind", string(kind)),
				slog.String("error", respond.SanitizeError(err)))
			err = &AnalysisError{Kind: kind, Err: err}
		} else {
			metrics.RecordAnalysis(string(kind), metrics.OutcomeSuccess)
		}
		span.End()
	}()

	if s.Prompts == nil {
		return errors.New("prompt catalog not loaded")
	}
	prompt, err := s.Prompts.Render(string(kind), data)
	if err != nil {
		return fmt.Errorf("render prompt: %w", err)
	}

	schema := schemaFor(kind)
	raw, err := s.Provider.Generate(ctx, analyzer.Request{
		Kind:   kind,
		Prompt: prompt,
		Image:  img,
		Schema: schema,
	})
	if err != nil {
		return err
	}

	if err := decodeResponse(raw, schema, out); err != nil {
		return err
	}
	return normalize()
}

// sharedCallTimeout bounds a provider call shared by several callers. It
// runs detached from any single caller's context.
const sharedCallTimeout = 2 * time.Minute

// memo returns a cached result for key or computes it once, collapsing
// concurrent identical requests. A caller that gives up only stops waiting;
// the shared call keeps going for the others.
func (s *Service) memo(ctx context.Context, kind analyzer.Kind, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			metrics.RecordAnalysisCache(string(kind), true)
			slog.DebugContext(ctx, "analysis cache hit", slog.String("kind", string(kind)))
			return v, nil
		}
		metrics.RecordAnalysisCache(string(kind), false)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		v, err := fn(callCtx)
		if err != nil {
			return nil, err
		}
		if s.Cache != nil {
			s.Cache.SetDefault(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, &AnalysisError{Kind: kind, Err: ctx.Err()}
	case res := <-ch:
		return res.Val, res.Err
	}
}

// 共有結果は呼び出し元ごとにコピーして返す
func cloneCrops(src *entity.CropRecommendation) *entity.CropRecommendation {
	out := *src
	out.SoilImprovementTips = slices.Clone(src.SoilImprovementTips)
	out.SuitableCrops = slices.Clone(src.SuitableCrops)
	for i := range out.SuitableCrops {
		out.SuitableCrops[i].Requirements = slices.Clone(src.SuitableCrops[i].Requirements)
	}
	return &out
}

func cloneYield(src *entity.YieldPrediction) *entity.YieldPrediction {
	out := *src
	out.LimitingFactors = slices.Clone(src.LimitingFactors)
	out.OptimizationStrategies = slices.Clone(src.OptimizationStrategies)
	return &out
}

// cacheKey hashes the normalized inputs of a text analysis.
func cacheKey(kind analyzer.Kind, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(strings.Fields(strings.ToLower(p)), " ")))
	}
	return string(kind) + ":" + hex.EncodeToString(h.Sum(nil))
}
