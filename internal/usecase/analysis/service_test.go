package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/internal/config"
	"agrisense/internal/domain/entity"
	"agrisense/internal/infra/analyzer"
	"agrisense/internal/usecase/analysis"
)

/* ───────── スタブ実装 ───────── */

type stubProvider struct {
	mu       sync.Mutex
	response string
	err      error
	requests []analyzer.Request
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, req analyzer.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.response, p.err
}

func (p *stubProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// gatedProvider holds every call until release is closed.
type gatedProvider struct {
	stubProvider
	started chan struct{}
	release chan struct{}
}

func (p *gatedProvider) Generate(ctx context.Context, req analyzer.Request) (string, error) {
	resp, err := p.stubProvider.Generate(ctx, req)
	select {
	case p.started <- struct{}{}:
	default:
	}
	select {
	case <-p.release:
		return resp, err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newService(t *testing.T, p analyzer.Provider) *analysis.Service {
	t.Helper()
	prompts, err := config.LoadPromptCatalog("")
	require.NoError(t, err)
	return analysis.NewService(p, prompts, time.Minute, 1024)
}

func jpeg() analyzer.Image {
	return analyzer.Image{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, MIMEType: "image/jpeg"}
}

const soilJSON = `{
	"soilType": " Loamy ",
	"confidence": 0.92,
	"characteristics": ["crumbly", "dark"],
	"estimatedPH": "6.0-7.0",
	"drainageQuality": "Good",
	"composition": {"sand": "40%", "silt": "40%", "clay": "20%", "organicMatter": "5%"},
	"recommendedPlants": ["Tomato", "Wheat", "Corn", "Beans", "Lettuce"],
	"careInstructions": "Add compost yearly."
}`

/* ───────── Soil ───────── */

func TestAnalyzeSoil_Success(t *testing.T) {
	p := &stubProvider{response: soilJSON}
	svc := newService(t, p)

	got, err := svc.AnalyzeSoil(context.Background(), jpeg())
	require.NoError(t, err)
	assert.Equal(t, "Loamy", got.SoilType)
	assert.Equal(t, 92.0, got.Confidence)
	assert.Equal(t, "40%", got.Composition.Sand)
	assert.Len(t, got.RecommendedPlants, 5)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, analyzer.KindSoil, req.Kind)
	require.NotNil(t, req.Image)
	assert.Equal(t, "image/jpeg", req.Image.MIMEType)
	require.NotNil(t, req.Schema)
	assert.Contains(t, req.Schema.Required, "soilType")
	assert.Contains(t, req.Prompt, "soil")
}

func TestAnalyzeSoil_Confidence(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  float64
	}{
		{"TC-1: fraction is scaled", "0.92", 92},
		{"TC-2: one means one percent", "1", 1},
		{"TC-3: percentage kept", "87.46", 87.5},
		{"TC-4: above range clamped", "140", 100},
		{"TC-5: negative clamped", "-3", 0},
		{"TC-6: zero", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := strings.Replace(soilJSON, `"confidence": 0.92`, `"confidence": `+tt.model, 1)
			got, err := newService(t, &stubProvider{response: resp}).AnalyzeSoil(context.Background(), jpeg())
			require.NoError(t, err)
			if got.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.want)
			}
		})
	}
}

func TestAnalyzeSoil_InvalidImage(t *testing.T) {
	tests := []struct {
		name string
		img  analyzer.Image
	}{
		{name: "empty", img: analyzer.Image{MIMEType: "image/jpeg"}},
		{name: "too large", img: analyzer.Image{Data: make([]byte, 2048), MIMEType: "image/png"}},
		{name: "unsupported type", img: analyzer.Image{Data: []byte("GIF89a"), MIMEType: "image/gif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{response: soilJSON}
			_, err := newService(t, p).AnalyzeSoil(context.Background(), tt.img)
			require.Error(t, err)
			assert.True(t, entity.IsValidationError(err))
			assert.Equal(t, 0, p.calls())
		})
	}
}

func TestAnalyzeSoil_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
		wantErr  error
	}{
		{
			name:     "provider error",
			provider: &stubProvider{err: analyzer.ErrEmptyResponse},
			wantErr:  analyzer.ErrEmptyResponse,
		},
		{
			name:     "malformed json",
			provider: &stubProvider{response: `{"soilType": "Loamy"`},
			wantErr:  analysis.ErrInvalidResponse,
		},
		{
			name:     "missing required field",
			provider: &stubProvider{response: `{"soilType": "Loamy", "confidence": 80}`},
			wantErr:  analysis.ErrInvalidResponse,
		},
		{
			name:     "empty soil type",
			provider: &stubProvider{response: strings.Replace(soilJSON, `" Loamy "`, `""`, 1)},
			wantErr:  analysis.ErrInvalidResponse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(t, tt.provider).AnalyzeSoil(context.Background(), jpeg())
			require.Error(t, err)

			var ae *analysis.AnalysisError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, analyzer.KindSoil, ae.Kind)
			assert.Equal(t, analysis.MsgSoilFailed, ae.UserMessage())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

/* ───────── Disease ───────── */

func TestDiagnoseDisease(t *testing.T) {
	tests := []struct {
		name         string
		response     string
		wantStatus   string
		wantUrgency  string
		wantLinkPart string
	}{
		{
			name: "diseased without link gets search link",
			response: `{"status":"diseased","diseaseName":"Early Blight","confidence":87,"urgency":"high",
				"symptoms":["brown spots"],"recommendation":"Apply copper fungicide","pesticideLink":""}`,
			wantStatus:   entity.PlantDiseased,
			wantUrgency:  "High",
			wantLinkPart: "q=buy+Early+Blight+pesticide+online",
		},
		{
			name: "diseased keeps valid link",
			response: `{"status":"Diseased","diseaseName":"Rust","confidence":70,"urgency":"Medium",
				"symptoms":[],"recommendation":"Spray","pesticideLink":"https://shop.example.com/rust"}`,
			wantStatus:   entity.PlantDiseased,
			wantUrgency:  "Medium",
			wantLinkPart: "https://shop.example.com/rust",
		},
		{
			name: "product name becomes the search term",
			response: `{"status":"Diseased","diseaseName":"Early Blight","confidence":80,"urgency":"High",
				"symptoms":["rings"],"recommendation":"Spray weekly","pesticideLink":"Mancozeb 75% WP"}`,
			wantStatus:   entity.PlantDiseased,
			wantUrgency:  "High",
			wantLinkPart: "q=buy+Mancozeb+75%25+WP+pesticide+online",
		},
		{
			name: "healthy clears link",
			response: `{"status":"Healthy","diseaseName":"None","confidence":95,"urgency":"unknown",
				"symptoms":null,"recommendation":"Keep watering","pesticideLink":"https://x.example.com"}`,
			wantStatus:  entity.PlantHealthy,
			wantUrgency: "Low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newService(t, &stubProvider{response: tt.response}).DiagnoseDisease(context.Background(), jpeg())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantUrgency, got.Urgency)
			assert.NotNil(t, got.Symptoms)
			if tt.wantLinkPart == "" {
				assert.Empty(t, got.PesticideLink)
			} else {
				assert.Contains(t, got.PesticideLink, tt.wantLinkPart)
			}
		})
	}
}

func TestDiagnoseDisease_ProviderFailure(t *testing.T) {
	_, err := newService(t, &stubProvider{err: errors.New("boom")}).DiagnoseDisease(context.Background(), jpeg())
	var ae *analysis.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, analysis.MsgDiseaseFailed, ae.UserMessage())
}

/* ───────── Crops ───────── */

const cropsJSON = `{
	"suitableCrops": [{"name":"Rice","suitability":"High","growingPeriod":"120 days","expectedYield":"5 t/ha","requirements":null}],
	"soilImprovementTips": ["Add lime"],
	"marketPotential": "Strong"
}`

func TestRecommendCrops_Validation(t *testing.T) {
	p := &stubProvider{response: cropsJSON}
	svc := newService(t, p)

	_, err := svc.RecommendCrops(context.Background(), analysis.CropQuery{SoilInfo: " ", Region: "Punjab"})
	assert.True(t, entity.IsValidationError(err))

	_, err = svc.RecommendCrops(context.Background(), analysis.CropQuery{SoilInfo: "clay loam"})
	assert.True(t, entity.IsValidationError(err))
	assert.Equal(t, 0, p.calls())
}

func TestRecommendCrops_PromptAndCache(t *testing.T) {
	p := &stubProvider{response: cropsJSON}
	svc := newService(t, p)
	ctx := context.Background()

	got, err := svc.RecommendCrops(ctx, analysis.CropQuery{SoilInfo: "Clay  loam", Region: "Punjab"})
	require.NoError(t, err)
	require.Len(t, got.SuitableCrops, 1)
	assert.Equal(t, "Rice", got.SuitableCrops[0].Name)
	assert.NotNil(t, got.SuitableCrops[0].Requirements)

	require.Len(t, p.requests, 1)
	assert.Contains(t, p.requests[0].Prompt, "Soil condition: Clay  loam")
	assert.Contains(t, p.requests[0].Prompt, "Region: Punjab")
	assert.Nil(t, p.requests[0].Image)

	// 正規化後に同じ入力ならキャッシュから返す
	_, err = svc.RecommendCrops(ctx, analysis.CropQuery{SoilInfo: "clay loam", Region: " punjab"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls())

	_, err = svc.RecommendCrops(ctx, analysis.CropQuery{SoilInfo: "clay loam", Region: "Kerala"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls())
}

func TestRecommendCrops_FailureNotCached(t *testing.T) {
	p := &stubProvider{err: errors.New("unavailable")}
	svc := newService(t, p)
	q := analysis.CropQuery{SoilInfo: "sandy", Region: "Sahel"}

	_, err := svc.RecommendCrops(context.Background(), q)
	var ae *analysis.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, analysis.MsgCropsFailed, ae.UserMessage())

	p.mu.Lock()
	p.err = nil
	p.response = cropsJSON
	p.mu.Unlock()

	_, err = svc.RecommendCrops(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls())
}

func TestRecommendCrops_ConcurrentIdenticalRequests(t *testing.T) {
	p := &stubProvider{response: cropsJSON}
	svc := newService(t, p)
	q := analysis.CropQuery{SoilInfo: "silty", Region: "Nile delta"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecommendCrops(context.Background(), q)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, p.calls())
}

func TestRecommendCrops_CancelledCallerDoesNotFailOthers(t *testing.T) {
	p := &gatedProvider{
		stubProvider: stubProvider{response: cropsJSON},
		started:      make(chan struct{}, 1),
		release:      make(chan struct{}),
	}
	svc := newService(t, p)
	q := analysis.CropQuery{SoilInfo: "black cotton soil", Region: "Deccan"}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.RecommendCrops(ctx, q)
		firstErr <- err
	}()
	<-p.started

	type result struct {
		got *entity.CropRecommendation
		err error
	}
	second := make(chan result, 1)
	go func() {
		got, err := svc.RecommendCrops(context.Background(), q)
		second <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	// 最初の呼び出し元だけが諦める
	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)

	close(p.release)
	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.got.SuitableCrops, 1)
	assert.Equal(t, "Rice", res.got.SuitableCrops[0].Name)
	assert.Equal(t, 1, p.calls())
}

func TestRecommendCrops_CachedResultIsNotShared(t *testing.T) {
	p := &stubProvider{response: cropsJSON}
	svc := newService(t, p)
	q := analysis.CropQuery{SoilInfo: "laterite", Region: "Goa"}

	first, err := svc.RecommendCrops(context.Background(), q)
	require.NoError(t, err)
	first.SuitableCrops[0].Name = "Cashew"
	first.SuitableCrops[0].Requirements = append(first.SuitableCrops[0].Requirements, "sun")
	first.SoilImprovementTips[0] = "Burn stubble"

	again, err := svc.RecommendCrops(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls())
	assert.Equal(t, "Rice", again.SuitableCrops[0].Name)
	assert.Empty(t, again.SuitableCrops[0].Requirements)
	assert.Equal(t, []string{"Add lime"}, again.SoilImprovementTips)
}

/* ───────── Yield ───────── */

const yieldJSON = `{"estimatedYield":"12.5","unit":"tonnes","confidenceInterval":"10-15","limitingFactors":["water"],"optimizationStrategies":[]}`

func TestPredictYield(t *testing.T) {
	p := &stubProvider{response: yieldJSON}
	svc := newService(t, p)

	got, err := svc.PredictYield(context.Background(), analysis.YieldQuery{Crop: "Wheat", AreaHectares: 2.5, SoilType: "Loamy"})
	require.NoError(t, err)
	assert.Equal(t, "12.5", got.EstimatedYield)
	assert.Equal(t, "tonnes", got.Unit)

	require.Len(t, p.requests, 1)
	prompt := p.requests[0].Prompt
	assert.Contains(t, prompt, "Crop: Wheat")
	assert.Contains(t, prompt, "Area: 2.5 hectares")
	assert.NotContains(t, prompt, "Climate:")

	_, err = svc.PredictYield(context.Background(), analysis.YieldQuery{Crop: "Wheat", AreaHectares: 2.5, SoilType: "Loamy", Climate: "Semi-arid"})
	require.NoError(t, err)
	require.Len(t, p.requests, 2)
	assert.Contains(t, p.requests[1].Prompt, "Climate: Semi-arid")
}

func TestPredictYield_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query analysis.YieldQuery
		field string
	}{
		{name: "missing crop", query: analysis.YieldQuery{AreaHectares: 1, SoilType: "Clay"}, field: "crop"},
		{name: "zero area", query: analysis.YieldQuery{Crop: "Maize", SoilType: "Clay"}, field: "area"},
		{name: "negative area", query: analysis.YieldQuery{Crop: "Maize", AreaHectares: -3, SoilType: "Clay"}, field: "area"},
		{name: "missing soil", query: analysis.YieldQuery{Crop: "Maize", AreaHectares: 1}, field: "soilType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{response: yieldJSON}
			_, err := newService(t, p).PredictYield(context.Background(), tt.query)
			var ve *entity.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 0, p.calls())
		})
	}
}

func TestPredictYield_DisabledProvider(t *testing.T) {
	_, err := newService(t, analyzer.NewNoOp()).PredictYield(context.Background(),
		analysis.YieldQuery{Crop: "Wheat", AreaHectares: 1, SoilType: "Loamy"})
	var ae *analysis.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, analyzer.ErrProviderDisabled)
	assert.Equal(t, analysis.MsgYieldFailed, ae.UserMessage())
}
